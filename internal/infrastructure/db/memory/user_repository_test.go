package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

func TestUserRepository_CreateAssignsID(t *testing.T) {
	repo := NewUserRepository()

	u, err := repo.Create(context.Background(), &domain.User{ID: "ignored", Username: "bob", Name: "Bob", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "ignored", u.ID)

	got, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
}

func TestUserRepository_UniqueUsernameUnderConcurrency(t *testing.T) {
	repo := NewUserRepository()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
		exists  atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(context.Background(), &domain.User{Username: "bob", Name: "Bob"})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, domain.ErrUserExists):
				exists.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(15), exists.Load())
}

func TestUserRepository_ListInInsertionOrder(t *testing.T) {
	repo := NewUserRepository()
	for _, name := range []string{"c", "a", "b"} {
		_, err := repo.Create(context.Background(), &domain.User{Username: name, Name: name})
		require.NoError(t, err)
	}

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{users[0].Username, users[1].Username, users[2].Username})
}

func TestUserRepository_UpdateArchiveRestore(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u, err := repo.Create(ctx, &domain.User{Username: "bob", Name: "Bob", Role: domain.RoleUser, PasswordHash: "h"})
	require.NoError(t, err)

	name := "Robert"
	updated, err := repo.Update(ctx, u.ID, domain.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "h", updated.PasswordHash)

	ok, err := repo.Archive(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Archive(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok, "second archive matches no live row")

	_, err = repo.Update(ctx, u.ID, domain.UserPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived())

	restored, err := repo.Restore(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, restored.Archived())

	_, err = repo.Restore(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u, err := repo.Create(ctx, &domain.User{Username: "bob", Name: "Bob"})
	require.NoError(t, err)

	u.Name = "mutated"
	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Name)
}

func TestUserRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	ok, err := repo.Archive(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}
