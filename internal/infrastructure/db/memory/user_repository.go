// Package memory is an in-process UserRepository for development and tests.
// It keeps insertion order as its natural order.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byUsername map[string]string
	order      []string
	now        func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func clone(u *domain.User) *domain.User {
	c := *u
	if u.ArchivedAt != nil {
		at := *u.ArchivedAt
		c.ArchivedAt = &at
	}
	return &c
}

// Create checks and claims the username under the same lock, so two
// concurrent creates with one username cannot both succeed.
func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return nil, domain.ErrUserExists
	}

	u := clone(user)
	u.ID = uuid.NewString()
	r.byID[u.ID] = u
	r.byUsername[u.Username] = u.ID
	r.order = append(r.order, u.ID)
	return clone(u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.byID[id]))
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.Archived() {
		return nil, domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	u.UpdatedAt = r.now()
	return clone(u), nil
}

func (r *UserRepository) Archive(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.Archived() {
		return false, nil
	}
	now := r.now()
	u.ArchivedAt = &now
	u.UpdatedAt = now
	return true, nil
}

func (r *UserRepository) Restore(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || !u.Archived() {
		return nil, domain.ErrUserNotFound
	}
	u.ArchivedAt = nil
	u.UpdatedAt = r.now()
	return clone(u), nil
}

// Ping satisfies the readiness probe.
func (r *UserRepository) Ping(context.Context) error {
	return nil
}
