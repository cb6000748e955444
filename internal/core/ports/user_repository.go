package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// UserRepository defines persistence operations for accounts.
// Username uniqueness is enforced by the store itself; a collision on
// Create surfaces as domain.ErrUserExists.
type UserRepository interface {
	// Create assigns the ID and persists the user.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no row has the id,
	// including ids the store cannot parse.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// List returns every account in the store's natural order.
	List(ctx context.Context) ([]*domain.User, error)
	// Update applies the non-nil fields of patch to a live (non-archived)
	// account and returns the result.
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	// Archive tombstones a live account. It reports false when no live
	// account matched.
	Archive(ctx context.Context, id string) (bool, error)
	// Restore clears the tombstone of an archived account.
	Restore(ctx context.Context, id string) (*domain.User, error)
}
