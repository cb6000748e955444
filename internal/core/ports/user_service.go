package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// CreateUserInput carries the validated create payload.
type CreateUserInput struct {
	Username string
	Name     string
	Password string
	// Role is nil when the caller did not supply role_id.
	Role *domain.Role
}

// UpdateUserInput carries the validated partial update. Nil means "leave
// unchanged".
type UpdateUserInput struct {
	Name     *string
	Password *string
	Role     *domain.Role
}

// UserService defines the account use cases. Route-level authorization
// happens before these are called; field-level checks (role assignment)
// happen inside.
type UserService interface {
	Create(ctx context.Context, caller domain.Principal, input CreateUserInput) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, caller domain.Principal, id string, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*domain.User, error)
}
