package ports

import (
	"context"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// PrincipalResolver validates auth evidence and yields the caller.
// Missing or invalid evidence returns domain.ErrUnauthenticated.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (domain.Principal, error)
}

// PasswordHasher is the one-way credential transform.
type PasswordHasher interface {
	Hash(password string) (string, error)
}
