package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/policy"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// UserService implements the account use cases on top of a repository and
// the credential transform.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create hashes the password and stores a new account. A role other than
// USER can only be assigned by a privileged caller.
func (s *UserService) Create(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	role := domain.RoleUser
	if in.Role != nil {
		role = *in.Role
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	if role != domain.RoleUser && !policy.Decide(caller, policy.OpAssignRole, "") {
		s.log.Warn().Str("username", in.Username).Stringer("role", role).Msg("role assignment denied on create")
		return nil, domain.ErrForbidden
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     in.Username,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Stringer("role", created.Role).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

// Get returns the account whether or not it is archived.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies a partial update to a live account. Archived accounts are
// reported as not found. A role_id equal to the stored role is not a role
// change and needs no privilege.
func (s *UserService) Update(ctx context.Context, caller domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Archived() {
		return nil, domain.ErrUserNotFound
	}

	if in.Role != nil && *in.Role == current.Role {
		in.Role = nil
	}
	if in.Role != nil && !policy.Decide(caller, policy.OpChangeRole, id) {
		s.log.Warn().Str("user_id", id).Str("caller_id", caller.ID).Msg("role change denied")
		return nil, domain.ErrForbidden
	}

	patch := domain.UserPatch{Name: in.Name, Role: in.Role}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", id).
		Str("caller_id", caller.ID).
		Bool("name", in.Name != nil).
		Bool("password", in.Password != nil).
		Bool("role", in.Role != nil).
		Msg("user updated")
	return updated, nil
}

// Delete tombstones a live account. Deleting an absent or already archived
// account returns domain.ErrUserNotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Archive(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	s.log.Info().Str("user_id", id).Msg("user archived")
	return nil
}

// Restore clears the tombstone set by Delete.
func (s *UserService) Restore(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("user restored")
	return u, nil
}
