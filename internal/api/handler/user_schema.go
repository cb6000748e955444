package handler

import (
	"strings"

	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

// errorResponse is the envelope for 404 and 5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// validationErrorResponse is the 400 envelope.
type validationErrorResponse struct {
	Errors []fieldErrorResponse `json:"errors"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// --- Request types ---
//
// Field order is the order in which failures are reported.

// CreateUserRequest is the POST /users body.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,trimmed"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required,trimmed"`
	RoleID   *int   `json:"role_id"  validate:"omitnil,oneof=1 2"`
}

// UpdateUserRequest is the PATCH /users/:id body. Absent fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"     validate:"omitnil,notblank"`
	Password *string `json:"password" validate:"omitnil,min=6"`
	RoleID   *int    `json:"role_id"  validate:"omitnil,oneof=1 2"`
}

func (r *CreateUserRequest) toInput() ports.CreateUserInput {
	return ports.CreateUserInput{
		Username: strings.TrimSpace(r.Username),
		Name:     strings.TrimSpace(r.Name),
		Password: r.Password,
		Role:     toRole(r.RoleID),
	}
}

func (r *UpdateUserRequest) toInput() ports.UpdateUserInput {
	in := ports.UpdateUserInput{
		Password: r.Password,
		Role:     toRole(r.RoleID),
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		in.Name = &name
	}
	return in
}

func toRole(id *int) *domain.Role {
	if id == nil {
		return nil
	}
	role := domain.Role(*id)
	return &role
}

// --- Response mapping ---

func toAccounts(users []*domain.User) []domain.Account {
	out := make([]domain.Account, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitize())
	}
	return out
}
