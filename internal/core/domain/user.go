package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrForbidden       = errors.New("access forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidRole     = errors.New("invalid role")
)

// Role is the closed set of account roles. The numeric values are the
// role_id wire format.
type Role int

const (
	RoleUser       Role = 1
	RolePrivileged Role = 2
)

// ParseRole converts a wire role_id into a Role.
func ParseRole(id int) (Role, error) {
	switch r := Role(id); r {
	case RoleUser, RolePrivileged:
		return r, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidRole, id)
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RolePrivileged
}

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RolePrivileged:
		return "privileged"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// User is the persisted account record.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role_id"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Archived reports whether the account carries a soft-delete tombstone.
func (u *User) Archived() bool {
	return u.ArchivedAt != nil
}

// Account is the sanitized, outward-facing view of a User. It has no
// secret field, so nothing built from it can leak one.
type Account struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Name       string     `json:"name"`
	Role       Role       `json:"role_id"`
	ArchivedAt *time.Time `json:"archived_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (u *User) Sanitize() Account {
	return Account{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role,
		ArchivedAt: u.ArchivedAt,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserPatch carries a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Name         *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.PasswordHash == nil && p.Role == nil
}
