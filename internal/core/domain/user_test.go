package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      int
		want    Role
		wantErr bool
	}{
		{in: 1, want: RoleUser},
		{in: 2, want: RolePrivileged},
		{in: 0, wantErr: true},
		{in: 3, wantErr: true},
		{in: -1, wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseRole(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%d) err = %v, want ErrInvalidRole", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseRole(%d) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestRole_String(t *testing.T) {
	if RoleUser.String() != "user" || RolePrivileged.String() != "privileged" {
		t.Fatalf("unexpected names: %s %s", RoleUser, RolePrivileged)
	}
	if got := Role(9).String(); got != "role(9)" {
		t.Fatalf("unexpected name for unknown role: %s", got)
	}
}

func TestUser_SanitizeDropsSecret(t *testing.T) {
	u := &User{
		ID:           "u-1",
		Username:     "alice",
		Name:         "Alice",
		PasswordHash: "$2a$10$abcdef",
		Role:         RolePrivileged,
		CreatedAt:    time.Unix(0, 0).UTC(),
		UpdatedAt:    time.Unix(0, 0).UTC(),
	}

	raw, err := json.Marshal(u.Sanitize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "abcdef") || strings.Contains(string(raw), "password") {
		t.Fatalf("sanitized account leaks the secret: %s", raw)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["role_id"] != float64(2) || out["username"] != "alice" {
		t.Fatalf("unexpected account: %s", raw)
	}
	if _, ok := out["archived_at"]; !ok {
		t.Fatal("archived_at must always be present")
	}
}

func TestUser_Archived(t *testing.T) {
	u := &User{}
	if u.Archived() {
		t.Fatal("fresh user reported archived")
	}
	now := time.Now()
	u.ArchivedAt = &now
	if !u.Archived() {
		t.Fatal("tombstoned user reported live")
	}
}

func TestUserPatch_Empty(t *testing.T) {
	if !(UserPatch{}).Empty() {
		t.Fatal("zero patch should be empty")
	}
	name := "x"
	if (UserPatch{Name: &name}).Empty() {
		t.Fatal("patch with name should not be empty")
	}
}

func TestPrincipal(t *testing.T) {
	if !(Principal{}).Anonymous() {
		t.Fatal("zero principal should be anonymous")
	}
	p := Principal{ID: "u-1", Role: RolePrivileged}
	if p.Anonymous() || !p.Privileged() {
		t.Fatalf("unexpected principal flags: %+v", p)
	}
	if (Principal{ID: "u-2", Role: RoleUser}).Privileged() {
		t.Fatal("user principal reported privileged")
	}
}
