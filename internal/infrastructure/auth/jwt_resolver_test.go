package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func claimsFor(sub string, role int, exp time.Time) Claims {
	return Claims{
		RoleID: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func TestJWTResolver_Valid(t *testing.T) {
	r := NewJWTResolver("secret")
	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("u-1", 2, time.Now().Add(time.Hour)))

	p, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.ID != "u-1" || p.Role != domain.RolePrivileged {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestJWTResolver_Rejects(t *testing.T) {
	r := NewJWTResolver("secret")
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), claimsFor("u-1", 1, future))},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("u-1", 1, time.Now().Add(-time.Minute)))},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte("secret"), claimsFor("u-1", 1, future))},
		{"missing subject", sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("", 1, future))},
		{"unknown role", sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("u-1", 3, future))},
		{"missing role", sign(t, jwt.SigningMethodHS256, []byte("secret"), claimsFor("u-1", 0, future))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Resolve(context.Background(), tt.token); !errors.Is(err, domain.ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestJWTResolver_EmptySecretRejectsEverything(t *testing.T) {
	r := NewJWTResolver("")
	token := sign(t, jwt.SigningMethodHS256, []byte("x"), claimsFor("u-1", 1, time.Now().Add(time.Hour)))

	if _, err := r.Resolve(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
