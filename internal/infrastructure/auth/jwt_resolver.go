package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/accounts-api/internal/core/domain"
)

// Claims is the token payload the resolver accepts: the account id in
// "sub" and the role in "role_id".
type Claims struct {
	RoleID int `json:"role_id"`
	jwt.RegisteredClaims
}

// JWTResolver turns an HS256 bearer token into a Principal.
type JWTResolver struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Resolve validates the token signature and expiry and returns the caller.
// Every failure is reported as domain.ErrUnauthenticated.
func (r *JWTResolver) Resolve(_ context.Context, token string) (domain.Principal, error) {
	if token == "" || len(r.secret) == 0 {
		return domain.Principal{}, domain.ErrUnauthenticated
	}

	var claims Claims
	tkn, err := r.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil || !tkn.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return domain.Principal{}, fmt.Errorf("%w: missing subject", domain.ErrUnauthenticated)
	}

	role, err := domain.ParseRole(claims.RoleID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	return domain.Principal{ID: claims.Subject, Role: role}, nil
}
