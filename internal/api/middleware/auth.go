package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

const principalKey = "principal"

// Authenticate resolves the bearer token into a Principal and injects it
// into the context. Missing or invalid evidence ends the request with 401.
func Authenticate(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return resolve(resolver, false)
}

// Identify is Authenticate for endpoints open to anonymous callers: a
// request without an Authorization header proceeds as the zero Principal,
// while a present but invalid header is still rejected.
func Identify(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return resolve(resolver, true)
}

func resolve(resolver ports.PrincipalResolver, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				if optional {
					c.Set(principalKey, domain.Principal{})
					return next(c)
				}
				metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthFailuresTotal.WithLabelValues("malformed_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			p, err := resolver.Resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller injected by Authenticate or Identify.
// ok is false when neither ran.
func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(principalKey).(domain.Principal)
	return p, ok
}

// WithPrincipal injects p as if Authenticate had resolved it.
func WithPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
