package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/core/policy"
)

// Authorize evaluates the policy for op against the caller and the :id
// path parameter. A denial answers an empty 403 and stops the chain.
// It must run after Authenticate.
func Authorize(op policy.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			decision := policy.Decide(p, op, c.Param("id"))
			metrics.AuthzDecisionsTotal.WithLabelValues(op.String(), decision.String()).Inc()
			if decision == policy.Deny {
				return c.NoContent(http.StatusForbidden)
			}
			return next(c)
		}
	}
}
