package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-api/internal/api/validate"
	"github.com/99minutos/accounts-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for non-validation errors.
type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors validate.FieldErrors `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures as {"errors": [{"field", "message"}]}.
//   - Answers authorization failures with an empty 403.
//   - Maps other known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var fe validate.FieldErrors
		if errors.As(err, &fe) {
			_ = c.JSON(http.StatusBadRequest, validationResponse{Errors: fe})
			return
		}
		if errors.Is(err, domain.ErrInvalidRole) {
			_ = c.JSON(http.StatusBadRequest, validationResponse{Errors: validate.FieldErrors{
				{Field: "role_id", Message: "role_id is invalid"},
			}})
			return
		}
		if errors.Is(err, domain.ErrForbidden) {
			_ = c.NoContent(http.StatusForbidden)
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (404 from router, 401 from auth middleware, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	}

	// Unexpected error: log the real cause, return a generic message.
	// Username collisions land here too; the API defines no conflict status.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
