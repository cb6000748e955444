package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/api/validate"
)

const payloadKey = "payload"

// errInvalidPayload is reported when the body cannot be decoded at all.
var errInvalidPayload = validate.FieldErrors{{Field: "body", Message: "invalid payload"}}

// Validate binds the request body into a fresh T and runs it through the
// echo Validator. Failures end the request with the collected field errors;
// on success the payload is available to the handler via Payload.
func Validate[T any]() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := new(T)
			if err := (&echo.DefaultBinder{}).BindBody(c, req); err != nil {
				return errInvalidPayload
			}
			if err := c.Validate(req); err != nil {
				if fe, ok := err.(validate.FieldErrors); ok {
					for _, f := range fe {
						metrics.ValidationFailuresTotal.WithLabelValues(f.Field).Inc()
					}
				}
				return err
			}
			c.Set(payloadKey, req)
			return next(c)
		}
	}
}

// Payload returns the body bound by Validate[T].
func Payload[T any](c echo.Context) (*T, bool) {
	req, ok := c.Get(payloadKey).(*T)
	return req, ok
}
