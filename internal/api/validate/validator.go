// Package validate is the request validation pipeline. Rules are declared
// as go-playground/validator struct tags; the validator stops at the first
// failing rule of each field and collects failures across fields in
// declaration order.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single failing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned by Validate when at least one rule failed.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Fields returns the failing field names in order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for _, e := range fe {
		out = append(out, e.Field)
	}
	return out
}

// EchoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type EchoValidator struct {
	v *validator.Validate
}

// New returns an EchoValidator ready to be assigned to echo.Echo.Validator.
func New() *EchoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// trimmed (required fields) and notblank (optional fields) both fail on
	// strings that are empty once surrounding whitespace is removed.
	_ = v.RegisterValidation("trimmed", nonBlank)
	_ = v.RegisterValidation("notblank", nonBlank)
	return &EchoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *EchoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			out := make(FieldErrors, 0, len(ve))
			for _, fe := range ve {
				out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
			}
			return out
		}
		return err
	}
	return nil
}

func nonBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(f.String()) != ""
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// message converts a single FieldError into the client-facing message.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "trimmed":
		return "field is required"
	case "notblank":
		return "field must not be empty"
	case "min":
		return fmt.Sprintf("%s needs to be at least %s characters long", fe.Field(), fe.Param())
	case "oneof":
		return fe.Field() + " is invalid"
	default:
		return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
	}
}
