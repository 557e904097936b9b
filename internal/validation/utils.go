package validation

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = validator.New()

// Struct runs struct-tag validation on v.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds path, query and body data into payload and validates it.
//
// Bind failures (malformed JSON, a non-numeric id) become a 400 with a fixed
// message; echo's own text is not forwarded.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) && echoErr.Code == http.StatusUnsupportedMediaType {
			return errs.NewBadRequestError("Unsupported content type", nil, nil)
		}
		return errs.NewBadRequestError("Invalid request", nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, nil, fieldErrors)
	}

	return nil
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{}
	}

	for _, err := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: strings.ToLower(err.Field()),
			Error: describe(err),
		})
	}

	return "Validation failed", fieldErrors
}

func describe(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "email":
		return "must be a valid email address"

	default:
		if err.Param() != "" {
			return fmt.Sprintf("%s:%s", err.Tag(), err.Param())
		}
		return err.Tag()
	}
}

// RequireFields checks that every named field is present and non-empty in a
// free-form record. It returns a 400 naming the missing fields, or nil.
func RequireFields(record map[string]any, fields ...string) *errs.HTTPError {
	rules := make(map[string]any, len(fields))
	for _, field := range fields {
		rules[field] = "required"
	}

	failures := validate.ValidateMap(record, rules)
	if len(failures) == 0 {
		return nil
	}

	missing := make([]string, 0, len(failures))
	fieldErrors := make([]errs.FieldError, 0, len(failures))
	for _, field := range fields {
		if _, failed := failures[field]; !failed {
			continue
		}
		missing = append(missing, field)
		fieldErrors = append(fieldErrors, errs.FieldError{Field: field, Error: "is required"})
	}

	return errs.NewBadRequestError(
		"Missing required field(s): "+strings.Join(missing, ", "),
		nil,
		fieldErrors,
	)
}
