package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "title", "error": "is required" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "title").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the error type every API failure is rendered from.
//
// It is serialized directly to JSON. The human-readable text lives under
// the "error" key, which is what dashboard clients read:
//
//	{ "code": "NOT_FOUND", "error": "Task not found", "status": 404 }
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"status"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// MakeUpperCaseWithUnderscores converts a string into UPPER_CASE_WITH_UNDERSCORES.
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
