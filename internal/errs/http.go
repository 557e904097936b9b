package errs

import (
	"net/http"
)

func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

// NewBadRequestError creates a 400 Bad Request HTTPError.
//
// code is optional; nil means "BAD_REQUEST". errors carries per-field
// problems when the request body failed validation.
func NewBadRequestError(message string, code *string, errors []FieldError) *HTTPError {
	formattedCode := statusCode(http.StatusBadRequest)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusBadRequest,
		Errors:  errors,
	}
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string, code *string) *HTTPError {
	formattedCode := statusCode(http.StatusNotFound)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewConflictError creates a 409 Conflict HTTPError, used when the database
// rejects a write because of a constraint.
func NewConflictError(message string, code *string, errors []FieldError) *HTTPError {
	formattedCode := statusCode(http.StatusConflict)
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:    formattedCode,
		Message: message,
		Status:  http.StatusConflict,
		Errors:  errors,
	}
}

// NewInternalServerError creates a 500 Internal Server Error HTTPError.
//
// message is shown to the client as-is and must never contain driver or
// internal error text. An empty message falls back to the status text.
func NewInternalServerError(message string) *HTTPError {
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}

	return &HTTPError{
		Code:    statusCode(http.StatusInternalServerError),
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
