package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// generateErrorCode creates machine-friendly codes from classified errors.
//
// Output format:
//
//	<DOMAIN>_<ACTION>
//
// Example:
//
//	tasks + UniqueViolation => TASK_ALREADY_EXISTS
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)

	// Naive singularization: "USERS" -> "USER", "FAQS" -> "FAQ".
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation, ExclusionViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidTextRepresentation, DataException, InvalidParameterType:
		action = "INVALID"
	case UndefinedColumn:
		action = "UNKNOWN_FIELD"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces an end-user-facing message.
// Database text is never copied into it.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.tableName(), sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation, ExclusionViolation:
		// "identifier" is replaced later when the column can be inferred.
		return fmt.Sprintf("A %s with this identifier already exists", entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case InvalidTextRepresentation, DataException:
		return "One or more values have an invalid format"

	case InvalidParameterType:
		return "One or more values have an invalid type"

	case UndefinedColumn:
		if column := extractUndefinedColumn(sqlErr.Message); column != "" {
			return fmt.Sprintf("Unknown field: %s", column)
		}
		return "One or more fields are not recognised"

	default:
		return "An error occurred while processing your request"
	}
}

// tableName prefers the table reported by the database, then the operation's table.
func (e *Error) tableName() string {
	if e.TableName != "" {
		return e.TableName
	}
	return e.Table
}

// getEntityName tries to infer an entity name from table/column data.
//
// Priority rules:
//  1. If column ends with "_id", use that base name ("order_id" -> "Order").
//  2. Otherwise use the table name, singularized if it ends with "s".
//  3. Otherwise fall back to "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case into Title Case ("first_name" -> "First Name").
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

var (
	uniqueKeyPattern       = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	undefinedColumnPattern = regexp.MustCompile(`column "([A-Za-z0-9_]+)"`)
)

// extractColumnForUniqueViolation infers the column from a unique constraint name.
//
// Supported conventions:
//
//  1. "unique_<table>_<column>"        unique_users_email -> "email"
//  2. "<table>_<column>_(key|ukey)"    users_email_key    -> "email"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	matches := uniqueKeyPattern.FindStringSubmatch(constraintName)
	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// extractUndefinedColumn pulls the column out of `column "foo" of relation "tasks" does not exist`.
// Only identifier-shaped names are returned so nothing odd is echoed back.
func extractUndefinedColumn(message string) string {
	matches := undefinedColumnPattern.FindStringSubmatch(message)
	if len(matches) > 1 {
		return matches[1]
	}
	return ""
}

// HandleError converts a data-access error into an application-level error.
//
// Output:
//   - *errs.HTTPError: returned unchanged
//   - ErrNotFound: 404
//   - validation: 400, see validationError
//   - constraint: 409 with a friendly message and generated code
//   - connectivity, query, consistency and anything unknown: generic 500
func HandleError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, ErrNotFound) {
		return errs.NewNotFoundError("Resource not found", nil)
	}

	var sqlErr *Error
	if !errors.As(err, &sqlErr) {
		return errs.NewInternalServerError("")
	}

	switch sqlErr.Kind {
	case KindValidation:
		return validationError(sqlErr)

	case KindConstraint:
		errorCode := generateErrorCode(sqlErr.tableName(), sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		var fieldErrors []errs.FieldError
		switch sqlErr.Code {
		case UniqueViolation:
			if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
				fieldErrors = []errs.FieldError{{Field: columnName, Error: "already exists"}}
			}
		case NotNullViolation:
			fieldErrors = []errs.FieldError{{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"}}
		}

		return errs.NewConflictError(userMessage, &errorCode, fieldErrors)

	default:
		return errs.NewInternalServerError("")
	}
}

// validationError builds the 400 for a KindValidation error.
//
// Two sources end up here:
//   - PostgreSQL (22P02, 42703, ...) and pgx argument encoding: the text is
//     the driver's, so the client gets a generated code and a fixed message
//   - the repository's own checks (paging, identifiers, empty records): the
//     message was written for clients and is kept, with Fields as field errors
func validationError(sqlErr *Error) *errs.HTTPError {
	if sqlErr.DatabaseCode != "" || sqlErr.Code == InvalidParameterType {
		errorCode := generateErrorCode(sqlErr.tableName(), sqlErr.Code)
		return errs.NewBadRequestError(formatUserFriendlyMessage(sqlErr), &errorCode, nil)
	}

	fieldErrors := make([]errs.FieldError, 0, len(sqlErr.Fields))
	for _, field := range sqlErr.Fields {
		fieldErrors = append(fieldErrors, errs.FieldError{Field: field, Error: "is invalid"})
	}
	if len(fieldErrors) == 0 {
		fieldErrors = nil
	}

	return errs.NewBadRequestError(sqlErr.Message, nil, fieldErrors)
}
