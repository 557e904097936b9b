// Package sqlerr specifically handles database driver errors.
//
// It classifies errors coming out of the data-access layer into a small
// taxonomy (validation, constraint, connectivity, query, consistency, plus the
// ErrNotFound sentinel) and converts them into client-safe HTTP errors
// (e.g., a unique violation becomes a 409 with a friendly message).
package sqlerr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
)

// ErrNotFound reports that no row matched. It is a normal outcome, not a fault.
var ErrNotFound = errors.New("record not found")

// Kind is the category of a data-access failure.
type Kind uint8

const (
	// KindQuery is the catch-all for statements the database refused to run.
	KindQuery Kind = iota
	// KindValidation means the caller's input was rejected.
	KindValidation
	// KindConstraint means the database rejected a write (unique, foreign key, ...).
	KindConstraint
	// KindConnectivity means the pool or a connection failed.
	KindConnectivity
	// KindConsistency means the data is not in the shape the operation requires,
	// e.g. a delete by id matched more than one row.
	KindConsistency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConstraint:
		return "constraint"
	case KindConnectivity:
		return "connectivity"
	case KindConsistency:
		return "consistency"
	default:
		return "query"
	}
}

// Code is a friendly name for the SQLSTATE values we branch on.
type Code string

const (
	Other                     Code = "other"
	UniqueViolation           Code = "unique_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	NotNullViolation          Code = "not_null_violation"
	CheckViolation            Code = "check_violation"
	ExclusionViolation        Code = "exclusion_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	DataException             Code = "data_exception"
	UndefinedColumn           Code = "undefined_column"
	UndefinedTable            Code = "undefined_table"
	SyntaxError               Code = "syntax_error"
	ConnectionException       Code = "connection_exception"
	OperatorIntervention      Code = "operator_intervention"

	// InvalidParameterType is raised by the driver, not the database: an
	// argument could not be encoded for its column's type.
	InvalidParameterType Code = "invalid_parameter_type"
)

// MapCode maps a SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	case "22P02":
		return InvalidTextRepresentation
	case "42703":
		return UndefinedColumn
	case "42P01":
		return UndefinedTable
	case "42601":
		return SyntaxError
	}

	switch {
	case strings.HasPrefix(sqlstate, "08"):
		return ConnectionException
	case strings.HasPrefix(sqlstate, "57P"):
		return OperatorIntervention
	case strings.HasPrefix(sqlstate, "22"):
		return DataException
	}

	return Other
}

// Error is a classified data-access failure.
//
// Message is the database's (or validator's) own text and is meant for logs.
// HandleError derives the client-facing text separately.
type Error struct {
	Kind      Kind
	Operation string
	Table     string

	Code           Code
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	// Fields lists the offending input fields for validation failures.
	Fields []string

	driverErr error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.Operation != "" {
		b.WriteString(" during ")
		b.WriteString(e.Operation)
	}
	if e.Table != "" {
		b.WriteString(" on ")
		b.WriteString(e.Table)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.DatabaseCode != "" {
		b.WriteString(" (SQLSTATE ")
		b.WriteString(e.DatabaseCode)
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap exposes the driver error for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.driverErr
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	var sqlErr *Error
	return errors.As(err, &sqlErr) && sqlErr.Kind == kind
}

// ErrCode reports the mapped Code for a given error, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// NewValidationError reports input rejected before any statement was issued.
func NewValidationError(operation, table, message string, fields ...string) *Error {
	return &Error{
		Kind:      KindValidation,
		Operation: operation,
		Table:     table,
		Message:   message,
		Fields:    fields,
	}
}

// NewConsistencyError reports data that violates an invariant the operation relies on.
func NewConsistencyError(operation, table, message string) *Error {
	return &Error{
		Kind:      KindConsistency,
		Operation: operation,
		Table:     table,
		Message:   message,
	}
}

// ConvertPgError converts a raw PostgreSQL error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	code := MapCode(src.Code)

	return &Error{
		Kind:           kindForCode(code),
		Code:           code,
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

func kindForCode(code Code) Kind {
	switch code {
	case UniqueViolation, ForeignKeyViolation, NotNullViolation, CheckViolation, ExclusionViolation:
		return KindConstraint
	case InvalidTextRepresentation, DataException, UndefinedColumn:
		return KindValidation
	case ConnectionException, OperatorIntervention:
		return KindConnectivity
	default:
		return KindQuery
	}
}

// Classify wraps err in an *Error tagged with the operation and table.
//
// nil, ErrNotFound and already-classified errors are returned unchanged.
func Classify(operation, table string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		converted := ConvertPgError(pgErr)
		converted.Operation = operation
		converted.Table = table
		return converted
	}

	kind, code := KindQuery, Other
	switch {
	case isConnectivity(err):
		kind = KindConnectivity
	case isEncodeFailure(err):
		kind, code = KindValidation, InvalidParameterType
	}

	return &Error{
		Kind:      kind,
		Operation: operation,
		Table:     table,
		Code:      code,
		Message:   err.Error(),
		driverErr: err,
	}
}

// encodeFailurePrefix is how pgx wraps an argument it could not encode.
// Such failures happen before anything is sent to the server.
const encodeFailurePrefix = "failed to encode args["

// isEncodeFailure reports whether a value bound to a statement did not fit
// the type of its parameter, e.g. a JSON number sent to a TEXT column.
func isEncodeFailure(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if strings.HasPrefix(e.Error(), encodeFailurePrefix) {
			return true
		}
	}
	return false
}

func isConnectivity(err error) bool {
	var connectErr *pgconn.ConnectError
	var netErr net.Error

	switch {
	case errors.As(err, &connectErr):
		return true
	case errors.As(err, &netErr):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case pgconn.Timeout(err):
		return true
	case errors.Is(err, puddle.ErrClosedPool):
		return true
	}

	return false
}
