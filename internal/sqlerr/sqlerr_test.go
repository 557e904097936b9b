package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
		code Code
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, KindConstraint, UniqueViolation},
		{"foreign key", &pgconn.PgError{Code: "23503"}, KindConstraint, ForeignKeyViolation},
		{"not null", &pgconn.PgError{Code: "23502"}, KindConstraint, NotNullViolation},
		{"check", &pgconn.PgError{Code: "23514"}, KindConstraint, CheckViolation},
		{"bad text", &pgconn.PgError{Code: "22P02"}, KindValidation, InvalidTextRepresentation},
		{"numeric overflow", &pgconn.PgError{Code: "22003"}, KindValidation, DataException},
		{"undefined column", &pgconn.PgError{Code: "42703"}, KindValidation, UndefinedColumn},
		{"syntax", &pgconn.PgError{Code: "42601"}, KindQuery, SyntaxError},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, KindConnectivity, OperatorIntervention},
		{"connection failure", &pgconn.PgError{Code: "08006"}, KindConnectivity, ConnectionException},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), KindConnectivity, Other},
		{"closed pool", puddle.ErrClosedPool, KindConnectivity, Other},
		{"argument encoding", fmt.Errorf("failed to encode args[0]: %w", errors.New("unable to encode 5 into binary format for text (OID 25)")), KindValidation, InvalidParameterType},
		{"wrapped argument encoding", fmt.Errorf("insert: %w", fmt.Errorf("failed to encode args[3]: %w", errors.New("cannot convert 2.7 to integer"))), KindValidation, InvalidParameterType},
		{"anything else", errors.New("boom"), KindQuery, Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("insert", "tasks", tt.err)

			var sqlErr *Error
			require.ErrorAs(t, err, &sqlErr)
			assert.Equal(t, tt.kind, sqlErr.Kind)
			assert.Equal(t, tt.code, sqlErr.Code)
			assert.Equal(t, "insert", sqlErr.Operation)
			assert.Equal(t, "tasks", sqlErr.Table)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassifyPassThrough(t *testing.T) {
	assert.NoError(t, Classify("get", "tasks", nil))
	assert.Same(t, ErrNotFound, Classify("get", "tasks", ErrNotFound))

	already := NewConsistencyError("delete", "tasks", "more than one row")
	assert.Same(t, already, Classify("other", "users", already))
}

func TestErrorString(t *testing.T) {
	err := Classify("update", "orders", &pgconn.PgError{Code: "23503", Message: "violates foreign key"})
	assert.Equal(t, "constraint error during update on orders: violates foreign key (SQLSTATE 23503)", err.Error())
}

func TestHandleError(t *testing.T) {
	t.Run("unique violation names the column", func(t *testing.T) {
		httpErr := HandleError(Classify("insert", "users", &pgconn.PgError{
			Code:           "23505",
			Message:        "duplicate key value violates unique constraint",
			ConstraintName: "users_username_key",
		}))

		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
		assert.Equal(t, "A User with this Username already exists", httpErr.Message)
		assert.Equal(t, []errs.FieldError{{Field: "username", Error: "already exists"}}, httpErr.Errors)
	})

	t.Run("foreign key names the referenced entity", func(t *testing.T) {
		httpErr := HandleError(Classify("insert", "orders", &pgconn.PgError{
			Code:       "23503",
			ColumnName: "user_id",
		}))

		assert.Equal(t, http.StatusConflict, httpErr.Status)
		assert.Equal(t, "ORDER_NOT_FOUND", httpErr.Code)
		assert.Equal(t, "The referenced User does not exist", httpErr.Message)
	})

	t.Run("database validation hides driver text", func(t *testing.T) {
		httpErr := HandleError(Classify("insert", "products", &pgconn.PgError{
			Code:    "22P02",
			Message: `invalid input syntax for type numeric: "abc"`,
		}))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "One or more values have an invalid format", httpErr.Message)
	})

	t.Run("undefined column", func(t *testing.T) {
		httpErr := HandleError(Classify("insert", "tasks", &pgconn.PgError{
			Code:    "42703",
			Message: `column "colour" of relation "tasks" does not exist`,
		}))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "Unknown field: colour", httpErr.Message)
	})

	t.Run("argument encoding hides driver text", func(t *testing.T) {
		httpErr := HandleError(Classify("insert", "tasks",
			fmt.Errorf("failed to encode args[0]: %w", errors.New("unable to encode 5 into binary format for text (OID 25)"))))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "TASK_INVALID", httpErr.Code)
		assert.Equal(t, "One or more values have an invalid type", httpErr.Message)
		assert.Nil(t, httpErr.Errors)
	})

	t.Run("input validation keeps its message", func(t *testing.T) {
		httpErr := HandleError(NewValidationError("page", "tasks", "limit must be between 1 and 100", "limit"))

		assert.Equal(t, http.StatusBadRequest, httpErr.Status)
		assert.Equal(t, "limit must be between 1 and 100", httpErr.Message)
		assert.Equal(t, []errs.FieldError{{Field: "limit", Error: "is invalid"}}, httpErr.Errors)
	})

	t.Run("not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, HandleError(ErrNotFound).Status)
	})

	t.Run("faults are generic", func(t *testing.T) {
		for _, err := range []error{
			Classify("get", "tasks", errors.New("dial tcp: connection refused")),
			NewConsistencyError("delete", "tasks", "2 rows affected"),
			Classify("get", "tasks", &pgconn.PgError{Code: "42601", Message: "syntax error at or near"}),
			errors.New("unclassified"),
		} {
			httpErr := HandleError(err)
			assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
			assert.Equal(t, "Internal Server Error", httpErr.Message)
		}
	})

	t.Run("http errors pass through", func(t *testing.T) {
		original := errs.NewBadRequestError("Missing required field(s): title", nil, nil)
		assert.Same(t, original, HandleError(original))
	})
}
