package repository

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "tasks", true},
		{"underscore prefix", "_private", true},
		{"snake case with digits", "pricing_plans2", true},
		{"empty", "", false},
		{"leading digit", "1tasks", false},
		{"statement terminator", "tasks; DROP TABLE users", false},
		{"quote", `tasks"`, false},
		{"dot qualified", "public.tasks", false},
		{"space", "my table", false},
		{"too long", strings.Repeat("a", 64), false},
		{"max length", strings.Repeat("a", 63), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
			}
		})
	}
}

func TestRewritePlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"native kept", "SELECT * FROM tasks WHERE id = $1", "SELECT * FROM tasks WHERE id = $1"},
		{"single", "SELECT * FROM settings WHERE key = @param0", "SELECT * FROM settings WHERE key = $1"},
		{"reordered", "SELECT @param1, @param0", "SELECT $2, $1"},
		{"multi digit", "SELECT @param10", "SELECT $11"},
		{"inside literal", "SELECT '@param0', @param0", "SELECT '@param0', $1"},
		{"escaped quote in literal", "SELECT 'it''s @param0', @param0", "SELECT 'it''s @param0', $1"},
		{"inside quoted identifier", `SELECT "@param0" FROM t WHERE a = @param0`, `SELECT "@param0" FROM t WHERE a = $1`},
		{"identifier suffix", "SELECT @param0x", "SELECT @param0x"},
		{"identifier prefix", "SELECT x@param0", "SELECT x@param0"},
		{"no digits", "SELECT @param", "SELECT @param"},
		{"line comment", "SELECT @param0 -- uses @param1\nFROM t", "SELECT $1 -- uses @param1\nFROM t"},
		{"line comment at end", "SELECT @param0 -- @param1", "SELECT $1 -- @param1"},
		{"block comment", "SELECT /* @param0 */ @param0", "SELECT /* @param0 */ $1"},
		{"nested block comment", "SELECT /* a /* @param0 */ @param1 */ @param2", "SELECT /* a /* @param0 */ @param1 */ $3"},
		{"dollar quoted body", "SELECT $$ @param0 $$, @param0", "SELECT $$ @param0 $$, $1"},
		{"tagged dollar quote", "SELECT $fn$ $$ @param0 $fn$, @param1", "SELECT $fn$ $$ @param0 $fn$, $2"},
		{"native placeholder is not a tag", "SELECT $1, @param1, $2", "SELECT $1, $2, $2"},
		{"unterminated literal", "SELECT '@param0", "SELECT '@param0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RewritePlaceholders(tt.input))
		})
	}
}

func TestBuildInsert(t *testing.T) {
	sql, args, err := buildInsert("tasks", Record{"title": "Ship report", "status": "pending"})
	require.NoError(t, err)

	assert.Equal(t, `INSERT INTO "tasks" ("status", "title") VALUES ($1, $2) RETURNING *`, sql)
	assert.Equal(t, []any{"pending", "Ship report"}, args)
}

func TestBuildInsertRejectsEmptyRecord(t *testing.T) {
	_, _, err := buildInsert("tasks", Record{})
	require.Error(t, err)
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindValidation))
}

func TestBuildInsertRejectsInvalidColumn(t *testing.T) {
	_, _, err := buildInsert("tasks", Record{`title") VALUES ('x'); --`: "x"})
	require.Error(t, err)
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindValidation))
}

func TestBuildUpdate(t *testing.T) {
	sql, args, err := buildUpdate("tasks", 7, Record{"title": "Renamed", "updated_at": "1999-01-01"})
	require.NoError(t, err)

	assert.Equal(t, `UPDATE "tasks" SET "title" = $1, "updated_at" = now() WHERE id = $2 RETURNING *`, sql)
	assert.Equal(t, []any{"Renamed", int64(7)}, args)
}

func TestBuildUpdateEmptyRecordTouchesUpdatedAt(t *testing.T) {
	sql, args, err := buildUpdate("tasks", 3, Record{})
	require.NoError(t, err)

	assert.Equal(t, `UPDATE "tasks" SET "updated_at" = now() WHERE id = $1 RETURNING *`, sql)
	assert.Equal(t, []any{int64(3)}, args)
}

func TestBuildSelectPage(t *testing.T) {
	assert.Equal(t,
		`SELECT * FROM "orders" ORDER BY "total" DESC LIMIT $1 OFFSET $2`,
		buildSelectPage("orders", "total", "desc"),
	)
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(42), NormalizeValue(json.Number("42")))
	assert.Equal(t, int64(-3), NormalizeValue(json.Number("-3")))
	assert.Equal(t, "text", NormalizeValue("text"))
	assert.Nil(t, NormalizeValue(nil))
	assert.Equal(t, true, NormalizeValue(true))
	assert.Equal(t, `{"sku":"A1"}`, NormalizeValue(map[string]any{"sku": "A1"}))
	assert.Equal(t, `[1,"two"]`, NormalizeValue([]any{json.Number("1"), "two"}))
}

func TestNormalizeValueKeepsDecimalsExact(t *testing.T) {
	tests := []struct {
		input  json.Number
		digits string
		exp    int32
	}{
		{"19.99", "1999", -2},
		{"2.7", "27", -1},
		{"-0.5", "-5", -1},
		{"12345678901234567890", "1234567890123456789", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input.String(), func(t *testing.T) {
			n, ok := NormalizeValue(tt.input).(pgtype.Numeric)
			require.True(t, ok, "expected pgtype.Numeric")
			assert.True(t, n.Valid)
			assert.Equal(t, tt.digits, n.Int.String())
			assert.Equal(t, tt.exp, n.Exp)
		})
	}

	t.Run("fractional value does not fit an integer column", func(t *testing.T) {
		n := NormalizeValue(json.Number("2.7")).(pgtype.Numeric)
		_, err := n.Int64Value()
		assert.Error(t, err)
	})

	t.Run("fractional value encodes as numeric text", func(t *testing.T) {
		buf, err := pgtype.NewMap().Encode(pgtype.NumericOID, pgtype.TextFormatCode,
			NormalizeValue(json.Number("19.99")), nil)
		require.NoError(t, err)
		assert.Equal(t, "19.99", string(buf))
	})

	t.Run("fractional value is refused for bigint", func(t *testing.T) {
		_, err := pgtype.NewMap().Encode(pgtype.Int8OID, pgtype.TextFormatCode,
			NormalizeValue(json.Number("2.7")), nil)
		assert.Error(t, err)
	})
}

func TestNormalizePageRequest(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		req, err := normalizePageRequest("tasks", PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, PageRequest{Page: 1, Limit: DefaultPageLimit, Sort: "id", Order: "asc"}, req)
	})

	t.Run("last allowed page", func(t *testing.T) {
		req, err := normalizePageRequest("tasks", PageRequest{Page: MaxPage, Limit: MaxPageLimit})
		require.NoError(t, err)
		assert.Positive(t, int64(req.Page-1)*int64(req.Limit))
	})

	t.Run("order is case insensitive", func(t *testing.T) {
		req, err := normalizePageRequest("tasks", PageRequest{Order: "DESC"})
		require.NoError(t, err)
		assert.Equal(t, "desc", req.Order)
	})

	invalid := []struct {
		name  string
		req   PageRequest
		field string
	}{
		{"negative page", PageRequest{Page: -1}, "page"},
		{"page past bound", PageRequest{Page: MaxPage + 1}, "page"},
		{"page that would overflow the offset", PageRequest{Page: math.MaxInt, Limit: MaxPageLimit}, "page"},
		{"limit too large", PageRequest{Limit: MaxPageLimit + 1}, "limit"},
		{"negative limit", PageRequest{Limit: -5}, "limit"},
		{"sort injection", PageRequest{Sort: "id; DROP TABLE tasks"}, "sort"},
		{"bad order", PageRequest{Order: "sideways"}, "order"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizePageRequest("tasks", tt.req)
			require.Error(t, err)

			var sqlErr *sqlerr.Error
			require.ErrorAs(t, err, &sqlErr)
			assert.Equal(t, sqlerr.KindValidation, sqlErr.Kind)
			assert.Equal(t, []string{tt.field}, sqlErr.Fields)
		})
	}
}
