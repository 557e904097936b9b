package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// IdentifierPattern is the shape every table and column name must have.
var IdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// maxIdentifierLength is PostgreSQL's NAMEDATALEN - 1.
const maxIdentifierLength = 63

// ErrInvalidIdentifier is returned by ValidateIdentifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ValidateIdentifier rejects names that may not be placed in SQL text.
func ValidateIdentifier(name string) error {
	if len(name) == 0 || len(name) > maxIdentifierLength || !IdentifierPattern.MatchString(name) {
		return ErrInvalidIdentifier
	}
	return nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// sortedColumns validates and orders record keys so generated SQL is stable.
func sortedColumns(operation, table string, record Record) ([]string, error) {
	columns := make([]string, 0, len(record))
	for column := range record {
		if err := ValidateIdentifier(column); err != nil {
			return nil, sqlerr.NewValidationError(operation, table, "record contains an invalid column name")
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns, nil
}

func buildSelectByID(table string) string {
	return "SELECT * FROM " + quote(table) + " WHERE id = $1 LIMIT 1"
}

func buildSelectAll(table string) string {
	return "SELECT * FROM " + quote(table) + " ORDER BY id"
}

func buildCount(table string) string {
	return "SELECT count(*) AS total FROM " + quote(table)
}

func buildDeleteByID(table string) string {
	return "DELETE FROM " + quote(table) + " WHERE id = $1"
}

// buildSelectPage expects sort and order to be validated already.
func buildSelectPage(table, sortColumn, order string) string {
	return fmt.Sprintf("SELECT * FROM %s ORDER BY %s %s LIMIT $1 OFFSET $2",
		quote(table), quote(sortColumn), strings.ToUpper(order))
}

func buildInsert(table string, record Record) (string, []any, error) {
	if len(record) == 0 {
		return "", nil, sqlerr.NewValidationError("insert", table, "record is empty")
	}

	columns, err := sortedColumns("insert", table, record)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		names[i] = quote(column)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = NormalizeValue(record[column])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(table), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	return sql, args, nil
}

func buildUpdate(table string, id int64, record Record) (string, []any, error) {
	values := make(Record, len(record))
	for column, value := range record {
		if column == "updated_at" {
			continue
		}
		values[column] = value
	}

	columns, err := sortedColumns("update", table, values)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	for i, column := range columns {
		sets = append(sets, quote(column)+" = $"+strconv.Itoa(i+1))
		args = append(args, NormalizeValue(values[column]))
	}
	sets = append(sets, quote("updated_at")+" = now()")
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING *",
		quote(table), strings.Join(sets, ", "), len(args))

	return sql, args, nil
}

func normalizePageRequest(table string, req PageRequest) (PageRequest, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = DefaultPageLimit
	}
	if req.Sort == "" {
		req.Sort = "id"
	}
	req.Order = strings.ToLower(req.Order)
	if req.Order == "" {
		req.Order = "asc"
	}

	switch {
	case req.Page < 1 || req.Page > MaxPage:
		return req, sqlerr.NewValidationError("page", table,
			fmt.Sprintf("page must be between 1 and %d", MaxPage), "page")
	case req.Limit < 1 || req.Limit > MaxPageLimit:
		return req, sqlerr.NewValidationError("page", table,
			fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit), "limit")
	case ValidateIdentifier(req.Sort) != nil:
		return req, sqlerr.NewValidationError("page", table, "invalid sort column", "sort")
	case req.Order != "asc" && req.Order != "desc":
		return req, sqlerr.NewValidationError("page", table, "order must be asc or desc", "order")
	}

	return req, nil
}

// NormalizeValue prepares a decoded JSON value for binding as a statement argument.
//
// An integral json.Number becomes int64. Any other number is bound as
// pgtype.Numeric parsed from its literal text, so 19.99 reaches a NUMERIC
// column exactly and 2.7 is refused by an integer column instead of being
// truncated. Objects and arrays become their JSON text, which PostgreSQL
// accepts for json/jsonb columns.
func NormalizeValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		var n pgtype.Numeric
		if err := n.ScanScientific(v.String()); err == nil {
			return n
		}
		return v.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(encoded)
	default:
		return value
	}
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		normalized[i] = NormalizeValue(value)
	}
	return normalized
}

const paramPrefix = "@param"

// RewritePlaceholders turns @paramN into $N+1.
//
// Quoted literals, quoted identifiers, -- line comments, /* */ block comments
// and dollar-quoted bodies are copied untouched. Other text, native $N
// placeholders included, is kept.
func RewritePlaceholders(query string) string {
	if !strings.Contains(query, paramPrefix) {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))

	for i := 0; i < len(query); {
		c := query[i]

		if skip := skipRegion(query, i); skip > i {
			b.WriteString(query[i:skip])
			i = skip
			continue
		}

		if c == '@' && strings.HasPrefix(query[i:], paramPrefix) && (i == 0 || !isIdentByte(query[i-1])) {
			start := i + len(paramPrefix)
			end := start
			for end < len(query) && query[end] >= '0' && query[end] <= '9' {
				end++
			}
			if end > start && (end == len(query) || !isIdentByte(query[end])) {
				if n, err := strconv.Atoi(query[start:end]); err == nil {
					b.WriteString("$" + strconv.Itoa(n+1))
					i = end
					continue
				}
			}
		}

		b.WriteByte(c)
		i++
	}

	return b.String()
}

// skipRegion returns the index just past the literal, quoted identifier,
// comment or dollar-quoted body starting at i, or i when none starts there.
// An unterminated region runs to the end of the query.
func skipRegion(query string, i int) int {
	rest := query[i:]

	switch {
	case rest[0] == '\'' || rest[0] == '"':
		// A doubled quote reads as close then reopen.
		if end := strings.IndexByte(rest[1:], rest[0]); end >= 0 {
			return i + end + 2
		}
		return len(query)

	case strings.HasPrefix(rest, "--"):
		if end := strings.IndexByte(rest, '\n'); end >= 0 {
			return i + end + 1
		}
		return len(query)

	case strings.HasPrefix(rest, "/*"):
		depth := 0
		for j := 0; j < len(rest)-1; j++ {
			switch {
			case rest[j] == '/' && rest[j+1] == '*':
				depth++
				j++
			case rest[j] == '*' && rest[j+1] == '/':
				depth--
				j++
				if depth == 0 {
					return i + j + 1
				}
			}
		}
		return len(query)

	case rest[0] == '$':
		tag, ok := dollarTag(rest)
		if !ok || (i > 0 && isIdentByte(query[i-1])) {
			return i
		}
		if end := strings.Index(rest[len(tag):], tag); end >= 0 {
			return i + len(tag) + end + len(tag)
		}
		return len(query)
	}

	return i
}

// dollarTag reports the opening $tag$ (or $$) at the start of s. $1 style
// placeholders are not tags because a tag may not start with a digit.
func dollarTag(s string) (string, bool) {
	for j := 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '$':
			return s[:j+1], true
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && j > 1:
		default:
			return "", false
		}
	}
	return "", false
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
