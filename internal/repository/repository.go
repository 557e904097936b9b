// Package repository handles all interactions with the database.
//
// RecordRepository is a schema-agnostic query builder and executor. It turns
// a table name plus a column/value Record into parameterized SQL, runs it on
// the shared pool and hands rows back as Records.
//
// Values are always bound as parameters. Identifiers cannot be, so every
// table and column name is checked against IdentifierPattern (tables also
// against the allow-list) and quoted before it is placed in SQL text.
package repository

import (
	"context"
	"math"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Record is one row as a column name to value mapping.
type Record map[string]any

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// RecordRepository executes generated statements against a shared pool.
//
// Each call borrows a connection for the statement only; the pool itself is
// owned by the database package and is never closed here.
type RecordRepository struct {
	db      DBTX
	tables  map[string]struct{}
	timeout time.Duration
}

// NewRecordRepository builds a repository over db.
//
// tables is the allow-list of physical tables; when it is empty any name that
// matches IdentifierPattern is accepted. A positive timeout bounds every call.
func NewRecordRepository(db DBTX, timeout time.Duration, tables ...string) *RecordRepository {
	allowed := make(map[string]struct{}, len(tables))
	for _, table := range tables {
		allowed[table] = struct{}{}
	}

	return &RecordRepository{
		db:      db,
		tables:  allowed,
		timeout: timeout,
	}
}

// KnowsTable reports whether table passes identifier and allow-list checks.
func (r *RecordRepository) KnowsTable(table string) bool {
	return r.checkTable("lookup", table) == nil
}

func (r *RecordRepository) checkTable(operation, table string) error {
	if err := ValidateIdentifier(table); err != nil {
		return sqlerr.NewValidationError(operation, "", "invalid table name", "table")
	}
	if len(r.tables) > 0 {
		if _, ok := r.tables[table]; !ok {
			return sqlerr.NewValidationError(operation, "", "unknown table", "table")
		}
	}
	return nil
}

func (r *RecordRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func rowToRecord(row pgx.CollectableRow) (Record, error) {
	values, err := pgx.RowToMap(row)
	return Record(values), err
}

func (r *RecordRepository) query(ctx context.Context, operation, table, sql string, args ...any) ([]Record, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.Classify(operation, table, err)
	}

	records, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, sqlerr.Classify(operation, table, err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// ExecuteQuery runs a caller-written statement.
//
// Placeholders are either native ($1, $2, ...) or @paramN, where @param0 is
// bound to params[0]. Any failure is returned classified but callers are not
// expected to distinguish between kinds.
func (r *RecordRepository) ExecuteQuery(ctx context.Context, query string, params ...any) ([]Record, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.query(ctx, "execute", "", RewritePlaceholders(query), normalizeValues(params)...)
}

// GetByID returns the row whose id matches, or sqlerr.ErrNotFound.
func (r *RecordRepository) GetByID(ctx context.Context, table string, id int64) (Record, error) {
	if err := r.checkTable("get", table); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.query(ctx, "get", table, buildSelectByID(table), id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sqlerr.ErrNotFound
	}
	return records[0], nil
}

// GetAll returns every row of table ordered by id.
func (r *RecordRepository) GetAll(ctx context.Context, table string) ([]Record, error) {
	if err := r.checkTable("list", table); err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	return r.query(ctx, "list", table, buildSelectAll(table))
}

// Insert writes record and returns the stored row, server defaults included.
func (r *RecordRepository) Insert(ctx context.Context, table string, record Record) (Record, error) {
	if err := r.checkTable("insert", table); err != nil {
		return nil, err
	}

	sql, args, err := buildInsert(table, record)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.query(ctx, "insert", table, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sqlerr.NewConsistencyError("insert", table, "insert returned no row")
	}
	return records[0], nil
}

// Update sets every column in record plus updated_at = now() and returns the
// updated row. A caller-supplied updated_at is ignored. sqlerr.ErrNotFound is
// returned when no row has the id.
func (r *RecordRepository) Update(ctx context.Context, table string, id int64, record Record) (Record, error) {
	if err := r.checkTable("update", table); err != nil {
		return nil, err
	}

	sql, args, err := buildUpdate(table, id, record)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.query(ctx, "update", table, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sqlerr.ErrNotFound
	}
	return records[0], nil
}

// DeleteByID removes the row with id. It reports false when nothing matched.
//
// The delete runs in a transaction; if it would remove more than one row the
// transaction is rolled back and a consistency error is returned.
func (r *RecordRepository) DeleteByID(ctx context.Context, table string, id int64) (bool, error) {
	if err := r.checkTable("delete", table); err != nil {
		return false, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var deleted bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, buildDeleteByID(table), id)
		if err != nil {
			return err
		}

		switch affected := tag.RowsAffected(); {
		case affected > 1:
			return sqlerr.NewConsistencyError("delete", table, "delete by id matched more than one row")
		case affected == 1:
			deleted = true
		}
		return nil
	})
	if err != nil {
		return false, sqlerr.Classify("delete", table, err)
	}

	return deleted, nil
}

// Count returns the number of rows in table.
func (r *RecordRepository) Count(ctx context.Context, table string) (int64, error) {
	if err := r.checkTable("count", table); err != nil {
		return 0, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	records, err := r.query(ctx, "count", table, buildCount(table))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	total, _ := records[0]["total"].(int64)
	return total, nil
}

// PageRequest selects one page of a table. Zero values take defaults.
type PageRequest struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// PageResult is one page of rows plus the information needed to page further.
type PageResult struct {
	Records []Record
	Page    int
	Limit   int
	Total   int64
	Pages   int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps (Page-1)*Limit well inside a BIGINT offset.
	MaxPage          = 1_000_000
)

// GetPage returns one sorted page of table with the total row count.
//
// Page must be between 1 and MaxPage and Limit between 1 and MaxPageLimit. Sort must be a
// valid column name (default "id"), Order "asc" or "desc" (default "asc").
// Limit and offset are bound as parameters.
func (r *RecordRepository) GetPage(ctx context.Context, table string, req PageRequest) (*PageResult, error) {
	if err := r.checkTable("page", table); err != nil {
		return nil, err
	}

	req, err := normalizePageRequest(table, req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	offset := int64(req.Page-1) * int64(req.Limit)
	records, err := r.query(ctx, "page", table, buildSelectPage(table, req.Sort, req.Order), req.Limit, offset)
	if err != nil {
		return nil, err
	}

	countRecords, err := r.query(ctx, "page", table, buildCount(table))
	if err != nil {
		return nil, err
	}

	var total int64
	if len(countRecords) > 0 {
		total, _ = countRecords[0]["total"].(int64)
	}

	return &PageResult{
		Records: records,
		Page:    req.Page,
		Limit:   req.Limit,
		Total:   total,
		Pages:   int(math.Ceil(float64(total) / float64(req.Limit))),
	}, nil
}

// Ping checks that a pooled connection can reach the database.
func (r *RecordRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		return sqlerr.Classify("ping", "", err)
	}
	return nil
}
