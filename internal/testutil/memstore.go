// Package testutil holds test doubles and throwaway infrastructure for tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var selectByColumn = regexp.MustCompile(`^SELECT \* FROM ([A-Za-z_][A-Za-z0-9_]*) WHERE ([A-Za-z_][A-Za-z0-9_]*) = @param0$`)

// MemStore is an in-memory record store that mirrors RecordRepository's
// contract: ids are assigned on insert unless the record carries one,
// updated_at is bumped on update, missing rows return sqlerr.ErrNotFound and
// unknown tables fail validation.
type MemStore struct {
	mu      sync.Mutex
	rows    map[string]map[int64]repository.Record
	nextID  map[string]int64
	allowed map[string]bool
	types   *pgtype.Map

	// ColumnTypes maps table to column to type OID. Values written to a typed
	// column are encoded the way pgx would bind them, so a value of the wrong
	// type fails with the driver's own error.
	ColumnTypes map[string]map[string]uint32

	// Err, when set, is returned by every data operation.
	Err error
	// PingErr is returned by Ping.
	PingErr error
	// QueryFunc answers ExecuteQuery calls the store cannot interpret itself.
	QueryFunc func(query string, params []any) ([]repository.Record, error)
	// Queries records every ExecuteQuery statement.
	Queries []string

	now func() time.Time
}

func NewMemStore() *MemStore {
	allowed := make(map[string]bool, len(repository.Tables))
	for _, table := range repository.Tables {
		allowed[table] = true
	}

	return &MemStore{
		rows:    make(map[string]map[int64]repository.Record),
		nextID:  make(map[string]int64),
		allowed: allowed,
		types:   pgtype.NewMap(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemStore) KnowsTable(table string) bool {
	return repository.ValidateIdentifier(table) == nil && m.allowed[table]
}

func (m *MemStore) check(operation, table string) error {
	if m.Err != nil {
		return m.Err
	}
	if !m.KnowsTable(table) {
		return sqlerr.NewValidationError(operation, "", "unknown table", "table")
	}
	return nil
}

func (m *MemStore) table(name string) map[int64]repository.Record {
	rows, ok := m.rows[name]
	if !ok {
		rows = make(map[int64]repository.Record)
		m.rows[name] = rows
	}
	return rows
}

// encode binds every typed column of record in sorted column order, the
// order RecordRepository generates its arguments in.
func (m *MemStore) encode(operation, table string, record repository.Record) error {
	for i, column := range sortedKeys(record) {
		oid, ok := m.ColumnTypes[table][column]
		if column == "id" {
			oid, ok = pgtype.Int8OID, true
		}
		if !ok {
			continue
		}
		value := repository.NormalizeValue(record[column])
		if _, err := m.types.Encode(oid, m.types.FormatCodeForOID(oid), value, nil); err != nil {
			return sqlerr.Classify(operation, table, fmt.Errorf("failed to encode args[%d]: %w", i, err))
		}
	}
	return nil
}

func sortedKeys(record repository.Record) []string {
	columns := make([]string, 0, len(record))
	for column := range record {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

// recordID reads a caller-supplied id the way a BIGINT column would accept it.
func recordID(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case float64:
		if v == math.Trunc(v) {
			return int64(v), true
		}
	}
	return 0, false
}

func storedValue(value any) any {
	switch v := value.(type) {
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return string(v)
		}
		return decoded
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	default:
		return value
	}
}

func clone(record repository.Record) repository.Record {
	copied := make(repository.Record, len(record))
	for column, value := range record {
		copied[column] = value
	}
	return copied
}

func (m *MemStore) sorted(table string) []repository.Record {
	rows := m.table(table)
	ids := make([]int64, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]repository.Record, 0, len(ids))
	for _, id := range ids {
		records = append(records, clone(rows[id]))
	}
	return records
}

// Seed inserts record as-is (after id assignment) and returns its id.
func (m *MemStore) Seed(table string, record repository.Record) int64 {
	created, err := m.Insert(context.Background(), table, record)
	if err != nil {
		panic(err)
	}
	return created["id"].(int64)
}

func (m *MemStore) ExecuteQuery(_ context.Context, query string, params ...any) ([]repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	m.Queries = append(m.Queries, query)

	if match := selectByColumn.FindStringSubmatch(query); match != nil && len(params) == 1 && m.KnowsTable(match[1]) {
		var records []repository.Record
		for _, record := range m.sorted(match[1]) {
			if fmt.Sprint(record[match[2]]) == fmt.Sprint(params[0]) {
				records = append(records, record)
			}
		}
		return records, nil
	}

	if m.QueryFunc != nil {
		return m.QueryFunc(query, params)
	}
	return nil, sqlerr.Classify("execute", "", fmt.Errorf("unsupported query: %s", query))
}

func (m *MemStore) GetByID(_ context.Context, table string, id int64) (repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("get", table); err != nil {
		return nil, err
	}
	record, ok := m.table(table)[id]
	if !ok {
		return nil, sqlerr.ErrNotFound
	}
	return clone(record), nil
}

func (m *MemStore) GetAll(_ context.Context, table string) ([]repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("list", table); err != nil {
		return nil, err
	}
	return m.sorted(table), nil
}

func (m *MemStore) Insert(_ context.Context, table string, record repository.Record) (repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("insert", table); err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, sqlerr.NewValidationError("insert", table, "record is empty")
	}

	for column := range record {
		if err := repository.ValidateIdentifier(column); err != nil {
			return nil, sqlerr.NewValidationError("insert", table, "record contains an invalid column name")
		}
	}
	if err := m.encode("insert", table, record); err != nil {
		return nil, err
	}

	rows := m.table(table)

	// An explicit id is stored as given and, as with a serial column, does
	// not advance the sequence.
	var id int64
	if value, ok := record["id"]; ok {
		explicit, valid := recordID(value)
		if !valid {
			index := sort.SearchStrings(sortedKeys(record), "id")
			return nil, sqlerr.Classify("insert", table,
				fmt.Errorf("failed to encode args[%d]: cannot use %v as a bigint id", index, value))
		}
		id = explicit
	} else {
		id = m.nextID[table] + 1
	}
	if _, taken := rows[id]; taken {
		return nil, sqlerr.Classify("insert", table, &pgconn.PgError{
			Code:           "23505",
			Message:        fmt.Sprintf(`duplicate key value violates unique constraint "%s_pkey"`, table),
			TableName:      table,
			ConstraintName: table + "_pkey",
		})
	}
	if _, explicit := record["id"]; !explicit {
		m.nextID[table] = id
	}

	now := m.now()
	stored := repository.Record{"created_at": now, "updated_at": now}
	for column, value := range record {
		stored[column] = storedValue(value)
	}
	stored["id"] = id

	rows[id] = stored
	return clone(stored), nil
}

func (m *MemStore) Update(_ context.Context, table string, id int64, record repository.Record) (repository.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("update", table); err != nil {
		return nil, err
	}
	stored, ok := m.table(table)[id]
	if !ok {
		return nil, sqlerr.ErrNotFound
	}

	for column := range record {
		if err := repository.ValidateIdentifier(column); err != nil {
			return nil, sqlerr.NewValidationError("update", table, "record contains an invalid column name")
		}
	}
	if err := m.encode("update", table, record); err != nil {
		return nil, err
	}

	for column, value := range record {
		if column == "updated_at" {
			continue
		}
		stored[column] = storedValue(value)
	}
	stored["updated_at"] = m.now()

	return clone(stored), nil
}

func (m *MemStore) DeleteByID(_ context.Context, table string, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("delete", table); err != nil {
		return false, err
	}
	rows := m.table(table)
	if _, ok := rows[id]; !ok {
		return false, nil
	}
	delete(rows, id)
	return true, nil
}

func (m *MemStore) Count(_ context.Context, table string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("count", table); err != nil {
		return 0, err
	}
	return int64(len(m.table(table))), nil
}

// GetPage pages by id only; sort and order are validated but not applied.
func (m *MemStore) GetPage(_ context.Context, table string, req repository.PageRequest) (*repository.PageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.check("page", table); err != nil {
		return nil, err
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = repository.DefaultPageLimit
	}
	if req.Page < 1 || req.Page > repository.MaxPage || req.Limit < 1 || req.Limit > repository.MaxPageLimit {
		return nil, sqlerr.NewValidationError("page", table, "invalid paging", "page", "limit")
	}
	if req.Sort != "" && repository.ValidateIdentifier(req.Sort) != nil {
		return nil, sqlerr.NewValidationError("page", table, "invalid sort column", "sort")
	}

	all := m.sorted(table)
	start := (req.Page - 1) * req.Limit
	end := start + req.Limit
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return &repository.PageResult{
		Records: all[start:end],
		Page:    req.Page,
		Limit:   req.Limit,
		Total:   int64(len(all)),
		Pages:   int(math.Ceil(float64(len(all)) / float64(req.Limit))),
	}, nil
}

func (m *MemStore) Ping(context.Context) error {
	return m.PingErr
}
