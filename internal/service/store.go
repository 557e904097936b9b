package service

import (
	"context"

	"github.com/deppfellow/dealer-dashboard/internal/repository"
)

// RecordStore is the data access the services need.
// *repository.RecordRepository implements it.
type RecordStore interface {
	ExecuteQuery(ctx context.Context, query string, params ...any) ([]repository.Record, error)
	GetByID(ctx context.Context, table string, id int64) (repository.Record, error)
	GetAll(ctx context.Context, table string) ([]repository.Record, error)
	Insert(ctx context.Context, table string, record repository.Record) (repository.Record, error)
	Update(ctx context.Context, table string, id int64, record repository.Record) (repository.Record, error)
	DeleteByID(ctx context.Context, table string, id int64) (bool, error)
	Count(ctx context.Context, table string) (int64, error)
	GetPage(ctx context.Context, table string, req repository.PageRequest) (*repository.PageResult, error)
	KnowsTable(table string) bool
	Ping(ctx context.Context) error
}

var _ RecordStore = (*repository.RecordRepository)(nil)
