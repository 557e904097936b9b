package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/deppfellow/dealer-dashboard/internal/logger"
	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
	"github.com/deppfellow/dealer-dashboard/internal/validation"
)

// ResourceService implements list/get/create/update/delete for one Resource.
type ResourceService struct {
	resource Resource
	store    RecordStore
	now      func() time.Time
}

func NewResourceService(resource Resource, store RecordStore) *ResourceService {
	return &ResourceService{
		resource: resource,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resource returns the descriptor the service was built from.
func (s *ResourceService) Resource() Resource {
	return s.resource
}

func (s *ResourceService) notFound() *errs.HTTPError {
	code := errs.MakeUpperCaseWithUnderscores(s.resource.Label) + "_NOT_FOUND"
	return errs.NewNotFoundError(s.resource.Label+" not found", &code)
}

func (s *ResourceService) present(record repository.Record) repository.Record {
	return stripHidden(record, s.resource.Hidden)
}

// stripHidden returns a copy of record without the hidden columns.
func stripHidden(record repository.Record, hidden []string) repository.Record {
	if len(hidden) == 0 || record == nil {
		return record
	}

	visible := make(repository.Record, len(record))
	for column, value := range record {
		visible[column] = value
	}
	for _, column := range hidden {
		delete(visible, column)
	}
	return visible
}

func (s *ResourceService) List(ctx context.Context) ([]repository.Record, error) {
	records, err := s.store.GetAll(ctx, s.resource.Table)
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i] = s.present(records[i])
	}
	return records, nil
}

func (s *ResourceService) Get(ctx context.Context, id int64) (repository.Record, error) {
	record, err := s.store.GetByID(ctx, s.resource.Table, id)
	if errors.Is(err, sqlerr.ErrNotFound) {
		return nil, s.notFound()
	}
	if err != nil {
		return nil, err
	}
	return s.present(record), nil
}

// serverAssigned lists columns the database fills in on insert. Clients may
// send them back (e.g. a record fetched, edited and posted again) but they are
// never written.
var serverAssigned = []string{"id", "created_at", "updated_at"}

// Create checks required fields, applies defaults and inserts the record.
func (s *ResourceService) Create(ctx context.Context, payload repository.Record) (repository.Record, error) {
	if err := validation.RequireFields(payload, s.resource.Required...); err != nil {
		return nil, err
	}

	record := make(repository.Record, len(payload)+len(s.resource.Defaults)+len(s.resource.StampOnCreate))
	for column, value := range payload {
		record[column] = value
	}
	for _, column := range serverAssigned {
		if _, ok := record[column]; ok {
			delete(record, column)
			logger.FromContext(ctx).Debug().
				Str("table", s.resource.Table).
				Str("column", column).
				Msg("ignoring server-assigned column on create")
		}
	}
	for column, value := range s.resource.Defaults {
		if isBlank(record[column]) {
			record[column] = value
		}
	}
	for _, column := range s.resource.StampOnCreate {
		record[column] = s.now()
	}

	created, err := s.store.Insert(ctx, s.resource.Table, record)
	if err != nil {
		return nil, err
	}
	return s.present(created), nil
}

// Update applies payload to the row with id. The primary key is not updatable.
func (s *ResourceService) Update(ctx context.Context, id int64, payload repository.Record) (repository.Record, error) {
	record := make(repository.Record, len(payload))
	for column, value := range payload {
		if column == "id" {
			continue
		}
		record[column] = value
	}

	updated, err := s.store.Update(ctx, s.resource.Table, id, record)
	if errors.Is(err, sqlerr.ErrNotFound) {
		return nil, s.notFound()
	}
	if err != nil {
		return nil, err
	}
	return s.present(updated), nil
}

func (s *ResourceService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteByID(ctx, s.resource.Table, id)
	if err != nil {
		return err
	}
	if !deleted {
		return s.notFound()
	}

	logger.FromContext(ctx).Info().
		Str("table", s.resource.Table).
		Int64("id", id).
		Msg("record deleted")
	return nil
}

// DeletedMessage is the confirmation text returned after a delete.
func (s *ResourceService) DeletedMessage() string {
	return s.resource.Label + " deleted successfully"
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}
