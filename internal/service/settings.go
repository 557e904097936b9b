package service

import (
	"context"
	"encoding/json"

	"github.com/deppfellow/dealer-dashboard/internal/errs"
	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/sqlerr"
)

const (
	settingsTable     = "settings"
	settingByKeyQuery = "SELECT * FROM settings WHERE key = @param0"
)

// Setting is a single key/value pair as returned by PUT /api/settings/:key.
type Setting struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// SettingsService stores free-form JSON values by key.
type SettingsService struct {
	store RecordStore
}

func NewSettingsService(store RecordStore) *SettingsService {
	return &SettingsService{store: store}
}

// All folds every setting row into a single key/value object.
func (s *SettingsService) All(ctx context.Context) (map[string]any, error) {
	records, err := s.store.GetAll(ctx, settingsTable)
	if err != nil {
		return nil, err
	}

	settings := make(map[string]any, len(records))
	for _, record := range records {
		key, ok := record["key"].(string)
		if !ok {
			continue
		}
		settings[key] = record["value"]
	}
	return settings, nil
}

func settingNotFound() *errs.HTTPError {
	code := "SETTING_NOT_FOUND"
	return errs.NewNotFoundError("Setting not found", &code)
}

// find returns the row for key, or nil when there is none.
func (s *SettingsService) find(ctx context.Context, key string) (repository.Record, error) {
	rows, err := s.store.ExecuteQuery(ctx, settingByKeyQuery, key)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func rowID(record repository.Record) (int64, error) {
	id, ok := record["id"].(int64)
	if !ok {
		return 0, sqlerr.NewConsistencyError("settings", settingsTable, "setting row has no integer id")
	}
	return id, nil
}

// Get returns a single setting.
func (s *SettingsService) Get(ctx context.Context, key string) (*Setting, error) {
	row, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, settingNotFound()
	}
	return &Setting{Key: key, Value: row["value"]}, nil
}

// Delete removes the setting with key.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	row, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	if row == nil {
		return settingNotFound()
	}

	id, err := rowID(row)
	if err != nil {
		return err
	}

	deleted, err := s.store.DeleteByID(ctx, settingsTable, id)
	if err != nil {
		return err
	}
	if !deleted {
		return settingNotFound()
	}
	return nil
}

// Put updates the setting with key, creating it when it does not exist yet.
// value must be valid JSON.
func (s *SettingsService) Put(ctx context.Context, key string, value json.RawMessage) (*Setting, error) {
	if !json.Valid(value) {
		return nil, errs.NewBadRequestError("Value must be valid JSON", nil, []errs.FieldError{{Field: "value", Error: "is invalid"}})
	}

	existing, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}

	var result repository.Record
	if existing != nil {
		id, idErr := rowID(existing)
		if idErr != nil {
			return nil, idErr
		}
		result, err = s.store.Update(ctx, settingsTable, id, repository.Record{"value": value})
	} else {
		result, err = s.store.Insert(ctx, settingsTable, repository.Record{"key": key, "value": value})
	}
	if err != nil {
		return nil, err
	}

	return &Setting{Key: key, Value: result["value"]}, nil
}
