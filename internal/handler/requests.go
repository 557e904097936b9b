package handler

import (
	"bytes"
	"encoding/json"

	"github.com/deppfellow/dealer-dashboard/internal/repository"
	"github.com/deppfellow/dealer-dashboard/internal/validation"
)

// EmptyRequest is used by endpoints without input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

func newEmptyRequest() *EmptyRequest { return &EmptyRequest{} }

// IDRequest identifies one row through the :id path parameter.
type IDRequest struct {
	ID int64 `param:"id" validate:"required,min=1"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

func newIDRequest() *IDRequest { return &IDRequest{} }

// decodeRecord decodes a JSON object keeping numbers as json.Number, so
// integers are not widened to float64 before they reach the database.
func decodeRecord(data []byte) (repository.Record, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var record repository.Record
	if err := decoder.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecordRequest carries a free-form record body. Required fields are checked
// per resource by the service.
type RecordRequest struct {
	Fields repository.Record
}

func (r *RecordRequest) UnmarshalJSON(data []byte) error {
	record, err := decodeRecord(data)
	if err != nil {
		return err
	}
	r.Fields = record
	return nil
}

func (r *RecordRequest) Validate() error { return nil }

func newRecordRequest() *RecordRequest { return &RecordRequest{} }

// UpdateRecordRequest is a record body addressed by :id.
type UpdateRecordRequest struct {
	ID     int64 `param:"id" validate:"required,min=1"`
	Fields repository.Record
}

func (r *UpdateRecordRequest) UnmarshalJSON(data []byte) error {
	record, err := decodeRecord(data)
	if err != nil {
		return err
	}
	r.Fields = record
	return nil
}

func (r *UpdateRecordRequest) Validate() error {
	return validation.Struct(r)
}

func newUpdateRecordRequest() *UpdateRecordRequest { return &UpdateRecordRequest{} }

// SettingKeyRequest addresses one setting through the :key path parameter.
type SettingKeyRequest struct {
	Key string `param:"key" validate:"required,max=255"`
}

func (r *SettingKeyRequest) Validate() error {
	return validation.Struct(r)
}

func newSettingKeyRequest() *SettingKeyRequest { return &SettingKeyRequest{} }

// PutSettingRequest is the body of PUT /api/settings/:key.
type PutSettingRequest struct {
	Key   string          `param:"key" json:"-" validate:"required,max=255"`
	Value json.RawMessage `json:"value"`
}

func (r *PutSettingRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if len(bytes.TrimSpace(r.Value)) == 0 {
		return validation.CustomValidationErrors{
			{Field: "value", Message: "is required"},
		}
	}
	return nil
}

func newPutSettingRequest() *PutSettingRequest { return &PutSettingRequest{} }

// TableRequest selects a page of a data table.
type TableRequest struct {
	Table string `query:"table" validate:"required"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Sort  string `query:"sort"`
	Order string `query:"order"`
}

func (r *TableRequest) Validate() error {
	return validation.Struct(r)
}

func (r *TableRequest) PageRequest() repository.PageRequest {
	return repository.PageRequest{
		Page:  r.Page,
		Limit: r.Limit,
		Sort:  r.Sort,
		Order: r.Order,
	}
}

func newTableRequest() *TableRequest { return &TableRequest{} }

// KindRequest selects a chart or map variant through ?type=.
type KindRequest struct {
	Type string `query:"type" validate:"required"`
}

func (r *KindRequest) Validate() error {
	return validation.Struct(r)
}

func newKindRequest() *KindRequest { return &KindRequest{} }
