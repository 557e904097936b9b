package handler

import (
	"encoding/json"
	"testing"

	"github.com/deppfellow/dealer-dashboard/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequestKeepsNumbersExact(t *testing.T) {
	var req RecordRequest
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":9007199254740993,"total":19.99,"items":[{"sku":"A1"}]}`), &req))

	assert.Equal(t, json.Number("9007199254740993"), req.Fields["user_id"])
	assert.Equal(t, json.Number("19.99"), req.Fields["total"])
	assert.Equal(t, []any{map[string]any{"sku": "A1"}}, req.Fields["items"])
}

func TestRecordRequestRejectsNonObjects(t *testing.T) {
	var req RecordRequest
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &req))
}

func TestUpdateRecordRequestLeavesIDToThePath(t *testing.T) {
	req := UpdateRecordRequest{ID: 5}
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"title":"x"}`), &req))

	assert.Equal(t, int64(5), req.ID)
	assert.Equal(t, "x", req.Fields["title"])
	assert.NoError(t, req.Validate())
}

func TestPutSettingRequestValidate(t *testing.T) {
	req := PutSettingRequest{Key: "theme"}

	var custom validation.CustomValidationErrors
	require.ErrorAs(t, req.Validate(), &custom)
	assert.Equal(t, "value", custom[0].Field)

	req.Value = json.RawMessage(`"dark"`)
	assert.NoError(t, req.Validate())

	req.Key = ""
	assert.Error(t, req.Validate())
}

func TestIDRequestValidate(t *testing.T) {
	assert.Error(t, (&IDRequest{}).Validate())
	assert.Error(t, (&IDRequest{ID: -1}).Validate())
	assert.NoError(t, (&IDRequest{ID: 1}).Validate())
}
