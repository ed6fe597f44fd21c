package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcleaner/internal/shared/testutil"
)

func TestAppErrorWrapping(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := Wrap(ErrTypeDecode, "failed to read file", cause)

	assert.Contains(t, err.Error(), "failed to read file")
	assert.Contains(t, err.Error(), "disk on fire")
	assert.True(t, stderrors.Is(err, cause))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeEmptyFile, TypeOf(New(ErrTypeEmptyFile, "nothing here")))
	assert.Equal(t, ErrTypeProcessingFailed, TypeOf(stderrors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", New(ErrTypeNotFound, "gone"))
	assert.Equal(t, ErrTypeNotFound, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeNotFound))
	assert.False(t, IsType(wrapped, ErrTypeEmptyFile))
}

func TestAppErrorContext(t *testing.T) {
	err := New(ErrTypeInvalidColumn, "no such column").
		WithContext("column", "price").
		WithContext("dataset", "abc")

	assert.Equal(t, "price", err.Context["column"])
	assert.Equal(t, "abc", err.Context["dataset"])
}

func TestProblemDetailsMarshalFlattensExtensions(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation,
		"Validation Failed", "bad input", "/api/datasets")
	p.WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeValidation, decoded["type"])
	assert.Equal(t, float64(400), decoded["status"])
	assert.Equal(t, "bad input", decoded["detail"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
}

func TestErrorToProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/datasets", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "unsupported format",
			err:        New(ErrTypeUnsupportedFormat, "no parquet"),
			wantStatus: http.StatusUnsupportedMediaType,
			wantType:   TypeUnsupportedFormat,
		},
		{
			name:       "decode error",
			err:        New(ErrTypeDecode, "bad bytes"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDecodeFailed,
		},
		{
			name:       "empty file",
			err:        New(ErrTypeEmptyFile, "no rows"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeEmptyFile,
		},
		{
			name:       "invalid strategy",
			err:        New(ErrTypeInvalidStrategy, "bad strategy"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidStrategy,
		},
		{
			name:       "invalid column",
			err:        New(ErrTypeInvalidColumn, "no column"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidColumn,
		},
		{
			name:       "not found",
			err:        New(ErrTypeNotFound, "gone"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "processing failed",
			err:        New(ErrTypeProcessingFailed, "panic"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeProcessingFailed,
		},
		{
			name:       "plain error",
			err:        stderrors.New("anything"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "/api/datasets", p.Instance)
		})
	}
}

func TestHandleError(t *testing.T) {
	logger, records := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/missing", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, New(ErrTypeNotFound, "dataset not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "dataset not found", body["detail"])

	assert.True(t, records.ContainsMessage("request failed"))
}
