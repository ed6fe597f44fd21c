package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcleaner/internal/chartprep"
	"tabcleaner/internal/cleaning"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/shared/testutil"
)

const sampleCSV = "city,amount\nBerlin,10\nParis,\nBerlin,30\nBerlin,10\n"

func newTestService(t *testing.T) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDatasetService(logger, nil, time.Hour)
}

func uploadSample(t *testing.T, s *DatasetService) string {
	t.Helper()
	res, err := s.Upload(context.Background(), []byte(sampleCSV), "sample.csv")
	require.NoError(t, err)
	return res.ID
}

func TestUpload(t *testing.T) {
	s := newTestService(t)

	res, err := s.Upload(context.Background(), []byte(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "sample.csv", res.Filename)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 2, res.Columns)
	assert.Equal(t, "utf-8", res.Encoding)
	require.Len(t, res.Profiles, 2)
	assert.Equal(t, 1, res.Profiles[1].MissingCount)
}

func TestUploadError(t *testing.T) {
	s := newTestService(t)

	_, err := s.Upload(context.Background(), []byte("data"), "data.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeUnsupportedFormat))
}

func TestPreview(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)

	p, err := s.Preview(context.Background(), id, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, p.Rows)
	assert.Equal(t, []string{"city", "amount"}, p.Columns)
	require.Len(t, p.Head, 2)
	assert.Equal(t, []string{"Berlin", "10"}, p.Head[0])
	assert.Equal(t, 1, p.Summary.DuplicateRows)
	assert.Nil(t, p.Report, "no report before the first clean")
}

func TestPreviewNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.Preview(context.Background(), "missing", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestCleanReplacesStoredTable(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)

	rep, err := s.Clean(context.Background(), id, cleaning.Config{
		MissingStrategy: cleaning.StrategyFillMean,
		OutlierMethod:   cleaning.OutlierNone,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.RowsIn)
	assert.Equal(t, 3, rep.RowsOut)
	assert.Equal(t, 1, rep.DuplicatesRemoved)
	assert.Equal(t, 1, rep.MissingFilled["amount"])

	p, err := s.Preview(context.Background(), id, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Rows, "store holds the cleaned table")
	require.NotNil(t, p.Report)
	assert.Equal(t, rep.RowsOut, p.Report.RowsOut)
}

func TestCleanInvalidConfigLeavesStoreIntact(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)

	_, err := s.Clean(context.Background(), id, cleaning.Config{
		MissingStrategy: "interpolate",
		OutlierMethod:   cleaning.OutlierNone,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidStrategy))

	p, err := s.Preview(context.Background(), id, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rows)
	assert.Nil(t, p.Report)
}

func TestConcurrentCleanAndPreview(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)
	ctx := context.Background()
	cfg := cleaning.Config{
		MissingStrategy: cleaning.StrategyFillMean,
		OutlierMethod:   cleaning.OutlierNone,
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.Clean(ctx, id, cfg)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			p, err := s.Preview(ctx, id, 10)
			if assert.NoError(t, err) {
				assert.Len(t, p.Profiles, len(p.Columns))
			}
		}()
	}
	wg.Wait()

	p, err := s.Preview(ctx, id, 10)
	require.NoError(t, err)
	require.NotNil(t, p.Report)
	assert.Equal(t, p.Report.RowsOut, p.Rows)
}

func TestChart(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)

	chart, err := s.Chart(context.Background(), id, chartprep.Request{
		Kind:    chartprep.KindBar,
		XColumn: "city",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Berlin", "Paris"}, chart.Labels)
	assert.Equal(t, []float64{3, 1}, chart.Values)
}

func TestExport(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)
	ctx := context.Background()

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, id, FormatCSV, &buf))
		assert.Contains(t, buf.String(), "city,amount")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, id, FormatJSON, &buf))
		assert.Contains(t, buf.String(), `"city": "Berlin"`)
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, id, FormatXLSX, &buf))
		assert.NotZero(t, buf.Len())
	})

	t.Run("summary workbook before any clean", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Export(ctx, id, FormatSummary, &buf))
		assert.NotZero(t, buf.Len())
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		err := s.Export(ctx, id, "parquet", &buf)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestDelete(t *testing.T) {
	s := newTestService(t)
	id := uploadSample(t, s)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, id))

	err := s.Delete(ctx, id)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	_, err = s.Preview(ctx, id, 10)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestEvictExpired(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	s := NewDatasetService(logger, nil, 10*time.Millisecond)
	id := uploadSample(t, s)

	s.mu.Lock()
	s.store[id].lastUsed = time.Now().Add(-time.Minute)
	s.mu.Unlock()

	s.evictExpired()

	_, err := s.Preview(context.Background(), id, 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}
