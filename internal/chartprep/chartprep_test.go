package chartprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/shared/testutil"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewBuilder(logger)
}

func chartTable(t *testing.T, names []string, rows [][]string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(names)
	require.NoError(t, err)
	for _, raw := range rows {
		row := make([]dataset.Value, len(raw))
		for i, cell := range raw {
			if dataset.IsMissingToken(cell) {
				row[i] = dataset.Missing()
			} else {
				row[i] = dataset.String(cell)
			}
		}
		require.NoError(t, tbl.AppendRow(row))
	}
	tbl.ApplyTypes(dataset.Profile(tbl))
	return tbl
}

func TestBuildBarCount(t *testing.T) {
	tbl := chartTable(t, []string{"city"}, [][]string{
		{"Berlin"}, {"Paris"}, {"Berlin"}, {"Rome"}, {"Berlin"}, {"Paris"},
	})

	chart, err := newTestBuilder(t).Build(tbl, Request{Kind: KindBar, XColumn: "city"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Berlin", "Paris", "Rome"}, chart.Labels)
	assert.Equal(t, []float64{3, 2, 1}, chart.Values)
	assert.Equal(t, "count", chart.YTitle)
}

func TestBuildBarAggregated(t *testing.T) {
	tbl := chartTable(t, []string{"city", "amount"}, [][]string{
		{"Berlin", "10"}, {"Paris", "5"}, {"Berlin", "20"}, {"Paris", "7"},
	})
	b := newTestBuilder(t)

	t.Run("sum", func(t *testing.T) {
		chart, err := b.Build(tbl, Request{
			Kind: KindBar, XColumn: "city", YColumn: "amount", Aggregate: AggSum,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Berlin", "Paris"}, chart.Labels)
		assert.Equal(t, []float64{30, 12}, chart.Values)
	})

	t.Run("mean", func(t *testing.T) {
		chart, err := b.Build(tbl, Request{
			Kind: KindBar, XColumn: "city", YColumn: "amount", Aggregate: AggMean,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{15, 6}, chart.Values)
	})

	t.Run("non numeric y rejected", func(t *testing.T) {
		_, err := b.Build(tbl, Request{
			Kind: KindBar, XColumn: "amount", YColumn: "city", Aggregate: AggSum,
		}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})
}

func TestBuildPieCollapsesToOther(t *testing.T) {
	tbl := chartTable(t, []string{"kind"}, [][]string{
		{"a"}, {"a"}, {"a"}, {"b"}, {"b"}, {"c"}, {"d"}, {"e"},
	})

	chart, err := newTestBuilder(t).Build(tbl, Request{
		Kind: KindPie, XColumn: "kind", TopN: 2,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "Other"}, chart.Labels)
	assert.Equal(t, []float64{3, 2, 3}, chart.Values)
}

func TestBuildLineSortsByX(t *testing.T) {
	tbl := chartTable(t, []string{"day", "v"}, [][]string{
		{"2024-01-03", "30"}, {"2024-01-01", "10"}, {"2024-01-02", "20"},
	})

	chart, err := newTestBuilder(t).Build(tbl, Request{
		Kind: KindLine, XColumn: "day", YColumn: "v",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, chart.XLabels)
	assert.Equal(t, []float64{10, 20, 30}, chart.Y)
}

func TestBuildScatterOutlierMask(t *testing.T) {
	tbl := chartTable(t, []string{"x", "y"}, [][]string{
		{"1", "2"}, {"3", "4"}, {"5", "6"},
	})

	chart, err := newTestBuilder(t).Build(tbl, Request{
		Kind: KindScatter, XColumn: "x", YColumn: "y",
	}, []int{1})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 3, 5}, chart.X)
	assert.Equal(t, []bool{false, true, false}, chart.OutlierMask)
}

func TestBuildHistogram(t *testing.T) {
	tbl := chartTable(t, []string{"v"}, [][]string{
		{"0"}, {"1"}, {"2"}, {"3"}, {"4"}, {"5"}, {"6"}, {"7"}, {"10"},
	})

	chart, err := newTestBuilder(t).Build(tbl, Request{
		Kind: KindHistogram, XColumn: "v", Bins: 5,
	}, nil)
	require.NoError(t, err)

	require.Len(t, chart.Values, 5)
	var total float64
	for _, c := range chart.Values {
		total += c
	}
	assert.Equal(t, 9.0, total)
	assert.Equal(t, 1.0, chart.Values[4], "max value lands in the last bin")
}

func TestBuildHistogramConstantColumn(t *testing.T) {
	tbl := chartTable(t, []string{"v"}, [][]string{{"5"}, {"5"}, {"5"}})

	chart, err := newTestBuilder(t).Build(tbl, Request{
		Kind: KindHistogram, XColumn: "v",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, chart.Values)
}

func TestBuildErrors(t *testing.T) {
	tbl := chartTable(t, []string{"x", "label"}, [][]string{
		{"1", "aa"}, {"2", "bb"}, {"3", "cc"},
	})
	b := newTestBuilder(t)

	tests := []struct {
		name    string
		req     Request
		errType apperrors.ErrorType
	}{
		{
			name:    "unknown x column",
			req:     Request{Kind: KindBar, XColumn: "nope"},
			errType: apperrors.ErrTypeInvalidColumn,
		},
		{
			name:    "unknown y column",
			req:     Request{Kind: KindScatter, XColumn: "x", YColumn: "nope"},
			errType: apperrors.ErrTypeInvalidColumn,
		},
		{
			name:    "scatter on non numeric",
			req:     Request{Kind: KindScatter, XColumn: "x", YColumn: "label"},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "line without y",
			req:     Request{Kind: KindLine, XColumn: "x"},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "histogram on non numeric",
			req:     Request{Kind: KindHistogram, XColumn: "label"},
			errType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tbl, tt.req, nil)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.errType),
				"want %s, got %s", tt.errType, apperrors.TypeOf(err))
		})
	}
}
