package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupFullRow(t *testing.T) {
	tbl, _ := typedTable(t, []string{"a", "b"}, [][]string{
		{"1", "x"},
		{"2", "y"},
		{"1", "x"},
		{"1", "z"},
		{"2", "y"},
	})
	rep := NewReport()

	out := dedupRows(tbl, nil, rep)

	assert.Equal(t, 3, out.NumRows())
	assert.Equal(t, 2, rep.DuplicatesRemoved)
	assert.Equal(t, []int{2, 4}, rep.DuplicateIndices)
	assert.Equal(t, "1", out.Row(0)[0].AsString())
	assert.Equal(t, "z", out.Row(2)[1].AsString(), "first occurrences kept in order")
}

func TestDedupOnKeyColumns(t *testing.T) {
	tbl, _ := typedTable(t, []string{"id", "note"}, [][]string{
		{"1", "first"},
		{"2", "second"},
		{"1", "third"},
	})
	rep := NewReport()

	out := dedupRows(tbl, []string{"id"}, rep)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "first", out.Row(0)[1].AsString(), "first occurrence wins")
	assert.Equal(t, 1, rep.DuplicatesRemoved)
}

func TestDedupMissingCellsCompareEqual(t *testing.T) {
	tbl, _ := typedTable(t, []string{"a", "b"}, [][]string{
		{"1", ""},
		{"1", ""},
	})
	rep := NewReport()

	out := dedupRows(tbl, nil, rep)
	assert.Equal(t, 1, out.NumRows())
}

func TestDedupIdempotent(t *testing.T) {
	tbl, _ := typedTable(t, []string{"a"}, [][]string{
		{"1"}, {"1"}, {"2"},
	})

	first := dedupRows(tbl, nil, NewReport())
	rep := NewReport()
	second := dedupRows(first, nil, rep)

	assert.Equal(t, first.NumRows(), second.NumRows())
	assert.Zero(t, rep.DuplicatesRemoved)
	assert.Same(t, first, second, "no rewrite when nothing was removed")
}
