package dataset

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableOf builds a table from raw string rows, mapping missing tokens to
// missing cells the way the loader does.
func tableOf(t *testing.T, names []string, rows [][]string) *Table {
	t.Helper()
	tbl, err := NewTable(names)
	require.NoError(t, err)
	for _, raw := range rows {
		row := make([]Value, len(raw))
		for i, cell := range raw {
			if IsMissingToken(cell) {
				row[i] = Missing()
			} else {
				row[i] = String(cell)
			}
		}
		require.NoError(t, tbl.AppendRow(row))
	}
	return tbl
}

func TestProfileTypeInference(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  ColumnType
	}{
		{
			name:  "boolean tokens",
			cells: []string{"yes", "no", "yes", "no"},
			want:  TypeBoolean,
		},
		{
			name:  "boolean wins over numeric for zero one",
			cells: []string{"1", "0", "1", "0"},
			want:  TypeBoolean,
		},
		{
			name:  "numeric",
			cells: []string{"1.5", "2", "-3", "4e2"},
			want:  TypeNumeric,
		},
		{
			name:  "numeric with missing",
			cells: []string{"1", "", "3", "NA"},
			want:  TypeNumeric,
		},
		{
			name:  "datetime above threshold",
			cells: []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08", "2024-01-09", "2024-01-10"},
			want:  TypeDatetime,
		},
		{
			name:  "datetime below threshold falls through",
			cells: []string{"2024-01-01", "2024-01-01", "nope", "nope", "2024-01-03", "nope"},
			want:  TypeCategorical,
		},
		{
			name:  "categorical repeats",
			cells: []string{"red", "blue", "red", "blue", "red", "blue"},
			want:  TypeCategorical,
		},
		{
			name:  "all distinct strings are text",
			cells: []string{"alpha", "beta", "gamma", "delta"},
			want:  TypeText,
		},
		{
			name:  "all missing defaults to text",
			cells: []string{"", "NA", "null", ""},
			want:  TypeText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([][]string, len(tt.cells))
			for i, c := range tt.cells {
				rows[i] = []string{c}
			}
			tbl := tableOf(t, []string{"col"}, rows)

			profiles := Profile(tbl)
			require.Len(t, profiles, 1)
			assert.Equal(t, tt.want, profiles[0].Type)
		})
	}
}

func TestProfileHighCardinalityIsText(t *testing.T) {
	// More than 50 unique values, even at a low unique ratio.
	rows := make([][]string, 0, 200)
	for i := 0; i < 200; i++ {
		rows = append(rows, []string{"id-" + strconv.Itoa(i%60)})
	}
	tbl := tableOf(t, []string{"code"}, rows)

	profiles := Profile(tbl)
	assert.Equal(t, TypeText, profiles[0].Type)
	assert.Equal(t, 60, profiles[0].UniqueCount)
}

func TestProfileCounts(t *testing.T) {
	tbl := tableOf(t, []string{"score"}, [][]string{
		{"1"}, {""}, {"2"}, {"2"}, {"NA"}, {"3"},
	})

	profiles := Profile(tbl)
	require.Len(t, profiles, 1)
	p := profiles[0]

	assert.Equal(t, 2, p.MissingCount)
	assert.Equal(t, 3, p.UniqueCount)
	require.NotNil(t, p.Min)
	require.NotNil(t, p.Max)
	assert.Equal(t, 1.0, *p.Min)
	assert.Equal(t, 3.0, *p.Max)
	assert.Equal(t, []string{"1", "2", "3"}, p.SampleValues)
}

func TestProfileDoesNotMutate(t *testing.T) {
	tbl := tableOf(t, []string{"a"}, [][]string{{"1"}, {"2"}})
	before := tbl.Row(0)[0]

	Profile(tbl)

	assert.True(t, before.Equal(tbl.Row(0)[0]))
	assert.Equal(t, KindString, tbl.Row(0)[0].Kind())
}

func TestProfileStableUnderReprofile(t *testing.T) {
	tbl := tableOf(t, []string{"n", "label"}, [][]string{
		{"1", "x"}, {"2", "y"}, {"3", "x"}, {"", "y"},
	})

	first := Profile(tbl)
	tbl.ApplyTypes(first)
	second := Profile(tbl)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type, "column %s", first[i].Name)
		assert.Equal(t, first[i].MissingCount, second[i].MissingCount)
		assert.Equal(t, first[i].UniqueCount, second[i].UniqueCount)
	}
}
