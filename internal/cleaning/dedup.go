package cleaning

import (
	"tabcleaner/internal/dataset"
)

// dedupRows removes rows that are exact duplicates on the key column
// set, keeping the first occurrence in original row order. An empty key
// set compares the full row tuple. Key validity was checked up front by
// Config.Validate. Idempotent: a second pass removes nothing.
func dedupRows(t *dataset.Table, keys []string, rep *Report) *dataset.Table {
	keyCols := make([]*dataset.Column, 0, len(keys))
	if len(keys) == 0 {
		for c := 0; c < t.NumCols(); c++ {
			keyCols = append(keyCols, t.ColumnAt(c))
		}
	} else {
		for _, name := range keys {
			col, _ := t.Column(name)
			keyCols = append(keyCols, col)
		}
	}

	seen := make(map[string]struct{}, t.NumRows())
	keep := make([]bool, t.NumRows())
	cells := make([]dataset.Value, len(keyCols))

	for r := 0; r < t.NumRows(); r++ {
		for i, col := range keyCols {
			cells[i] = col.Cells[r]
		}
		key := dataset.RowKey(cells)
		if _, dup := seen[key]; dup {
			rep.DuplicateIndices = append(rep.DuplicateIndices, r)
			continue
		}
		seen[key] = struct{}{}
		keep[r] = true
	}

	rep.DuplicatesRemoved = len(rep.DuplicateIndices)
	if rep.DuplicatesRemoved == 0 {
		return t
	}
	return t.FilterRows(func(r int) bool { return keep[r] })
}
