package cleaning

import (
	"sort"

	"tabcleaner/internal/dataset"
)

// resolveMissing applies the configured strategy to every column with
// missing cells and records what it did in the report. The strategy
// token has already been validated; this function never fails on data
// content, every strategy has a fallback.
func resolveMissing(t *dataset.Table, profiles []dataset.ColumnProfile, cfg Config, rep *Report) *dataset.Table {
	switch cfg.MissingStrategy {
	case StrategyDropRow:
		return dropMissingRows(t, rep)
	case StrategyFillMean, StrategyFillMedian:
		fillCentral(t, profiles, cfg.MissingStrategy, rep)
	case StrategyFillMode:
		for _, p := range profiles {
			fillMode(t, p.Name, rep)
		}
	case StrategyFillConstant:
		fillConstant(t, profiles, cfg.FillConstant, rep)
	case StrategyFillForward:
		fillForward(t, rep)
	}
	return t
}

// dropMissingRows removes every row with at least one missing cell in
// any column.
func dropMissingRows(t *dataset.Table, rep *Report) *dataset.Table {
	rowsBefore := t.NumRows()
	out := t.FilterRows(func(r int) bool {
		for c := 0; c < t.NumCols(); c++ {
			if t.ColumnAt(c).Cells[r].IsMissing() {
				return false
			}
		}
		return true
	})
	rep.RowsDropped = rowsBefore - out.NumRows()
	return out
}

// fillCentral fills numeric columns with their mean or median. Columns
// whose inferred type is not numeric fall back to mode silently; the
// fallback is a recorded notice, never an error.
func fillCentral(t *dataset.Table, profiles []dataset.ColumnProfile, strategy MissingStrategy, rep *Report) {
	for _, p := range profiles {
		if p.MissingCount == 0 {
			continue
		}
		if p.Type != dataset.TypeNumeric {
			if fillMode(t, p.Name, rep) > 0 {
				rep.AddNotice(NoticeFallbackToMode, p.Name,
					string(strategy)+" is numeric-only, filled with mode instead")
			}
			continue
		}

		col, _ := t.Column(p.Name)
		values := make([]float64, 0, len(col.Cells))
		for _, v := range col.Cells {
			if f, ok := v.AsFloat(); ok {
				values = append(values, f)
			}
		}
		if len(values) == 0 {
			// Nothing to average; leave the column untouched.
			continue
		}

		var fill float64
		if strategy == StrategyFillMean {
			sum := 0.0
			for _, v := range values {
				sum += v
			}
			fill = sum / float64(len(values))
		} else {
			sorted := make([]float64, len(values))
			copy(sorted, values)
			sort.Float64s(sorted)
			mid := len(sorted) / 2
			if len(sorted)%2 == 0 {
				fill = (sorted[mid-1] + sorted[mid]) / 2
			} else {
				fill = sorted[mid]
			}
		}

		filled := 0
		for i, v := range col.Cells {
			if v.IsMissing() {
				col.Cells[i] = dataset.Number(fill)
				filled++
			}
		}
		if filled > 0 {
			rep.MissingFilled[p.Name] += filled
		}
	}
}

// fillMode fills missing cells with the column's most frequent
// non-missing value. Ties break toward the value encountered first in
// column order. Returns the number of cells filled; a fully missing
// column has no mode and is left untouched.
func fillMode(t *dataset.Table, name string, rep *Report) int {
	col, ok := t.Column(name)
	if !ok {
		return 0
	}
	mode, ok := modeOf(col)
	if !ok {
		return 0
	}

	filled := 0
	for i, v := range col.Cells {
		if v.IsMissing() {
			col.Cells[i] = mode
			filled++
		}
	}
	if filled > 0 {
		rep.MissingFilled[name] += filled
	}
	return filled
}

func modeOf(col *dataset.Column) (dataset.Value, bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	byKey := make(map[string]dataset.Value)

	for i, v := range col.Cells {
		if v.IsMissing() {
			continue
		}
		key := dataset.RowKey([]dataset.Value{v})
		counts[key]++
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = i
			byKey[key] = v
		}
	}
	if len(counts) == 0 {
		return dataset.Value{}, false
	}

	bestKey := ""
	for key, n := range counts {
		if bestKey == "" ||
			n > counts[bestKey] ||
			(n == counts[bestKey] && firstSeen[key] < firstSeen[bestKey]) {
			bestKey = key
		}
	}
	return byKey[bestKey], true
}

// fillConstant substitutes the literal into every missing cell, coerced
// to the column's inferred type where possible. When the literal has no
// representation in that type the cell is stored as text and the column
// demotes to text; the pipeline re-profiles afterwards.
func fillConstant(t *dataset.Table, profiles []dataset.ColumnProfile, constant string, rep *Report) {
	raw := dataset.String(constant)
	for _, p := range profiles {
		if p.MissingCount == 0 {
			continue
		}
		col, _ := t.Column(p.Name)

		fill, ok := raw.Coerce(p.Type)
		if !ok {
			fill = raw
			col.Type = dataset.TypeText
		}

		filled := 0
		for i, v := range col.Cells {
			if v.IsMissing() {
				col.Cells[i] = fill
				filled++
			}
		}
		if filled > 0 {
			rep.MissingFilled[p.Name] += filled
		}
	}
}

// fillForward propagates the last valid value downward in each column.
// Leading missing cells have no prior value and stay unresolved; they
// are counted per column and reported as a notice.
func fillForward(t *dataset.Table, rep *Report) {
	for c := 0; c < t.NumCols(); c++ {
		col := t.ColumnAt(c)
		var last dataset.Value
		haveLast := false
		filled, unresolved := 0, 0

		for i, v := range col.Cells {
			if !v.IsMissing() {
				last = v
				haveLast = true
				continue
			}
			if haveLast {
				col.Cells[i] = last
				filled++
			} else {
				unresolved++
			}
		}
		if filled > 0 {
			rep.MissingFilled[col.Name] += filled
		}
		if unresolved > 0 {
			rep.UnresolvableMissing[col.Name] = unresolved
			rep.AddNotice(NoticeUnresolvableMissing, col.Name,
				"no prior value to fill leading missing cells")
		}
	}
}
