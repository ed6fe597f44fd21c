package dataset

import (
	"time"
)

// datetimeThreshold is the fraction of non-missing cells that must parse
// as a datetime for the column to classify as datetime.
const datetimeThreshold = 0.9

// Categorical classification bounds: a column is categorical when its
// distinct-value count is small both in absolute terms and relative to
// the row count.
const (
	categoricalMaxUnique = 50
	categoricalMaxRatio  = 0.5
)

// maxSampleValues caps the distinct sample values carried in a profile.
const maxSampleValues = 5

// ColumnProfile describes one column after type inference.
type ColumnProfile struct {
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	MissingCount int        `json:"missing_count"`
	UniqueCount  int        `json:"unique_count"`
	Min          *float64   `json:"min,omitempty"`
	Max          *float64   `json:"max,omitempty"`
	MinTime      *time.Time `json:"min_time,omitempty"`
	MaxTime      *time.Time `json:"max_time,omitempty"`
	SampleValues []string   `json:"sample_values"`
}

// Profile classifies every column of the table without mutating it.
// Classification precedence: boolean, then numeric, then datetime, then
// categorical, then text; the first rule that matches wins. Profiles must
// be recomputed whenever the table's row or column membership changes,
// since missing and unique counts shift.
func Profile(t *Table) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		profiles = append(profiles, profileColumn(t.ColumnAt(i), t.NumRows()))
	}
	return profiles
}

func profileColumn(col *Column, rowCount int) ColumnProfile {
	p := ColumnProfile{Name: col.Name}

	seen := make(map[string]struct{})
	var samples []string
	nonMissing := 0
	allBool := true
	allNumeric := true
	datetimeHits := 0

	for _, v := range col.Cells {
		if v.IsMissing() {
			p.MissingCount++
			continue
		}
		nonMissing++

		key := v.AsString()
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			if len(samples) < maxSampleValues {
				samples = append(samples, key)
			}
		}

		if allBool {
			if _, ok := v.AsBool(); !ok {
				allBool = false
			}
		}
		if allNumeric {
			if _, ok := v.AsFloat(); !ok {
				allNumeric = false
			}
		}
		if _, ok := v.AsTime(); ok {
			datetimeHits++
		}
	}

	p.UniqueCount = len(seen)
	p.SampleValues = samples

	switch {
	case nonMissing == 0:
		// No evidence either way; an all-missing column stays text.
		p.Type = TypeText
	case allBool:
		p.Type = TypeBoolean
	case allNumeric:
		p.Type = TypeNumeric
	case float64(datetimeHits) >= datetimeThreshold*float64(nonMissing):
		p.Type = TypeDatetime
	case rowCount > 0 &&
		float64(p.UniqueCount)/float64(rowCount) <= categoricalMaxRatio &&
		p.UniqueCount <= categoricalMaxUnique:
		p.Type = TypeCategorical
	default:
		p.Type = TypeText
	}

	switch p.Type {
	case TypeNumeric:
		p.Min, p.Max = numericBounds(col)
	case TypeDatetime:
		p.MinTime, p.MaxTime = datetimeBounds(col)
	}
	return p
}

func numericBounds(col *Column) (*float64, *float64) {
	var min, max *float64
	for _, v := range col.Cells {
		f, ok := v.AsFloat()
		if !ok {
			continue
		}
		if min == nil || f < *min {
			f := f
			min = &f
		}
		if max == nil || f > *max {
			f := f
			max = &f
		}
	}
	return min, max
}

func datetimeBounds(col *Column) (*time.Time, *time.Time) {
	var min, max *time.Time
	for _, v := range col.Cells {
		ts, ok := v.AsTime()
		if !ok {
			continue
		}
		if min == nil || ts.Before(*min) {
			ts := ts
			min = &ts
		}
		if max == nil || ts.After(*max) {
			ts := ts
			max = &ts
		}
	}
	return min, max
}
