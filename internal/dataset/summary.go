package dataset

import (
	"math"
	"sort"
	"strconv"
)

// DescribeStats holds the descriptive statistics of one numeric column,
// matching the conventional describe table (count, mean, std, quartiles).
type DescribeStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	P75    float64 `json:"p75"`
	Max    float64 `json:"max"`
}

// MissingInfo reports the missing cells of one column.
type MissingInfo struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// IQRBounds reports the interquartile-range outlier fences of a numeric
// column and how many values fall outside them. This is a per-column
// quality signal, distinct from the multivariate outlier detector.
type IQRBounds struct {
	Column     string  `json:"column"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Summary aggregates table shape, type breakdown, missing data, duplicate
// count, descriptive statistics and IQR quality info for one dataset.
type Summary struct {
	Rows               int                    `json:"rows"`
	Columns            int                    `json:"columns"`
	NumericColumns     []string               `json:"numeric_columns"`
	CategoricalColumns []string               `json:"categorical_columns"`
	DatetimeColumns    []string               `json:"datetime_columns"`
	BooleanColumns     []string               `json:"boolean_columns"`
	TextColumns        []string               `json:"text_columns"`
	MissingData        map[string]MissingInfo `json:"missing_data"`
	DuplicateRows      int                    `json:"duplicate_rows"`
	Describe           []DescribeStats        `json:"describe"`
	IQROutliers        []IQRBounds            `json:"iqr_outliers"`
}

// minIQRValues is the minimum number of non-missing numeric values a
// column needs before IQR fences are worth reporting.
const minIQRValues = 10

// Summarize computes the dataset summary from a table and its profiles.
// The table is not mutated.
func Summarize(t *Table, profiles []ColumnProfile) Summary {
	s := Summary{
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		MissingData: make(map[string]MissingInfo),
	}

	for _, p := range profiles {
		switch p.Type {
		case TypeNumeric:
			s.NumericColumns = append(s.NumericColumns, p.Name)
		case TypeCategorical:
			s.CategoricalColumns = append(s.CategoricalColumns, p.Name)
		case TypeDatetime:
			s.DatetimeColumns = append(s.DatetimeColumns, p.Name)
		case TypeBoolean:
			s.BooleanColumns = append(s.BooleanColumns, p.Name)
		default:
			s.TextColumns = append(s.TextColumns, p.Name)
		}
		if p.MissingCount > 0 && s.Rows > 0 {
			s.MissingData[p.Name] = MissingInfo{
				Count:      p.MissingCount,
				Percentage: round2(float64(p.MissingCount) / float64(s.Rows) * 100),
			}
		}
	}

	s.DuplicateRows = countDuplicateRows(t)

	for _, name := range s.NumericColumns {
		col, _ := t.Column(name)
		values := numericValues(col)
		if len(values) == 0 {
			continue
		}
		s.Describe = append(s.Describe, describe(name, values))
		if len(values) >= minIQRValues {
			if b, ok := iqrBounds(name, values, s.Rows); ok {
				s.IQROutliers = append(s.IQROutliers, b)
			}
		}
	}
	return s
}

func countDuplicateRows(t *Table) int {
	seen := make(map[string]struct{}, t.NumRows())
	dups := 0
	for r := 0; r < t.NumRows(); r++ {
		key := RowKey(t.Row(r))
		if _, ok := seen[key]; ok {
			dups++
		} else {
			seen[key] = struct{}{}
		}
	}
	return dups
}

// RowKey builds a collision-safe string key from a row's cells by
// length-prefixing each rendered cell. Missing cells get a distinct tag
// so empty strings and absent data never collide. Deduplication and
// duplicate counting share this encoding.
func RowKey(row []Value) string {
	var b []byte
	for _, v := range row {
		if v.IsMissing() {
			b = append(b, "\x00M|"...)
			continue
		}
		s := v.AsString()
		b = append(b, byte('0'+v.Kind()))
		b = appendLenPrefixed(b, s)
	}
	return string(b)
}

func appendLenPrefixed(b []byte, s string) []byte {
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, ':')
	b = append(b, s...)
	b = append(b, '|')
	return b
}

func numericValues(col *Column) []float64 {
	var values []float64
	for _, v := range col.Cells {
		if f, ok := v.AsFloat(); ok {
			values = append(values, f)
		}
	}
	return values
}

func describe(name string, values []float64) DescribeStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := meanOf(values)
	return DescribeStats{
		Column: name,
		Count:  len(values),
		Mean:   mean,
		Std:    stdOf(values, mean),
		Min:    sorted[0],
		P25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		P75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func iqrBounds(name string, values []float64, rows int) (IQRBounds, bool) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	if count == 0 {
		return IQRBounds{}, false
	}
	return IQRBounds{
		Column:     name,
		LowerBound: lower,
		UpperBound: upper,
		Count:      count,
		Percentage: round2(float64(count) / float64(rows) * 100),
	}, true
}

// quantile interpolates linearly between closest ranks on a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdOf computes the sample standard deviation (n-1 denominator).
func stdOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
