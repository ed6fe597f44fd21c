// Package outlier flags anomalous rows in a cleaned table using an
// isolation forest over the standardized numeric columns. Rows are only
// flagged, never removed; the caller decides what to do with them.
package outlier

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"tabcleaner/internal/dataset"
)

// SkipInsufficientNumeric is the reason reported when fewer than two
// usable numeric columns exist and detection is a no-op.
const SkipInsufficientNumeric = "insufficient_numeric_columns"

// minFeatureColumns is the smallest feature count worth fitting a
// multivariate detector on.
const minFeatureColumns = 2

// Result is the detection outcome. When Skipped is non-empty the stage
// did not run and Indices is nil.
type Result struct {
	// Indices are flagged row indices in ascending order.
	Indices []int
	// Scores holds the anomaly score per table row, aligned with row
	// order, when detection ran.
	Scores []float64
	// ConstantColumns lists numeric columns excluded from the feature
	// matrix for having zero variance.
	ConstantColumns []string
	// Skipped carries the skip reason when detection was a no-op.
	Skipped string
}

// Detector runs isolation-forest detection with fixed, deterministic
// parameters.
type Detector struct {
	logger     *slog.Logger
	trees      int
	sampleSize int
	seed       int64
}

// NewDetector creates a detector with the default ensemble parameters.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		logger:     logger.With(slog.String("component", "outlier_detector")),
		trees:      DefaultTrees,
		sampleSize: DefaultSampleSize,
		seed:       DefaultSeed,
	}
}

// Detect fits the ensemble over the table's numeric columns and flags
// the top contamination fraction of rows by anomaly score. Columns with
// zero variance are excluded from the feature matrix; if fewer than two
// columns remain the stage skips. Rows with missing numeric cells are
// excluded from the fit but still scored, with missing features imputed
// at the column mean.
func (d *Detector) Detect(t *dataset.Table, profiles []dataset.ColumnProfile, contamination float64) Result {
	var numeric []string
	for _, p := range profiles {
		if p.Type == dataset.TypeNumeric {
			numeric = append(numeric, p.Name)
		}
	}
	if len(numeric) < minFeatureColumns {
		d.logger.Info("outlier detection skipped",
			slog.String("reason", SkipInsufficientNumeric),
			slog.Int("numeric_columns", len(numeric)))
		return Result{Skipped: SkipInsufficientNumeric}
	}

	features, constant := standardizedFeatures(t, numeric)
	if len(features) < minFeatureColumns {
		d.logger.Info("outlier detection skipped",
			slog.String("reason", SkipInsufficientNumeric),
			slog.Int("usable_columns", len(features)),
			slog.Int("constant_columns", len(constant)))
		return Result{Skipped: SkipInsufficientNumeric, ConstantColumns: constant}
	}

	n := t.NumRows()
	matrix := make([][]float64, n)
	var fitRows [][]float64
	for r := 0; r < n; r++ {
		row := make([]float64, len(features))
		complete := true
		for c, f := range features {
			v, ok := f.at(r)
			if !ok {
				row[c] = 0 // standardized column mean
				complete = false
				continue
			}
			row[c] = v
		}
		matrix[r] = row
		if complete {
			fitRows = append(fitRows, row)
		}
	}
	if len(fitRows) == 0 {
		fitRows = matrix
	}

	rng := rand.New(rand.NewSource(d.seed))
	forest := fitForest(fitRows, d.trees, d.sampleSize, rng)

	scores := make([]float64, n)
	for r := 0; r < n; r++ {
		scores[r] = forest.score(matrix[r])
	}

	flagged := topFraction(scores, contamination)
	d.logger.Info("outlier detection complete",
		slog.Int("rows", n),
		slog.Int("feature_columns", len(features)),
		slog.Int("flagged", len(flagged)),
		slog.Float64("contamination", contamination))

	return Result{
		Indices:         flagged,
		Scores:          scores,
		ConstantColumns: constant,
	}
}

// feature is one standardized numeric column.
type feature struct {
	values  []float64
	present []bool
}

func (f feature) at(r int) (float64, bool) {
	return f.values[r], f.present[r]
}

// standardizedFeatures builds zero-mean unit-variance columns from the
// named numeric columns, excluding any with zero variance.
func standardizedFeatures(t *dataset.Table, names []string) ([]feature, []string) {
	var features []feature
	var constant []string

	for _, name := range names {
		col, _ := t.Column(name)
		n := len(col.Cells)
		values := make([]float64, n)
		present := make([]bool, n)

		sum, count := 0.0, 0
		for r, v := range col.Cells {
			if f, ok := v.AsFloat(); ok {
				values[r] = f
				present[r] = true
				sum += f
				count++
			}
		}
		if count == 0 {
			constant = append(constant, name)
			continue
		}
		mean := sum / float64(count)

		variance := 0.0
		for r := range values {
			if present[r] {
				d := values[r] - mean
				variance += d * d
			}
		}
		variance /= float64(count)
		if variance == 0 {
			constant = append(constant, name)
			continue
		}
		std := math.Sqrt(variance)

		for r := range values {
			if present[r] {
				values[r] = (values[r] - mean) / std
			}
		}
		features = append(features, feature{values: values, present: present})
	}
	return features, constant
}

// topFraction returns the indices of the contamination*n highest scores
// in ascending index order. Score ties break toward the lower row index
// so results stay deterministic.
func topFraction(scores []float64, contamination float64) []int {
	k := int(contamination * float64(len(scores)))
	if k <= 0 {
		return nil
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if scores[order[a]] != scores[order[b]] {
			return scores[order[a]] > scores[order[b]]
		}
		return order[a] < order[b]
	})

	flagged := append([]int(nil), order[:k]...)
	sort.Ints(flagged)
	return flagged
}
