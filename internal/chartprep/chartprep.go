// Package chartprep turns a cleaned table into plot-ready series for the
// browser-side chart widget. It owns the aggregation, sorting and
// binning; rendering itself happens client-side in the plotting library.
package chartprep

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
)

// Kind identifies the chart family being prepared.
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindScatter   Kind = "scatter"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
)

// Aggregate selects how bar charts combine a numeric column per category.
type Aggregate string

const (
	AggCount Aggregate = "count"
	AggSum   Aggregate = "sum"
	AggMean  Aggregate = "mean"
)

// Defaults applied when the request leaves them unset.
const (
	defaultTopN = 20
	defaultBins = 20
)

// Request describes the chart the UI asked for.
type Request struct {
	Kind    Kind   `json:"kind" validate:"required,oneof=bar line scatter pie histogram"`
	XColumn string `json:"x_column" validate:"required"`
	YColumn string `json:"y_column,omitempty"`
	// Aggregate applies to bar charts with a numeric Y column.
	Aggregate Aggregate `json:"aggregate,omitempty" validate:"omitempty,oneof=count sum mean"`
	// TopN caps bar and pie categories.
	TopN int `json:"top_n,omitempty" validate:"omitempty,gt=0"`
	// Bins sets the histogram bin count.
	Bins int `json:"bins,omitempty" validate:"omitempty,gt=1"`
}

// Chart is the prepared payload handed to the plotting collaborator.
// Labels/Values carry categorical series (bar, pie, histogram); X/Y carry
// point series (line, scatter). OutlierMask aligns with X/Y when the
// caller supplied flagged rows.
type Chart struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	XTitle      string    `json:"x_title"`
	YTitle      string    `json:"y_title"`
	Labels      []string  `json:"labels,omitempty"`
	Values      []float64 `json:"values,omitempty"`
	X           []float64 `json:"x,omitempty"`
	XLabels     []string  `json:"x_labels,omitempty"`
	Y           []float64 `json:"y,omitempty"`
	OutlierMask []bool    `json:"outlier_mask,omitempty"`
}

// Builder prepares charts from cleaned tables.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a chart builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "chartprep"))}
}

// Build prepares the requested chart. Outlier indices (from the cleaning
// report) are mapped onto scatter points so the widget can highlight
// them. Column references are validated here; unknown columns fail with
// an invalid-column error and type mismatches with a validation error.
func (b *Builder) Build(t *dataset.Table, req Request, outlierIndices []int) (*Chart, error) {
	xcol, ok := t.Column(req.XColumn)
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrTypeInvalidColumn,
			"chart column %q does not name a column", req.XColumn)
	}

	var ycol *dataset.Column
	if req.YColumn != "" {
		ycol, ok = t.Column(req.YColumn)
		if !ok {
			return nil, apperrors.Newf(apperrors.ErrTypeInvalidColumn,
				"chart column %q does not name a column", req.YColumn)
		}
	}

	switch req.Kind {
	case KindBar:
		return b.buildBar(xcol, ycol, req)
	case KindPie:
		return b.buildPie(xcol, req)
	case KindLine:
		return b.buildLine(xcol, ycol, req)
	case KindScatter:
		return b.buildScatter(xcol, ycol, req, outlierIndices)
	case KindHistogram:
		return b.buildHistogram(xcol, req)
	default:
		return nil, apperrors.Newf(apperrors.ErrTypeValidation, "unknown chart kind %q", string(req.Kind))
	}
}

func (b *Builder) buildBar(xcol, ycol *dataset.Column, req Request) (*Chart, error) {
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	if ycol == nil || req.Aggregate == AggCount {
		labels, values := valueCounts(xcol, topN, false)
		return &Chart{
			Kind: KindBar, Title: "Count by " + xcol.Name,
			XTitle: xcol.Name, YTitle: "count",
			Labels: labels, Values: values,
		}, nil
	}

	if ycol.Type != dataset.TypeNumeric {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"bar aggregation needs a numeric column, %q is %s", ycol.Name, ycol.Type)
	}
	agg := req.Aggregate
	if agg == "" {
		agg = AggSum
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for r, v := range xcol.Cells {
		if v.IsMissing() {
			continue
		}
		f, ok := ycol.Cells[r].AsFloat()
		if !ok {
			continue
		}
		key := v.AsString()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		sums[key] += f
		counts[key]++
	}

	type pair struct {
		label string
		value float64
	}
	pairs := make([]pair, 0, len(order))
	for _, key := range order {
		value := sums[key]
		if agg == AggMean {
			value /= float64(counts[key])
		}
		pairs = append(pairs, pair{key, value})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })
	if len(pairs) > topN {
		pairs = pairs[:topN]
	}

	chart := &Chart{
		Kind: KindBar, Title: fmt.Sprintf("%s of %s by %s", agg, ycol.Name, xcol.Name),
		XTitle: xcol.Name, YTitle: ycol.Name,
	}
	for _, p := range pairs {
		chart.Labels = append(chart.Labels, p.label)
		chart.Values = append(chart.Values, p.value)
	}
	return chart, nil
}

func (b *Builder) buildPie(xcol *dataset.Column, req Request) (*Chart, error) {
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	labels, values := valueCounts(xcol, topN, true)
	return &Chart{
		Kind: KindPie, Title: "Distribution of " + xcol.Name,
		XTitle: xcol.Name, YTitle: "count",
		Labels: labels, Values: values,
	}, nil
}

func (b *Builder) buildLine(xcol, ycol *dataset.Column, req Request) (*Chart, error) {
	if ycol == nil {
		return nil, apperrors.New(apperrors.ErrTypeValidation, "line chart needs a y column")
	}
	if ycol.Type != dataset.TypeNumeric {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"line chart y column must be numeric, %q is %s", ycol.Name, ycol.Type)
	}
	if xcol.Type != dataset.TypeNumeric && xcol.Type != dataset.TypeDatetime {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"line chart x column must be numeric or datetime, %q is %s", xcol.Name, xcol.Type)
	}

	type point struct {
		sortKey float64
		label   string
		y       float64
	}
	var points []point
	for r, xv := range xcol.Cells {
		y, ok := ycol.Cells[r].AsFloat()
		if !ok {
			continue
		}
		if xcol.Type == dataset.TypeDatetime {
			ts, ok := xv.AsTime()
			if !ok {
				continue
			}
			points = append(points, point{float64(ts.Unix()), ts.Format("2006-01-02"), y})
		} else {
			x, ok := xv.AsFloat()
			if !ok {
				continue
			}
			points = append(points, point{x, strconv.FormatFloat(x, 'f', -1, 64), y})
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].sortKey < points[j].sortKey })

	chart := &Chart{
		Kind: KindLine, Title: ycol.Name + " over " + xcol.Name,
		XTitle: xcol.Name, YTitle: ycol.Name,
	}
	for _, p := range points {
		chart.X = append(chart.X, p.sortKey)
		chart.XLabels = append(chart.XLabels, p.label)
		chart.Y = append(chart.Y, p.y)
	}
	return chart, nil
}

func (b *Builder) buildScatter(xcol, ycol *dataset.Column, req Request, outlierIndices []int) (*Chart, error) {
	if ycol == nil {
		return nil, apperrors.New(apperrors.ErrTypeValidation, "scatter chart needs a y column")
	}
	if xcol.Type != dataset.TypeNumeric || ycol.Type != dataset.TypeNumeric {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"scatter chart needs numeric columns, got %s and %s", xcol.Type, ycol.Type)
	}

	flagged := make(map[int]struct{}, len(outlierIndices))
	for _, i := range outlierIndices {
		flagged[i] = struct{}{}
	}

	chart := &Chart{
		Kind: KindScatter, Title: ycol.Name + " vs " + xcol.Name,
		XTitle: xcol.Name, YTitle: ycol.Name,
	}
	for r := range xcol.Cells {
		x, okx := xcol.Cells[r].AsFloat()
		y, oky := ycol.Cells[r].AsFloat()
		if !okx || !oky {
			continue
		}
		chart.X = append(chart.X, x)
		chart.Y = append(chart.Y, y)
		_, isOutlier := flagged[r]
		chart.OutlierMask = append(chart.OutlierMask, isOutlier)
	}
	return chart, nil
}

func (b *Builder) buildHistogram(xcol *dataset.Column, req Request) (*Chart, error) {
	if xcol.Type != dataset.TypeNumeric {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"histogram needs a numeric column, %q is %s", xcol.Name, xcol.Type)
	}
	bins := req.Bins
	if bins <= 1 {
		bins = defaultBins
	}

	var values []float64
	for _, v := range xcol.Cells {
		if f, ok := v.AsFloat(); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return nil, apperrors.Newf(apperrors.ErrTypeValidation,
			"column %q has no numeric values to bin", xcol.Name)
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	chart := &Chart{
		Kind: KindHistogram, Title: "Distribution of " + xcol.Name,
		XTitle: xcol.Name, YTitle: "count",
	}
	if min == max {
		chart.Labels = []string{formatBound(min)}
		chart.Values = []float64{float64(len(values))}
		return chart, nil
	}

	width := (max - min) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1 // max value lands in the last bin
		}
		counts[idx]++
	}
	for i := 0; i < bins; i++ {
		lo := min + float64(i)*width
		chart.Labels = append(chart.Labels, formatBound(lo)+" - "+formatBound(lo+width))
	}
	chart.Values = counts
	return chart, nil
}

// valueCounts tallies non-missing values, sorted by count descending
// with first-encountered order breaking ties. When collapse is set,
// categories past topN fold into an "Other" slice.
func valueCounts(col *dataset.Column, topN int, collapse bool) ([]string, []float64) {
	counts := make(map[string]int)
	var order []string
	for _, v := range col.Cells {
		if v.IsMissing() {
			continue
		}
		key := v.AsString()
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })

	var labels []string
	var values []float64
	other := 0
	for i, key := range order {
		if i < topN {
			labels = append(labels, key)
			values = append(values, float64(counts[key]))
			continue
		}
		other += counts[key]
	}
	if collapse && other > 0 {
		labels = append(labels, "Other")
		values = append(values, float64(other))
	}
	return labels, values
}

func formatBound(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
