package cleaning

import (
	"fmt"
	"log/slog"
	"time"

	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/outlier"
)

// Pipeline runs the cleaning stages in fixed order: profile, resolve
// missing values, deduplicate, detect outliers. Each run is synchronous
// and request-scoped; the pipeline holds no state between runs.
type Pipeline struct {
	logger   *slog.Logger
	detector *outlier.Detector
}

// NewPipeline creates a pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:   logger.With(slog.String("component", "cleaning_pipeline")),
		detector: outlier.NewDetector(logger),
	}
}

// Result is the output of one pipeline run: the cleaned table, its
// final profiles and the cumulative report.
type Result struct {
	Table    *dataset.Table
	Profiles []dataset.ColumnProfile
	Report   *Report
}

// Run cleans the table under the given configuration. The input table is
// not modified; ownership of the returned table passes to the caller.
// Configuration errors surface before any work happens; any unexpected
// internal failure is caught at this boundary and reported as a single
// opaque processing error rather than leaking partial state.
func (p *Pipeline) Run(t *dataset.Table, cfg Config) (res *Result, err error) {
	if err := cfg.Validate(t); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panicked", slog.Any("panic", r))
			res = nil
			err = apperrors.Wrap(apperrors.ErrTypeProcessingFailed,
				"cleaning pipeline failed", fmt.Errorf("%v", r))
		}
	}()

	start := time.Now()
	rep := NewReport()
	rep.RowsIn = t.NumRows()
	rep.OutlierMethod = string(cfg.OutlierMethod)

	work := t.Clone()
	profiles := dataset.Profile(work)
	work.ApplyTypes(profiles)

	work = resolveMissing(work, profiles, cfg, rep)
	// Missing and unique counts shifted whether rows were dropped or
	// cells were filled; fill_constant may also have demoted columns
	// to text.
	profiles = dataset.Profile(work)

	work = dedupRows(work, cfg.DedupKeys, rep)
	if rep.DuplicatesRemoved > 0 {
		profiles = dataset.Profile(work)
	}

	if cfg.OutlierMethod == OutlierIsolationForest {
		det := p.detector.Detect(work, profiles, cfg.contamination())
		for _, name := range det.ConstantColumns {
			rep.AddNotice(NoticeConstantColumn, name, "zero variance, excluded from feature matrix")
		}
		if det.Skipped != "" {
			rep.AddNotice(NoticeOutlierSkipped, "", det.Skipped)
		} else {
			rep.OutlierIndices = det.Indices
			rep.OutliersFlagged = len(det.Indices)
		}
	}

	rep.RowsOut = work.NumRows()

	p.logger.Info("pipeline run complete",
		slog.Int("rows_in", rep.RowsIn),
		slog.Int("rows_out", rep.RowsOut),
		slog.Int("rows_dropped", rep.RowsDropped),
		slog.Int("duplicates_removed", rep.DuplicatesRemoved),
		slog.Int("outliers_flagged", rep.OutliersFlagged),
		slog.Duration("duration", time.Since(start)),
	)

	return &Result{Table: work, Profiles: profiles, Report: rep}, nil
}
