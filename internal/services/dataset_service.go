// Package services wires the loader, cleaning pipeline, chart builder
// and exporters together behind the dataset store the HTTP layer talks
// to. The store stands in for a browser session: uploads live in it
// between requests, while each pipeline run itself stays request-scoped
// and stateless.
package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tabcleaner/internal/chartprep"
	"tabcleaner/internal/cleaning"
	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
	"tabcleaner/internal/exporter"
	"tabcleaner/internal/loader"
	"tabcleaner/internal/metrics"
)

// Dataset is one stored upload and its current (possibly cleaned) state.
type Dataset struct {
	ID         string
	Filename   string
	CreatedAt  time.Time
	lastUsed   time.Time
	Table      *dataset.Table
	Profiles   []dataset.ColumnProfile
	SheetNames []string
	Truncated  bool
	SourceRows int
	Encoding   string
	// Report holds the most recent cleaning report, nil before the
	// first clean.
	Report *cleaning.Report
}

// DatasetService owns the dataset store and runs all dataset operations.
type DatasetService struct {
	logger   *slog.Logger
	loader   *loader.Loader
	pipeline *cleaning.Pipeline
	charts   *chartprep.Builder
	exporter *exporter.Exporter
	metrics  *metrics.Metrics
	ttl      time.Duration

	mu    sync.RWMutex
	store map[string]*Dataset
}

// NewDatasetService creates the service. A nil metrics value disables
// instrumentation, which tests use.
func NewDatasetService(logger *slog.Logger, m *metrics.Metrics, ttl time.Duration) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		logger:   logger.With(slog.String("component", "dataset_service")),
		loader:   loader.New(logger),
		pipeline: cleaning.NewPipeline(logger),
		charts:   chartprep.NewBuilder(logger),
		exporter: exporter.New(logger),
		metrics:  m,
		ttl:      ttl,
		store:    make(map[string]*Dataset),
	}
}

// UploadResult is the response payload for a successful upload.
type UploadResult struct {
	ID         string                  `json:"id"`
	Filename   string                  `json:"filename"`
	Rows       int                     `json:"rows"`
	Columns    int                     `json:"columns"`
	Truncated  bool                    `json:"truncated"`
	SourceRows int                     `json:"source_rows,omitempty"`
	SheetNames []string                `json:"sheet_names,omitempty"`
	Encoding   string                  `json:"encoding,omitempty"`
	Profiles   []dataset.ColumnProfile `json:"profiles"`
}

// Upload loads the raw file, profiles it and stores it under a fresh ID.
func (s *DatasetService) Upload(ctx context.Context, content []byte, filename string) (*UploadResult, error) {
	res, err := s.loader.Load(content, filename)
	if err != nil {
		s.countUpload("error")
		return nil, err
	}

	profiles := dataset.Profile(res.Table)
	res.Table.ApplyTypes(profiles)

	ds := &Dataset{
		ID:         uuid.New().String(),
		Filename:   filename,
		CreatedAt:  time.Now(),
		lastUsed:   time.Now(),
		Table:      res.Table,
		Profiles:   profiles,
		SheetNames: res.SheetNames,
		Truncated:  res.Truncated,
		SourceRows: res.SourceRows,
		Encoding:   res.Encoding,
	}

	s.mu.Lock()
	s.store[ds.ID] = ds
	s.mu.Unlock()
	s.countUpload("ok")

	s.logger.InfoContext(ctx, "dataset stored",
		slog.String("dataset_id", ds.ID),
		slog.String("filename", filename),
		slog.Int("rows", ds.Table.NumRows()),
		slog.Int("columns", ds.Table.NumCols()),
	)

	return &UploadResult{
		ID:         ds.ID,
		Filename:   ds.Filename,
		Rows:       ds.Table.NumRows(),
		Columns:    ds.Table.NumCols(),
		Truncated:  ds.Truncated,
		SourceRows: ds.SourceRows,
		SheetNames: ds.SheetNames,
		Encoding:   ds.Encoding,
		Profiles:   profiles,
	}, nil
}

// Preview is the response payload for dataset inspection.
type Preview struct {
	ID         string                  `json:"id"`
	Filename   string                  `json:"filename"`
	Rows       int                     `json:"rows"`
	Columns    []string                `json:"columns"`
	Head       [][]string              `json:"head"`
	Profiles   []dataset.ColumnProfile `json:"profiles"`
	Summary    dataset.Summary         `json:"summary"`
	Report     *cleaning.Report        `json:"report,omitempty"`
}

// Preview returns the first headRows rows plus profiles and summary.
func (s *DatasetService) Preview(ctx context.Context, id string, headRows int) (*Preview, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if headRows <= 0 {
		headRows = 10
	}
	if headRows > ds.Table.NumRows() {
		headRows = ds.Table.NumRows()
	}

	head := make([][]string, 0, headRows)
	for r := 0; r < headRows; r++ {
		row := ds.Table.Row(r)
		rendered := make([]string, len(row))
		for i, v := range row {
			rendered[i] = v.AsString()
		}
		head = append(head, rendered)
	}

	return &Preview{
		ID:       ds.ID,
		Filename: ds.Filename,
		Rows:     ds.Table.NumRows(),
		Columns:  ds.Table.ColumnNames(),
		Head:     head,
		Profiles: ds.Profiles,
		Summary:  dataset.Summarize(ds.Table, ds.Profiles),
		Report:   ds.Report,
	}, nil
}

// Clean runs the cleaning pipeline on the dataset's current table and
// replaces it with the cleaned result. The returned report includes the
// loader's truncation metadata.
func (s *DatasetService) Clean(ctx context.Context, id string, cfg cleaning.Config) (*cleaning.Report, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.pipeline.Run(ds.Table, cfg)
	if err != nil {
		s.countPipeline("error")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PipelineDuration.Observe(time.Since(start).Seconds())
		s.metrics.RowsCleaned.Add(float64(res.Report.RowsOut))
		s.metrics.OutliersFlagged.Add(float64(res.Report.OutliersFlagged))
	}
	s.countPipeline("ok")

	res.Report.Truncated = ds.Truncated
	res.Report.SourceRows = ds.SourceRows
	res.Report.SheetNames = ds.SheetNames
	if ds.Truncated {
		res.Report.AddNotice(cleaning.NoticeTruncated, "",
			"source exceeded the row cap and was truncated at load time")
	}

	s.mu.Lock()
	if stored, ok := s.store[id]; ok {
		stored.Table = res.Table
		stored.Profiles = res.Profiles
		stored.Report = res.Report
	}
	s.mu.Unlock()

	return res.Report, nil
}

// Chart prepares a chart from the dataset's current table, passing the
// last cleaning run's outlier flags through for highlighting.
func (s *DatasetService) Chart(ctx context.Context, id string, req chartprep.Request) (*chartprep.Chart, error) {
	ds, err := s.get(id)
	if err != nil {
		return nil, err
	}
	var outliers []int
	if ds.Report != nil {
		outliers = ds.Report.OutlierIndices
	}
	return s.charts.Build(ds.Table, req, outliers)
}

// ExportFormat names a download serialization.
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatXLSX    ExportFormat = "xlsx"
	FormatJSON    ExportFormat = "json"
	FormatSummary ExportFormat = "summary"
)

// Export streams the dataset in the requested format.
func (s *DatasetService) Export(ctx context.Context, id string, format ExportFormat, w io.Writer) error {
	ds, err := s.get(id)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		return s.exporter.WriteCSV(w, ds.Table)
	case FormatXLSX:
		return s.exporter.WriteWorkbook(w, ds.Table)
	case FormatJSON:
		return s.exporter.WriteJSON(w, ds.Table)
	case FormatSummary:
		summary := dataset.Summarize(ds.Table, ds.Profiles)
		return s.exporter.WriteSummaryWorkbook(w, ds.Table, ds.Profiles, summary, ds.Report)
	default:
		return apperrors.Newf(apperrors.ErrTypeValidation, "unsupported export format %q", string(format))
	}
}

// Delete removes a dataset from the store.
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.store[id]; !ok {
		return apperrors.Newf(apperrors.ErrTypeNotFound, "dataset %s not found", id)
	}
	delete(s.store, id)
	return nil
}

// StartJanitor evicts datasets idle past the TTL until ctx is done.
func (s *DatasetService) StartJanitor(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(s.ttl / 4)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictExpired()
			}
		}
	}()
}

func (s *DatasetService) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ds := range s.store {
		if ds.lastUsed.Before(cutoff) {
			delete(s.store, id)
			s.logger.Info("dataset evicted", slog.String("dataset_id", id))
		}
	}
}

// get returns a point-in-time copy of the stored dataset. Clean swaps
// Table, Profiles and Report wholesale rather than mutating them in
// place, so the copied pointers stay safe to read after the lock is
// released.
func (s *DatasetService) get(id string) (Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.store[id]
	if !ok {
		return Dataset{}, apperrors.Newf(apperrors.ErrTypeNotFound, "dataset %s not found", id)
	}
	ds.lastUsed = time.Now()
	return *ds, nil
}

func (s *DatasetService) countUpload(outcome string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *DatasetService) countPipeline(outcome string) {
	if s.metrics != nil {
		s.metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	}
}
