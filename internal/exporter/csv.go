package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"tabcleaner/internal/dataset"
)

// Exporter serializes cleaned tables and cleaning reports for download.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// WriteCSV streams the table as UTF-8 CSV. A BOM prefix is written so
// Excel recognizes the encoding when the file is opened directly.
func (e *Exporter) WriteCSV(w io.Writer, t *dataset.Table) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c := 0; c < t.NumCols(); c++ {
			record[c] = t.ColumnAt(c).Cells[r].AsString()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", r, err)
		}
	}
	cw.Flush()

	e.logger.Info("CSV export written",
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return cw.Error()
}
