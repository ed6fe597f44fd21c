// Package loader turns uploaded CSV and Excel bytes into dataset tables.
// It owns format detection, the character-encoding fallback chain and the
// hard row cap; everything downstream works on the in-memory table only.
package loader

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
)

// MaxRows is the hard cap on loaded rows. Sources above the cap are
// truncated and the truncation is reported, never silently dropped.
const MaxRows = 100000

// Result is the loader output: the parsed table plus the load metadata
// the report and UI need.
type Result struct {
	Table      *dataset.Table
	SheetNames []string // Excel only; first sheet is the one loaded
	Truncated  bool
	SourceRows int // rows in the source before the cap was applied
	Encoding   string // CSV only; the encoding that decoded the content
}

// Loader parses uploaded files into tables.
type Loader struct {
	logger  *slog.Logger
	maxRows int
}

// New creates a loader with the default row cap.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:  logger.With(slog.String("component", "loader")),
		maxRows: MaxRows,
	}
}

// Load parses raw upload bytes according to the declared filename's
// extension. Supported extensions are csv, xlsx and xls; anything else
// fails with an unsupported-format error. Zero data rows after parsing
// fail with an empty-file error.
func (l *Loader) Load(content []byte, filename string) (*Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var (
		res *Result
		err error
	)
	switch ext {
	case "csv":
		res, err = l.loadCSV(content)
	case "xlsx", "xls":
		res, err = l.loadExcel(content)
	default:
		return nil, apperrors.Newf(apperrors.ErrTypeUnsupportedFormat,
			"unsupported file format %q, expected csv, xlsx or xls", ext)
	}
	if err != nil {
		return nil, err
	}

	if res.Table.NumRows() == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmptyFile, "file contains no data rows")
	}

	l.logger.Info("file loaded",
		slog.String("filename", filename),
		slog.Int("rows", res.Table.NumRows()),
		slog.Int("columns", res.Table.NumCols()),
		slog.Bool("truncated", res.Truncated),
	)
	return res, nil
}

// capRows enforces the row cap on parsed raw rows (header excluded) and
// reports whether truncation occurred.
func (l *Loader) capRows(rows [][]string) ([][]string, bool) {
	if len(rows) <= l.maxRows {
		return rows, false
	}
	l.logger.Warn("source exceeds row cap, truncating",
		slog.Int("source_rows", len(rows)),
		slog.Int("max_rows", l.maxRows),
	)
	return rows[:l.maxRows], true
}

// buildTable converts a header plus raw string rows into a table. Short
// rows are padded with missing cells and long rows are clipped, so ragged
// CSV input never breaks the equal-length column invariant. Duplicate or
// empty header names are disambiguated positionally.
func buildTable(header []string, rows [][]string) (*dataset.Table, error) {
	names := normalizeHeader(header)
	t, err := dataset.NewTable(names)
	if err != nil {
		return nil, err
	}
	for _, raw := range rows {
		row := make([]dataset.Value, len(names))
		for i := range names {
			if i >= len(raw) || dataset.IsMissingToken(raw[i]) {
				row[i] = dataset.Missing()
				continue
			}
			row[i] = dataset.String(strings.TrimSpace(raw[i]))
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = base + "_" + strconv.Itoa(n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 1
		names[i] = name
	}
	return names
}
