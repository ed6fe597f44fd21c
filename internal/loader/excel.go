package loader

import (
	"bytes"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "tabcleaner/internal/errors"
)

// loadExcel parses a workbook from memory. Only the first sheet is
// loaded; the remaining sheet names are surfaced as metadata so a sheet
// selector can be added without reloading. Legacy BIFF .xls content is
// not decodable here and reports a decode error rather than an
// unsupported format, since the extension itself is accepted.
func (l *Loader) loadExcel(content []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDecode, "failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmptyFile, "workbook has no sheets")
	}

	first := sheets[0]
	rows, err := f.GetRows(first)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDecode, "failed to read sheet "+first, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.ErrTypeEmptyFile, "first sheet is empty")
	}

	l.logger.Debug("loaded workbook",
		slog.String("sheet", first),
		slog.Int("sheet_count", len(sheets)),
		slog.Int("raw_rows", len(rows)),
	)

	header, dataRows := rows[0], rows[1:]
	sourceRows := len(dataRows)
	dataRows, truncated := l.capRows(dataRows)

	table, err := buildTable(header, dataRows)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTypeDecode, "failed to build table from sheet", err)
	}
	return &Result{
		Table:      table,
		SheetNames: sheets,
		Truncated:  truncated,
		SourceRows: sourceRows,
	}, nil
}
