package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabcleaner/internal/cleaning"
	"tabcleaner/internal/dataset"
)

// sampleSheetRows caps the data sample carried in the summary workbook.
const sampleSheetRows = 1000

// WriteWorkbook streams the table as a single-sheet xlsx workbook.
func (e *Exporter) WriteWorkbook(w io.Writer, t *dataset.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Data"
	f.SetSheetName("Sheet1", sheet)
	if err := writeTableSheet(f, sheet, t, t.NumRows()); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	e.logger.Info("workbook export written", slog.Int("rows", t.NumRows()))
	return nil
}

// WriteSummaryWorkbook streams the multi-sheet analysis report: a data
// sample, descriptive statistics, the data quality account (including
// the cleaning report) and per-column profile info.
func (e *Exporter) WriteSummaryWorkbook(w io.Writer, t *dataset.Table, profiles []dataset.ColumnProfile, summary dataset.Summary, report *cleaning.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", "Data Sample")
	sample := t.NumRows()
	if sample > sampleSheetRows {
		sample = sampleSheetRows
	}
	if err := writeTableSheet(f, "Data Sample", t, sample); err != nil {
		return err
	}
	if err := writeStatisticsSheet(f, summary); err != nil {
		return err
	}
	if err := writeQualitySheet(f, summary, report); err != nil {
		return err
	}
	if err := writeColumnInfoSheet(f, profiles); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write summary workbook: %w", err)
	}
	e.logger.Info("summary workbook written",
		slog.Int("sample_rows", sample),
		slog.Int("columns", t.NumCols()))
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, t *dataset.Table, rows int) error {
	for c, name := range t.ColumnNames() {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < t.NumCols(); c++ {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, cellExcel(t.ColumnAt(c).Cells[r])); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

// cellExcel keeps numeric and boolean cells native so spreadsheet
// formulas keep working; everything else exports as text.
func cellExcel(v dataset.Value) interface{} {
	switch v.Kind() {
	case dataset.KindMissing:
		return ""
	case dataset.KindNumber:
		f, _ := v.AsFloat()
		return f
	case dataset.KindBool:
		b, _ := v.AsBool()
		return b
	default:
		return v.AsString()
	}
}

func writeStatisticsSheet(f *excelize.File, summary dataset.Summary) error {
	const sheet = "Statistics"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if len(summary.Describe) == 0 {
		return f.SetCellValue(sheet, "A1", "No numeric columns found")
	}

	headers := []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, d := range summary.Describe {
		values := []interface{}{d.Column, d.Count, d.Mean, d.Std, d.Min, d.P25, d.Median, d.P75, d.Max}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeQualitySheet(f *excelize.File, summary dataset.Summary, report *cleaning.Report) error {
	const sheet = "Data Quality"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Rows", summary.Rows},
		{"Total Columns", summary.Columns},
		{"Duplicate Rows", summary.DuplicateRows},
	}
	if report != nil {
		rows = append(rows,
			[]interface{}{"Rows In", report.RowsIn},
			[]interface{}{"Rows Out", report.RowsOut},
			[]interface{}{"Rows Dropped", report.RowsDropped},
			[]interface{}{"Duplicates Removed", report.DuplicatesRemoved},
			[]interface{}{"Outliers Flagged", report.OutliersFlagged},
			[]interface{}{"Truncated", report.Truncated},
		)
		for col, n := range report.MissingFilled {
			rows = append(rows, []interface{}{"Missing Filled: " + col, n})
		}
		for _, notice := range report.Notices {
			label := "Notice: " + notice.Code
			if notice.Column != "" {
				label += " (" + notice.Column + ")"
			}
			rows = append(rows, []interface{}{label, notice.Detail})
		}
		if len(report.OutlierIndices) > 0 {
			rows = append(rows, []interface{}{"Flagged Row Indices", joinInts(report.OutlierIndices)})
		}
	}
	for col, info := range summary.MissingData {
		rows = append(rows, []interface{}{
			"Missing: " + col,
			fmt.Sprintf("%d (%.2f%%)", info.Count, info.Percentage),
		})
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeColumnInfoSheet(f *excelize.File, profiles []dataset.ColumnProfile) error {
	const sheet = "Column Info"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	headers := []string{"Column", "Type", "Missing", "Unique", "Min", "Max", "Samples"}
	for c, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, p := range profiles {
		values := []interface{}{
			p.Name, p.Type.String(), p.MissingCount, p.UniqueCount,
			profileBound(p, true), profileBound(p, false),
			strings.Join(p.SampleValues, ", "),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func profileBound(p dataset.ColumnProfile, min bool) string {
	if p.Type == dataset.TypeNumeric {
		v := p.Max
		if min {
			v = p.Min
		}
		if v != nil {
			return formatFloat(*v)
		}
	}
	if p.Type == dataset.TypeDatetime {
		v := p.MaxTime
		if min {
			v = p.MinTime
		}
		if v != nil {
			return v.Format("2006-01-02")
		}
	}
	return ""
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
