package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"tabcleaner/internal/dataset"
)

// WriteJSON streams the table in records orientation: a JSON array with
// one object per row, keyed by column name. Cell values keep their
// inferred types; missing cells serialize as null.
func (e *Exporter) WriteJSON(w io.Writer, t *dataset.Table) error {
	records := make([]map[string]interface{}, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		record := make(map[string]interface{}, t.NumCols())
		for c := 0; c < t.NumCols(); c++ {
			col := t.ColumnAt(c)
			record[col.Name] = cellJSON(col.Cells[r])
		}
		records = append(records, record)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}

	e.logger.Info("JSON export written", slog.Int("rows", t.NumRows()))
	return nil
}

func cellJSON(v dataset.Value) interface{} {
	switch v.Kind() {
	case dataset.KindMissing:
		return nil
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
