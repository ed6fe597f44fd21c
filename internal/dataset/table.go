package dataset

import (
	"fmt"
)

// ColumnType is the inferred semantic type of a column. The declaration
// order matches the profiler's precedence: when several rules match a
// column, the earlier type wins.
type ColumnType int

const (
	TypeBoolean ColumnType = iota
	TypeNumeric
	TypeDatetime
	TypeCategorical
	TypeText
)

// String returns the lowercase name used in profiles, reports and exports.
func (t ColumnType) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeNumeric:
		return "numeric"
	case TypeDatetime:
		return "datetime"
	case TypeCategorical:
		return "categorical"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the type as its string name.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// Column is an ordered sequence of cells sharing one inferred type.
type Column struct {
	Name  string
	Type  ColumnType
	Cells []Value
}

// Table is an ordered columnar dataset. Columns are addressed by unique
// name or by position; every column holds the same number of cells at
// all times.
type Table struct {
	cols  []*Column
	index map[string]int
}

// NewTable creates an empty table with the given column names. Untyped
// columns start as text until profiled.
func NewTable(names []string) (*Table, error) {
	t := &Table{index: make(map[string]int, len(names))}
	for _, name := range names {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = len(t.cols)
		t.cols = append(t.cols, &Column{Name: name, Type: TypeText})
	}
	return t, nil
}

// NumRows returns the shared row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in position order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// Row materializes row i across all columns.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.cols))
	for c, col := range t.cols {
		row[c] = col.Cells[i]
	}
	return row
}

// AppendRow appends one cell per column. The row length must match the
// column count.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.cols))
	}
	for i, col := range t.cols {
		col.Cells = append(col.Cells, row[i])
	}
	return nil
}

// AppendColumn adds a fully populated column. Its length must match the
// current row count.
func (t *Table) AppendColumn(col *Column) error {
	if _, dup := t.index[col.Name]; dup {
		return fmt.Errorf("duplicate column name %q", col.Name)
	}
	if len(t.cols) > 0 && len(col.Cells) != t.NumRows() {
		return fmt.Errorf("column %q has %d cells, table has %d rows", col.Name, len(col.Cells), t.NumRows())
	}
	t.index[col.Name] = len(t.cols)
	t.cols = append(t.cols, col)
	return nil
}

// FilterRows returns a new table containing only the rows for which keep
// returns true, preserving original order. Column types carry over.
func (t *Table) FilterRows(keep func(row int) bool) *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		out.index[c.Name] = i
		out.cols = append(out.cols, &Column{Name: c.Name, Type: c.Type})
	}
	for r := 0; r < t.NumRows(); r++ {
		if !keep(r) {
			continue
		}
		for i, c := range t.cols {
			out.cols[i].Cells = append(out.cols[i].Cells, c.Cells[r])
		}
	}
	return out
}

// Clone returns a deep copy of the table. Value is a value type, so
// copying the cell slices is sufficient.
func (t *Table) Clone() *Table {
	out := &Table{index: make(map[string]int, len(t.cols))}
	for i, c := range t.cols {
		cells := make([]Value, len(c.Cells))
		copy(cells, c.Cells)
		out.index[c.Name] = i
		out.cols = append(out.cols, &Column{Name: c.Name, Type: c.Type, Cells: cells})
	}
	return out
}

// ApplyTypes coerces every cell to its column's profiled type. Cells with
// no representation in the target type are left in their raw form; the
// profiler already guarantees this is rare (datetime columns may carry up
// to 10% unparsed stragglers).
func (t *Table) ApplyTypes(profiles []ColumnProfile) {
	for _, p := range profiles {
		col, ok := t.Column(p.Name)
		if !ok {
			continue
		}
		col.Type = p.Type
		for i, v := range col.Cells {
			if coerced, ok := v.Coerce(p.Type); ok {
				col.Cells[i] = coerced
			}
		}
	}
}

// NumericColumns returns the names of columns profiled as numeric, in
// position order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.cols {
		if c.Type == TypeNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}
