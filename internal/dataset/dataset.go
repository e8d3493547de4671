package dataset

import (
	"fmt"
	"strings"
)

// Column is a named, typed, ordered sequence of cells.
type Column struct {
	Name   string
	Type   Kind
	Values []Value
}

// Dataset is an ordered sequence of columns with index-aligned rows.
// Operations never mutate a dataset in place: Clone shares column
// backing arrays, and a transformed column is swapped in wholesale, so
// a prior snapshot stays recoverable without a full copy.
type Dataset struct {
	cols []Column
}

// New validates column alignment and name uniqueness.
func New(cols ...Column) (*Dataset, error) {
	seen := make(map[string]struct{}, len(cols))
	rows := -1
	for _, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column without a name")
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if rows == -1 {
			rows = len(c.Values)
		} else if len(c.Values) != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, len(c.Values), rows)
		}
	}
	return &Dataset{cols: cols}, nil
}

// Empty returns a dataset with no rows and no columns.
func Empty() *Dataset { return &Dataset{} }

// Rows returns the row count.
func (d *Dataset) Rows() int {
	if len(d.cols) == 0 {
		return 0
	}
	return len(d.cols[0].Values)
}

// Cols returns the column count.
func (d *Dataset) Cols() int { return len(d.cols) }

// Columns returns the columns in order. Callers must not mutate the
// returned slice or the value slices it shares.
func (d *Dataset) Columns() []Column { return d.cols }

// ColumnNames returns the names in column order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.Column(name)
	return ok
}

// Clone returns a snapshot sharing column backing arrays.
func (d *Dataset) Clone() *Dataset {
	cols := make([]Column, len(d.cols))
	copy(cols, d.cols)
	return &Dataset{cols: cols}
}

// WithColumn returns a clone with the column replaced in place if the
// name exists, or appended otherwise.
func (d *Dataset) WithColumn(col Column) *Dataset {
	out := d.Clone()
	for i, c := range out.cols {
		if c.Name == col.Name {
			out.cols[i] = col
			return out
		}
	}
	out.cols = append(out.cols, col)
	return out
}

// WithoutColumns returns a clone lacking the named columns. Unknown
// names are ignored.
func (d *Dataset) WithoutColumns(names ...string) *Dataset {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	cols := make([]Column, 0, len(d.cols))
	for _, c := range d.cols {
		if _, ok := drop[c.Name]; !ok {
			cols = append(cols, c)
		}
	}
	return &Dataset{cols: cols}
}

// Row returns the i-th row across all columns.
func (d *Dataset) Row(i int) []Value {
	row := make([]Value, len(d.cols))
	for j, c := range d.cols {
		row[j] = c.Values[i]
	}
	return row
}

// RowKey renders a canonical key of the i-th row over the given column
// indexes (all columns when idx is nil).
func (d *Dataset) RowKey(i int, idx []int) string {
	var b strings.Builder
	if idx == nil {
		for _, c := range d.cols {
			b.WriteString(c.Values[i].Key())
			b.WriteByte('\x1f')
		}
		return b.String()
	}
	for _, j := range idx {
		b.WriteString(d.cols[j].Values[i].Key())
		b.WriteByte('\x1f')
	}
	return b.String()
}

// SelectRows returns a dataset keeping only rows where keep[i] is true.
func (d *Dataset) SelectRows(keep []bool) *Dataset {
	cols := make([]Column, len(d.cols))
	for j, c := range d.cols {
		vals := make([]Value, 0, len(c.Values))
		for i, v := range c.Values {
			if keep[i] {
				vals = append(vals, v)
			}
		}
		cols[j] = Column{Name: c.Name, Type: c.Type, Values: vals}
	}
	return &Dataset{cols: cols}
}

// NumericColumns returns the names of numeric columns in order.
func (d *Dataset) NumericColumns() []string {
	var names []string
	for _, c := range d.cols {
		if c.Type == KindNumeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// TextColumns returns the names of text columns in order.
func (d *Dataset) TextColumns() []string {
	var names []string
	for _, c := range d.cols {
		if c.Type == KindText {
			names = append(names, c.Name)
		}
	}
	return names
}

// MissingCells counts absent cells across the whole dataset.
func (d *Dataset) MissingCells() int {
	n := 0
	for _, c := range d.cols {
		for _, v := range c.Values {
			if v.IsMissing() {
				n++
			}
		}
	}
	return n
}

// MissingCount counts absent cells in the column.
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Floats extracts the non-missing numeric payloads of a column together
// with their row positions.
func (c Column) Floats() (vals []float64, rows []int) {
	for i, v := range c.Values {
		if f, ok := v.Float(); ok {
			vals = append(vals, f)
			rows = append(rows, i)
		}
	}
	return vals, rows
}

// Equal reports deep value equality including column order and types.
func (d *Dataset) Equal(o *Dataset) bool {
	if len(d.cols) != len(o.cols) || d.Rows() != o.Rows() {
		return false
	}
	for j, c := range d.cols {
		oc := o.cols[j]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for i, v := range c.Values {
			if !v.Equal(oc.Values[i]) {
				return false
			}
		}
	}
	return true
}
