package ops

import (
	"fmt"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// LabelMapping is the fitted state of a label encoding, returned to
// the caller instead of being cached inside the encoder so concurrent
// sessions cannot observe each other's fits.
type LabelMapping struct {
	Column  string   `json:"column"`
	Classes []string `json:"classes"` // index is the assigned code
}

// Decode returns the original value for a code.
func (m *LabelMapping) Decode(code int) (string, bool) {
	if code < 0 || code >= len(m.Classes) {
		return "", false
	}
	return m.Classes[code], true
}

// LabelEncode maps each distinct non-missing value of a column to a
// 0-based integer in order of first appearance. Missing cells stay
// missing; the column becomes numeric.
func LabelEncode(ds *dataset.Dataset, column string) (*dataset.Dataset, *LabelMapping, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, nil, err
	}
	mapping := &LabelMapping{Column: column}
	codes := map[string]int{}
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			vals[i] = v
			continue
		}
		key := v.Display()
		code, ok := codes[key]
		if !ok {
			code = len(mapping.Classes)
			codes[key] = code
			mapping.Classes = append(mapping.Classes, key)
		}
		vals[i] = dataset.Num(float64(code))
	}
	out := ds.WithColumn(dataset.Column{Name: column, Type: dataset.KindNumeric, Values: vals})
	return out, mapping, nil
}

// OneHotEncode replaces each source column with one boolean indicator
// column per distinct non-missing value (order of first appearance),
// named source_value. Rows missing in the source are missing in every
// indicator. dropFirst removes the first category's indicator per
// source column.
func OneHotEncode(ds *dataset.Dataset, columns []string, dropFirst bool) (*dataset.Dataset, error) {
	targets := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if _, err := columnOf(ds, name); err != nil {
			return nil, err
		}
		targets[name] = struct{}{}
	}

	var next []dataset.Column
	for _, c := range ds.Columns() {
		if _, ok := targets[c.Name]; !ok {
			next = append(next, c)
			continue
		}
		var classes []string
		seen := map[string]struct{}{}
		for _, v := range c.Values {
			if v.IsMissing() {
				continue
			}
			key := v.Display()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				classes = append(classes, key)
			}
		}
		start := 0
		if dropFirst && len(classes) > 0 {
			start = 1
		}
		for _, class := range classes[start:] {
			vals := make([]dataset.Value, len(c.Values))
			for i, v := range c.Values {
				if v.IsMissing() {
					vals[i] = dataset.Missing()
					continue
				}
				vals[i] = dataset.Bool(v.Display() == class)
			}
			next = append(next, dataset.Column{
				Name:   c.Name + "_" + class,
				Type:   dataset.KindBool,
				Values: vals,
			})
		}
	}
	out, err := dataset.New(next...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return out, nil
}

// OrdinalEncode applies a caller-supplied value-to-integer mapping.
// Values absent from the mapping become missing rather than passing
// through, so the column stays uniformly numeric; the unmapped count
// is returned for the caller to surface.
func OrdinalEncode(ds *dataset.Dataset, column string, mapping map[string]int) (*dataset.Dataset, int, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, 0, err
	}
	if len(mapping) == 0 {
		return nil, 0, fmt.Errorf("%w: ordinal mapping is empty", ErrInvalidParameter)
	}
	unmapped := 0
	vals := make([]dataset.Value, len(col.Values))
	for i, v := range col.Values {
		if v.IsMissing() {
			vals[i] = v
			continue
		}
		if code, ok := mapping[v.Display()]; ok {
			vals[i] = dataset.Num(float64(code))
		} else {
			vals[i] = dataset.Missing()
			unmapped++
		}
	}
	out := ds.WithColumn(dataset.Column{Name: column, Type: dataset.KindNumeric, Values: vals})
	return out, unmapped, nil
}

// FillAll fills every missing cell in the dataset with the literal
// coerced to each column's type; cells whose column cannot represent
// the literal stay missing.
func FillAll(ds *dataset.Dataset, literal string) *dataset.Dataset {
	out := ds.Clone()
	for _, c := range out.Columns() {
		fill := dataset.Coerce(dataset.Str(literal), c.Type)
		if fill.IsMissing() || c.MissingCount() == 0 {
			continue
		}
		out = fillMissing(out, c, fill)
	}
	return out
}
