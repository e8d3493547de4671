// Package ops is the library of deterministic dataset transformations.
// Every function returns a new dataset and never mutates its input.
package ops

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// Keep selects which occurrence survives duplicate removal.
type Keep string

const (
	KeepFirst Keep = "first"
	KeepLast  Keep = "last"
)

// RemoveDuplicates drops rows whose value tuple over the subset
// columns (all columns when subset is empty) repeats another row's.
// It returns the number of rows removed.
func RemoveDuplicates(ds *dataset.Dataset, subset []string, keep Keep) (*dataset.Dataset, int, error) {
	if keep == "" {
		keep = KeepFirst
	}
	if keep != KeepFirst && keep != KeepLast {
		return nil, 0, fmt.Errorf("%w: keep must be %q or %q", ErrInvalidParameter, KeepFirst, KeepLast)
	}
	var idx []int
	if len(subset) > 0 {
		names := ds.ColumnNames()
		pos := make(map[string]int, len(names))
		for i, n := range names {
			pos[n] = i
		}
		for _, name := range subset {
			j, ok := pos[name]
			if !ok {
				return nil, 0, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
			}
			idx = append(idx, j)
		}
	}

	rows := ds.Rows()
	keepRow := make([]bool, rows)
	seen := make(map[string]struct{}, rows)
	if keep == KeepFirst {
		for i := 0; i < rows; i++ {
			key := ds.RowKey(i, idx)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keepRow[i] = true
			}
		}
	} else {
		for i := rows - 1; i >= 0; i-- {
			key := ds.RowKey(i, idx)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				keepRow[i] = true
			}
		}
	}
	out := ds.SelectRows(keepRow)
	return out, rows - out.Rows(), nil
}

// DropColumns removes the named columns. Unknown names are ignored.
func DropColumns(ds *dataset.Dataset, columns []string) *dataset.Dataset {
	return ds.WithoutColumns(columns...)
}

// DropHighMissing removes columns whose missing fraction exceeds the
// threshold, returning the dropped names in column order.
func DropHighMissing(ds *dataset.Dataset, threshold float64) (*dataset.Dataset, []string) {
	rows := ds.Rows()
	if rows == 0 {
		return ds.Clone(), nil
	}
	var dropped []string
	for _, c := range ds.Columns() {
		if float64(c.MissingCount())/float64(rows) > threshold {
			dropped = append(dropped, c.Name)
		}
	}
	return ds.WithoutColumns(dropped...), dropped
}

// TextCleanOptions toggles the text normalization passes. Enabled
// passes apply in the declared order.
type TextCleanOptions struct {
	CollapseWhitespace bool // runs of whitespace become one space
	Lowercase          bool
	StripSpecial       bool // keep letters, digits, and spaces only
	StripDigits        bool
	TrimSpace          bool
}

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reSpecial    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	reDigits     = regexp.MustCompile(`\d+`)
)

// NormalizeText applies the enabled passes to each selected text
// column, leaving missing cells untouched.
func NormalizeText(ds *dataset.Dataset, columns []string, opts TextCleanOptions) (*dataset.Dataset, error) {
	out := ds.Clone()
	for _, name := range columns {
		col, err := columnOf(out, name)
		if err != nil {
			return nil, err
		}
		if col.Type != dataset.KindText {
			return nil, fmt.Errorf("%w: column %q is not text", ErrInvalidParameter, name)
		}
		vals := make([]dataset.Value, len(col.Values))
		for i, v := range col.Values {
			s, ok := v.Text()
			if !ok {
				vals[i] = v
				continue
			}
			vals[i] = dataset.Str(cleanText(s, opts))
		}
		out = out.WithColumn(dataset.Column{Name: name, Type: dataset.KindText, Values: vals})
	}
	return out, nil
}

func cleanText(s string, opts TextCleanOptions) string {
	if opts.CollapseWhitespace {
		s = reWhitespace.ReplaceAllString(s, " ")
	}
	if opts.Lowercase {
		s = strings.ToLower(s)
	}
	if opts.StripSpecial {
		s = reSpecial.ReplaceAllString(s, "")
	}
	if opts.StripDigits {
		s = reDigits.ReplaceAllString(s, "")
	}
	if opts.TrimSpace {
		s = strings.TrimSpace(s)
	}
	return s
}

// RenameColumns renames columns per the mapping. Unknown source names
// are ignored; a rename that collides with a surviving name fails.
func RenameColumns(ds *dataset.Dataset, mapping map[string]string) (*dataset.Dataset, error) {
	cols := ds.Columns()
	next := make([]dataset.Column, len(cols))
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		name := c.Name
		if to, ok := mapping[c.Name]; ok && to != "" {
			name = to
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: rename collides on column name %q", ErrInvalidParameter, name)
		}
		seen[name] = struct{}{}
		next[i] = dataset.Column{Name: name, Type: c.Type, Values: c.Values}
	}
	out, err := dataset.New(next...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilterRows keeps rows satisfying `column op literal`. Numeric
// comparison is used when the column is numeric and the literal
// parses; otherwise the rendered values compare as strings. Rows with
// a missing cell never match.
func FilterRows(ds *dataset.Dataset, column, operator, literal string) (*dataset.Dataset, int, error) {
	col, err := columnOf(ds, column)
	if err != nil {
		return nil, 0, err
	}
	switch operator {
	case "==", "!=", ">", ">=", "<", "<=":
	default:
		return nil, 0, fmt.Errorf("%w: comparison operator %q", ErrInvalidParameter, operator)
	}

	numLit, numErr := strconv.ParseFloat(literal, 64)
	numeric := col.Type == dataset.KindNumeric && numErr == nil

	rows := ds.Rows()
	keep := make([]bool, rows)
	for i, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		var cmp int
		if numeric {
			f, _ := v.Float()
			switch {
			case f < numLit:
				cmp = -1
			case f > numLit:
				cmp = 1
			}
		} else {
			cmp = strings.Compare(v.Display(), literal)
		}
		switch operator {
		case "==":
			keep[i] = cmp == 0
		case "!=":
			keep[i] = cmp != 0
		case ">":
			keep[i] = cmp > 0
		case ">=":
			keep[i] = cmp >= 0
		case "<":
			keep[i] = cmp < 0
		case "<=":
			keep[i] = cmp <= 0
		}
	}
	out := ds.SelectRows(keep)
	return out, rows - out.Rows(), nil
}
