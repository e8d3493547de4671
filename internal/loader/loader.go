// Package loader materializes tabular datasets from delimited and JSON
// files and writes them back out. It is the only package that touches
// file formats; everything downstream works on dataset values.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// FileInfo carries filename metadata alongside a loaded dataset.
type FileInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// ReadFile dispatches on the file extension. Supported: .csv, .tsv, .json.
func ReadFile(path string) (*dataset.Dataset, *FileInfo, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv":
		return ReadCSV(path, 0)
	case ".json":
		return ReadJSON(path)
	default:
		return nil, nil, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// ReadCSV loads a delimited file. A zero delimiter auto-detects from
// the filename (.tsv means tab).
func ReadCSV(path string, delim rune) (*dataset.Dataset, *FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return readCSV(f, filepath.Base(path), delim)
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func readCSV(f io.Reader, name string, delim rune) (*dataset.Dataset, *FileInfo, error) {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataset.Empty(), &FileInfo{Name: name}, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	ncol := len(header)
	cells := make([][]string, ncol)
	rows := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", rows+1, err)
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		for j := 0; j < ncol; j++ {
			cells[j] = append(cells[j], strings.TrimSpace(rec[j]))
		}
		rows++
	}

	cols := make([]dataset.Column, ncol)
	for j := 0; j < ncol; j++ {
		cols[j] = buildColumn(strings.TrimSpace(header[j]), cells[j])
	}
	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble dataset: %w", err)
	}
	return ds, &FileInfo{Name: name, Rows: ds.Rows(), Cols: ds.Cols()}, nil
}

func isMissingToken(s string) bool {
	switch s {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return true
	}
	return false
}

// buildColumn infers the column kind from the predominant parsed kind
// of the raw tokens and materializes typed cells. Tokens that fail to
// parse as the inferred kind become missing.
func buildColumn(name string, raw []string) dataset.Column {
	var numCnt, boolCnt, timeCnt, nonNil int
	for _, s := range raw {
		if isMissingToken(s) {
			continue
		}
		nonNil++
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			numCnt++
			continue
		}
		if _, ok := dataset.ParseBool(s); ok {
			boolCnt++
			continue
		}
		if _, ok := dataset.ParseTime(s); ok {
			timeCnt++
		}
	}
	kind := dataset.KindText
	switch {
	case nonNil == 0:
		kind = dataset.KindText
	case boolCnt == nonNil:
		kind = dataset.KindBool
	case numCnt > nonNil/2:
		kind = dataset.KindNumeric
	case timeCnt > nonNil/2:
		kind = dataset.KindTime
	}

	vals := make([]dataset.Value, len(raw))
	for i, s := range raw {
		if isMissingToken(s) {
			vals[i] = dataset.Missing()
			continue
		}
		switch kind {
		case dataset.KindNumeric:
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				vals[i] = dataset.Num(f)
			} else {
				vals[i] = dataset.Missing()
			}
		case dataset.KindBool:
			if b, ok := dataset.ParseBool(s); ok {
				vals[i] = dataset.Bool(b)
			} else {
				vals[i] = dataset.Missing()
			}
		case dataset.KindTime:
			if t, ok := dataset.ParseTime(s); ok {
				vals[i] = dataset.Time(t)
			} else {
				vals[i] = dataset.Missing()
			}
		default:
			vals[i] = dataset.Str(s)
		}
	}
	return dataset.Column{Name: name, Type: kind, Values: vals}
}

// ReadJSON loads an array of flat objects. Keys are unioned across
// records and ordered alphabetically for determinism.
func ReadJSON(path string) (*dataset.Dataset, *FileInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open json: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, nil, fmt.Errorf("parse json: %w", err)
	}
	keys := map[string]struct{}{}
	for _, rec := range records {
		for k := range rec {
			keys[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)

	cols := make([]dataset.Column, len(names))
	for j, name := range names {
		raw := make([]string, len(records))
		for i, rec := range records {
			v, ok := rec[name]
			if !ok || v == nil {
				continue
			}
			switch x := v.(type) {
			case float64:
				raw[i] = strconv.FormatFloat(x, 'g', -1, 64)
			case bool:
				raw[i] = strconv.FormatBool(x)
			case string:
				raw[i] = strings.TrimSpace(x)
			default:
				bs, _ := json.Marshal(x)
				raw[i] = string(bs)
			}
		}
		cols[j] = buildColumn(name, raw)
	}
	ds, err := dataset.New(cols...)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble dataset: %w", err)
	}
	return ds, &FileInfo{Name: filepath.Base(path), Rows: ds.Rows(), Cols: ds.Cols()}, nil
}

// WriteCSV exports a dataset; missing cells render empty.
func WriteCSV(ds *dataset.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	cols := ds.Columns()
	for i := 0; i < ds.Rows(); i++ {
		rec := make([]string, len(cols))
		for j, c := range cols {
			rec[j] = c.Values[i].Display()
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteJSON exports a dataset as an array of objects; missing cells
// are emitted as null.
func WriteJSON(ds *dataset.Dataset, path string) error {
	cols := ds.Columns()
	records := make([]map[string]any, ds.Rows())
	for i := 0; i < ds.Rows(); i++ {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			v := c.Values[i]
			if v.IsMissing() {
				rec[c.Name] = nil
				continue
			}
			if f, ok := v.Float(); ok {
				rec[c.Name] = f
			} else if b, ok := v.BoolVal(); ok {
				rec[c.Name] = b
			} else {
				rec[c.Name] = v.Display()
			}
		}
		records[i] = rec
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
