package ops

import (
	"errors"
	"math"
	"testing"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// numCol builds a numeric column; NaN entries become missing cells.
func numCol(name string, vals ...float64) dataset.Column {
	out := make([]dataset.Value, len(vals))
	for i, f := range vals {
		if math.IsNaN(f) {
			out[i] = dataset.Missing()
		} else {
			out[i] = dataset.Num(f)
		}
	}
	return dataset.Column{Name: name, Type: dataset.KindNumeric, Values: out}
}

func textCol(name string, vals ...string) dataset.Column {
	out := make([]dataset.Value, len(vals))
	for i, s := range vals {
		out[i] = dataset.Str(s)
	}
	return dataset.Column{Name: name, Type: dataset.KindText, Values: out}
}

func mustDataset(t *testing.T, cols ...dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(cols...)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func colFloats(t *testing.T, ds *dataset.Dataset, name string) []float64 {
	t.Helper()
	col, ok := ds.Column(name)
	if !ok {
		t.Fatalf("column %q not found", name)
	}
	out := make([]float64, len(col.Values))
	for i, v := range col.Values {
		f, ok := v.Float()
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = f
	}
	return out
}

var nan = math.NaN()

func TestRemoveDuplicatesKeepFirst(t *testing.T) {
	ds := mustDataset(t,
		numCol("id", 1, 2, 1, 3, 2),
		textCol("name", "a", "b", "a", "c", "b"),
	)
	out, removed, err := RemoveDuplicates(ds, nil, KeepFirst)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if got := colFloats(t, out, "id"); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("kept ids = %v, want [1 2 3]", got)
	}

	// Running again is a no-op.
	again, removed, err := RemoveDuplicates(out, nil, KeepFirst)
	if err != nil {
		t.Fatalf("second RemoveDuplicates: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second pass removed = %d, want 0", removed)
	}
	if !again.Equal(out) {
		t.Fatal("second pass changed the dataset")
	}
}

func TestRemoveDuplicatesKeepLastWithSubset(t *testing.T) {
	ds := mustDataset(t,
		numCol("id", 1, 1, 2),
		numCol("v", 10, 20, 30),
	)
	out, removed, err := RemoveDuplicates(ds, []string{"id"}, KeepLast)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if got := colFloats(t, out, "v"); got[0] != 20 {
		t.Fatalf("surviving v = %v, want the later occurrence 20", got[0])
	}
}

func TestRemoveDuplicatesUnknownSubsetColumn(t *testing.T) {
	ds := mustDataset(t, numCol("id", 1, 2))
	if _, _, err := RemoveDuplicates(ds, []string{"nope"}, KeepFirst); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestDropColumnsIgnoresUnknown(t *testing.T) {
	ds := mustDataset(t, numCol("a", 1), numCol("b", 2))
	out := DropColumns(ds, []string{"b", "nope"})
	if out.Cols() != 1 || !out.HasColumn("a") {
		t.Fatalf("columns = %v, want [a]", out.ColumnNames())
	}
}

func TestDropHighMissing(t *testing.T) {
	ds := mustDataset(t,
		numCol("mostly_gone", nan, nan, nan, 1),
		numCol("fine", 1, 2, 3, 4),
	)
	out, dropped := DropHighMissing(ds, 0.5)
	if len(dropped) != 1 || dropped[0] != "mostly_gone" {
		t.Fatalf("dropped = %v, want [mostly_gone]", dropped)
	}
	if out.Cols() != 1 {
		t.Fatalf("cols = %d, want 1", out.Cols())
	}
}

func TestNormalizeText(t *testing.T) {
	ds := mustDataset(t, textCol("note", "  Hello   World! 42 ", "ok"))
	out, err := NormalizeText(ds, []string{"note"}, TextCleanOptions{
		CollapseWhitespace: true,
		Lowercase:          true,
		StripSpecial:       true,
		StripDigits:        true,
		TrimSpace:          true,
	})
	if err != nil {
		t.Fatalf("NormalizeText: %v", err)
	}
	col, _ := out.Column("note")
	if s, _ := col.Values[0].Text(); s != "hello world" {
		t.Fatalf("cleaned = %q, want %q", s, "hello world")
	}
}

func TestNormalizeTextRejectsNonText(t *testing.T) {
	ds := mustDataset(t, numCol("n", 1))
	if _, err := NormalizeText(ds, []string{"n"}, TextCleanOptions{Lowercase: true}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestRenameColumns(t *testing.T) {
	ds := mustDataset(t, numCol("a", 1), numCol("b", 2))
	out, err := RenameColumns(ds, map[string]string{"a": "x", "missing": "y"})
	if err != nil {
		t.Fatalf("RenameColumns: %v", err)
	}
	if names := out.ColumnNames(); names[0] != "x" || names[1] != "b" {
		t.Fatalf("names = %v, want [x b]", names)
	}
}

func TestRenameColumnsCollision(t *testing.T) {
	ds := mustDataset(t, numCol("a", 1), numCol("b", 2))
	if _, err := RenameColumns(ds, map[string]string{"a": "b"}); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestFilterRows(t *testing.T) {
	ds := mustDataset(t, numCol("age", 10, 30, nan, 50))
	out, removed, err := FilterRows(ds, "age", ">=", "30")
	if err != nil {
		t.Fatalf("FilterRows: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2 (the low row and the missing row)", removed)
	}
	if got := colFloats(t, out, "age"); len(got) != 2 || got[0] != 30 || got[1] != 50 {
		t.Fatalf("kept ages = %v, want [30 50]", got)
	}
}

func TestFilterRowsTextComparison(t *testing.T) {
	ds := mustDataset(t, textCol("city", "berlin", "oslo", "berlin"))
	out, _, err := FilterRows(ds, "city", "==", "berlin")
	if err != nil {
		t.Fatalf("FilterRows: %v", err)
	}
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
}

func TestFilterRowsBadOperator(t *testing.T) {
	ds := mustDataset(t, numCol("a", 1))
	if _, _, err := FilterRows(ds, "a", "~=", "1"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}
