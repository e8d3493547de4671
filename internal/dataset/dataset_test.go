package dataset

import (
	"testing"
	"time"
)

func twoCol(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New(
		Column{Name: "a", Type: KindNumeric, Values: []Value{Num(1), Num(2), Num(3)}},
		Column{Name: "b", Type: KindText, Values: []Value{Str("x"), Missing(), Str("z")}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewValidation(t *testing.T) {
	if _, err := New(
		Column{Name: "a", Type: KindNumeric, Values: []Value{Num(1)}},
		Column{Name: "a", Type: KindNumeric, Values: []Value{Num(2)}},
	); err == nil {
		t.Fatal("duplicate column names accepted")
	}
	if _, err := New(
		Column{Name: "a", Type: KindNumeric, Values: []Value{Num(1)}},
		Column{Name: "b", Type: KindNumeric, Values: []Value{Num(1), Num(2)}},
	); err == nil {
		t.Fatal("ragged columns accepted")
	}
}

func TestCloneSharesUntilWrite(t *testing.T) {
	ds := twoCol(t)
	clone := ds.Clone()
	if !clone.Equal(ds) {
		t.Fatal("clone differs from original")
	}

	// Replacing a column in the clone must not touch the original.
	updated := clone.WithColumn(Column{Name: "a", Type: KindNumeric, Values: []Value{Num(9), Num(9), Num(9)}})
	col, _ := ds.Column("a")
	if f, _ := col.Values[0].Float(); f != 1 {
		t.Fatalf("original a[0] = %v, want 1", f)
	}
	newCol, _ := updated.Column("a")
	if f, _ := newCol.Values[0].Float(); f != 9 {
		t.Fatalf("updated a[0] = %v, want 9", f)
	}
}

func TestWithColumnAppendsUnknownName(t *testing.T) {
	ds := twoCol(t)
	out := ds.WithColumn(Column{Name: "c", Type: KindNumeric, Values: []Value{Num(0), Num(0), Num(0)}})
	if out.Cols() != 3 || !out.HasColumn("c") {
		t.Fatalf("columns = %v, want a b c", out.ColumnNames())
	}
	if ds.Cols() != 2 {
		t.Fatal("original gained a column")
	}
}

func TestSelectRows(t *testing.T) {
	ds := twoCol(t)
	out := ds.SelectRows([]bool{true, false, true})
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
	col, _ := out.Column("a")
	if f, _ := col.Values[1].Float(); f != 3 {
		t.Fatalf("a[1] = %v, want 3", f)
	}
}

func TestRowKeyDistinguishesMissing(t *testing.T) {
	ds, err := New(
		Column{Name: "a", Type: KindText, Values: []Value{Str(""), Missing()}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ds.RowKey(0, nil) == ds.RowKey(1, nil) {
		t.Fatal("empty string and missing share a row key")
	}
}

func TestMissingCells(t *testing.T) {
	ds := twoCol(t)
	if got := ds.MissingCells(); got != 1 {
		t.Fatalf("MissingCells = %d, want 1", got)
	}
	col, _ := ds.Column("b")
	if got := col.MissingCount(); got != 1 {
		t.Fatalf("MissingCount = %d, want 1", got)
	}
}

func TestNumericAndTextColumns(t *testing.T) {
	ds := twoCol(t)
	if got := ds.NumericColumns(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("NumericColumns = %v, want [a]", got)
	}
	if got := ds.TextColumns(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("TextColumns = %v, want [b]", got)
	}
}

func TestCoerce(t *testing.T) {
	if v := Coerce(Str("42"), KindNumeric); v.IsMissing() {
		t.Fatal("parsable number coerced to missing")
	}
	if v := Coerce(Str("nope"), KindNumeric); !v.IsMissing() {
		t.Fatal("unparsable number did not become missing")
	}
	if v := Coerce(Bool(true), KindNumeric); v.IsMissing() {
		t.Fatal("bool to numeric failed")
	} else if f, _ := v.Float(); f != 1 {
		t.Fatalf("true = %v, want 1", f)
	}
	if v := Coerce(Str("2024-06-01"), KindTime); v.IsMissing() {
		t.Fatal("date string did not parse")
	} else if ts, _ := v.TimeVal(); ts.Month() != time.June {
		t.Fatalf("month = %v, want June", ts.Month())
	}
	if v := Coerce(Str("yes"), KindBool); v.IsMissing() {
		t.Fatal("yes did not parse as bool")
	}
}

func TestValueEqualAndKey(t *testing.T) {
	if !Num(1.5).Equal(Num(1.5)) {
		t.Fatal("equal numbers compare unequal")
	}
	if Num(1).Equal(Str("1")) {
		t.Fatal("number equals its text rendering")
	}
	if !Missing().Equal(Missing()) {
		t.Fatal("missing does not equal missing")
	}
}
