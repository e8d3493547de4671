package ops

import (
	"strings"
	"testing"

	"github.com/datamend/datamend-cli/internal/dataset"
)

func TestAutoClean(t *testing.T) {
	ds := mustDataset(t,
		numCol("id", 1, 1, 2, 3),
		textCol("name", " a ", " a ", "b  c", "d"),
		numCol("ghost", nan, nan, nan, nan),
		textCol("created_date", "2024-01-01", "2024-01-01", "2024-02-02", "2024-03-03"),
	)
	out, log := AutoClean(ds, nil)

	if out.Rows() != 3 {
		t.Fatalf("rows = %d, want 3 after deduplication", out.Rows())
	}
	if out.HasColumn("ghost") {
		t.Fatal("fully-missing column survived")
	}
	col, _ := out.Column("name")
	if s, _ := col.Values[0].Text(); s != "a" {
		t.Fatalf("name[0] = %q, want trimmed %q", s, "a")
	}
	dateCol, _ := out.Column("created_date")
	if dateCol.Type != dataset.KindTime {
		t.Fatalf("created_date type = %v, want time", dateCol.Type)
	}
	if len(log) != 4 {
		t.Fatalf("log = %v, want 4 entries", log)
	}
}

func TestAutoCleanNoChanges(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, 2, 3))
	out, log := AutoClean(ds, nil)
	if len(log) != 0 {
		t.Fatalf("log = %v, want empty for a clean dataset", log)
	}
	if !out.Equal(ds) {
		t.Fatal("clean dataset changed")
	}
}

func TestNameBasedTimestampClassifier(t *testing.T) {
	if !NameBasedTimestampClassifier(dataset.Column{Name: "Order_Date"}) {
		t.Fatal("Order_Date not classified as timestamp")
	}
	if NameBasedTimestampClassifier(dataset.Column{Name: "amount"}) {
		t.Fatal("amount classified as timestamp")
	}
}

func TestAutoCleanCustomClassifier(t *testing.T) {
	ds := mustDataset(t, textCol("when", "2024-05-05", "2024-06-06"))
	none := func(dataset.Column) bool { return false }
	out, log := AutoClean(ds, none)
	col, _ := out.Column("when")
	if col.Type != dataset.KindText {
		t.Fatalf("type = %v, want text (classifier opted out)", col.Type)
	}
	for _, l := range log {
		if strings.Contains(l, "timestamp") {
			t.Fatalf("unexpected timestamp step in %v", log)
		}
	}
}
