package pipeline

import (
	"math"
	"strings"
	"testing"

	"github.com/datamend/datamend-cli/internal/dataset"
)

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

var nan = math.NaN()

func TestExecuteFailureIsolation(t *testing.T) {
	p := NewPipeline("test", "")
	p.AddStep("Dedupe", OpRemoveDuplicates, nil)
	p.AddStep("Drop X", OpDropColumns, Params{"columns": []string{"X"}})

	ds := mustDataset(t,
		numCol("id", 1, 1, 2),
		textCol("name", "a", "a", "b"),
	)
	out, rep := p.Execute(ds)

	if rep.TotalSteps != 2 || rep.SuccessfulSteps != 1 || rep.FailedSteps != 1 {
		t.Fatalf("report = %d/%d/%d, want 2 total, 1 ok, 1 failed",
			rep.TotalSteps, rep.SuccessfulSteps, rep.FailedSteps)
	}
	// The successful step's effect is retained.
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2 after the dedupe step", out.Rows())
	}
	// The failing step left the columns alone.
	if out.Cols() != 2 {
		t.Fatalf("cols = %d, want 2", out.Cols())
	}
	if rep.Log[0].Status != "success" || rep.Log[1].Status != "error" {
		t.Fatalf("log statuses = %q %q, want success error", rep.Log[0].Status, rep.Log[1].Status)
	}
	if len(rep.Errors) != 1 || rep.Errors[0].Step != "Drop X" {
		t.Fatalf("errors = %+v, want one for Drop X", rep.Errors)
	}
	if rep.InputShape.Rows != 3 || rep.OutputShape.Rows != 2 {
		t.Fatalf("shapes = %+v %+v, want 3 rows in, 2 out", rep.InputShape, rep.OutputShape)
	}
}

func TestExecuteUnknownOperation(t *testing.T) {
	p := NewPipeline("test", "")
	p.AddStep("Nope", OpKind("frobnicate"), nil)
	ds := mustDataset(t, numCol("v", 1, 2))
	out, rep := p.Execute(ds)
	if rep.FailedSteps != 1 {
		t.Fatalf("failed = %d, want 1", rep.FailedSteps)
	}
	if !out.Equal(ds) {
		t.Fatal("dataset changed under a failing step")
	}
	if !strings.Contains(rep.Errors[0].Error, "unknown operation") {
		t.Fatalf("error = %q, want mention of the unknown operation", rep.Errors[0].Error)
	}
}

func TestExecuteHistoryBounded(t *testing.T) {
	p := NewPipeline("test", "")
	p.AddStep("Dedupe", OpRemoveDuplicates, nil)
	ds := mustDataset(t, numCol("v", 1, 2))
	for i := 0; i < 12; i++ {
		p.Execute(ds)
	}
	if len(p.History) != maxExecutionHistory {
		t.Fatalf("history length = %d, want %d", len(p.History), maxExecutionHistory)
	}
}

func TestApplyOpEncodeOneHot(t *testing.T) {
	ds := mustDataset(t, textCol("c", "a", "b", "a"))
	out, summary, err := ApplyOp(ds, OpEncode, Params{
		"type":       "onehot",
		"columns":    []string{"c"},
		"drop_first": false,
	})
	if err != nil {
		t.Fatalf("ApplyOp: %v", err)
	}
	if !out.HasColumn("c_a") || !out.HasColumn("c_b") {
		t.Fatalf("columns = %v, want c_a and c_b", out.ColumnNames())
	}
	if summary == "" {
		t.Fatal("empty summary")
	}
}

func TestApplyOpImputeDefaultsToMean(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, nan, 3))
	out, _, err := ApplyOp(ds, OpImpute, Params{"column": "v"})
	if err != nil {
		t.Fatalf("ApplyOp: %v", err)
	}
	col, _ := out.Column("v")
	if f, _ := col.Values[1].Float(); f != 2 {
		t.Fatalf("imputed = %v, want 2", f)
	}
}

func TestApplyOpParamsSurviveJSONTypes(t *testing.T) {
	// JSON decodes numbers to float64; the step must still read them.
	ds := mustDataset(t, numCol("v", 1, 2, 3, 4, 5, 100))
	out, _, err := ApplyOp(ds, OpRemoveOutliers, Params{
		"column":    "v",
		"method":    "iqr",
		"threshold": float64(1.5),
	})
	if err != nil {
		t.Fatalf("ApplyOp: %v", err)
	}
	if out.Rows() != 5 {
		t.Fatalf("rows = %d, want 5 after removing the outlier", out.Rows())
	}
}

func TestApplyOpMissingRequiredColumn(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1))
	if _, _, err := ApplyOp(ds, OpImpute, Params{}); err == nil {
		t.Fatal("expected an error for a missing column parameter")
	}
}

func TestKnownOpsCoversHandlers(t *testing.T) {
	known := KnownOps()
	if len(known) != len(handlers) {
		t.Fatalf("KnownOps returned %d ops, handlers has %d", len(known), len(handlers))
	}
	for _, op := range known {
		if _, ok := handlers[op]; !ok {
			t.Fatalf("op %q has no handler", op)
		}
	}
}

func TestAddRemoveReorderSteps(t *testing.T) {
	p := NewPipeline("edit", "")
	a := p.AddStep("a", OpRemoveDuplicates, nil)
	b := p.AddStep("b", OpAutoClean, nil)
	c := p.AddStep("c", OpWinsorize, Params{"column": "v"})

	p.ReorderSteps([]string{c.ID, a.ID, b.ID})
	if p.Steps[0].Name != "c" || p.Steps[1].Name != "a" || p.Steps[2].Name != "b" {
		t.Fatalf("order = %s %s %s, want c a b", p.Steps[0].Name, p.Steps[1].Name, p.Steps[2].Name)
	}

	if !p.RemoveStep(b.ID) {
		t.Fatal("RemoveStep returned false for an existing step")
	}
	if p.RemoveStep("no-such-id") {
		t.Fatal("RemoveStep returned true for an unknown id")
	}
	if len(p.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(p.Steps))
	}
}

func TestManagerDuplicateIsDeep(t *testing.T) {
	m := NewManager()
	p := m.Create("orig", "desc")
	p.AddStep("step", OpImpute, Params{"column": "v", "method": "mean"})

	dup, err := m.Duplicate(p.ID, "copy")
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == p.ID {
		t.Fatal("duplicate shares the original's id")
	}
	dup.Steps[0].Parameters["method"] = "median"
	if p.Steps[0].Parameters["method"] != "mean" {
		t.Fatal("duplicate's parameters alias the original's")
	}
}

func TestManagerPredefined(t *testing.T) {
	m := NewManager()
	pre := m.Predefined()
	for _, name := range []string{"basic", "ml_prep", "advanced"} {
		p, ok := pre[name]
		if !ok {
			t.Fatalf("predefined %q missing", name)
		}
		if len(p.Steps) == 0 {
			t.Fatalf("predefined %q has no steps", name)
		}
	}
}

func TestManagerListOrder(t *testing.T) {
	m := NewManager()
	m.Create("one", "")
	m.Create("two", "")
	list := m.List()
	if len(list) != 2 {
		t.Fatalf("list = %d entries, want 2", len(list))
	}
	if list[0].Created.After(list[1].Created) {
		t.Fatal("list not ordered by creation time")
	}
}
