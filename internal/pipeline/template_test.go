package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTemplateApply(t *testing.T) {
	tmpl := NewTemplate("test", "")
	tmpl.AddStep(OpRemoveDuplicates, nil)
	tmpl.AddStep(OpFillNA, Params{"value": "0"})

	ds := mustDataset(t,
		numCol("v", 1, 1, nan),
	)
	out, log := tmpl.Apply(ds)
	if out.Rows() != 2 {
		t.Fatalf("rows = %d, want 2", out.Rows())
	}
	if out.MissingCells() != 0 {
		t.Fatalf("missing cells = %d, want 0 after fill", out.MissingCells())
	}
	if len(log) != 2 {
		t.Fatalf("log = %v, want 2 entries", log)
	}
}

func TestTemplateApplyContinuesPastErrors(t *testing.T) {
	tmpl := NewTemplate("test", "")
	tmpl.AddStep(OpDropColumns, Params{"columns": []string{"X"}})
	tmpl.AddStep(OpRemoveDuplicates, nil)

	ds := mustDataset(t, numCol("v", 1, 1))
	out, log := tmpl.Apply(ds)
	if out.Rows() != 1 {
		t.Fatalf("rows = %d, want 1 (later step still ran)", out.Rows())
	}
	if !strings.HasPrefix(log[0], "Error in drop_columns") {
		t.Fatalf("log[0] = %q, want an error line", log[0])
	}
}

func TestTemplateYAMLRoundTrip(t *testing.T) {
	tmpl := NewTemplate("yaml", "round trip")
	tmpl.AddStep(OpDropHighMissing, Params{"threshold": 0.5})
	path := filepath.Join(t.TempDir(), "tmpl.yaml")
	if err := SaveTemplate(tmpl, path); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	got, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if got.Name != "yaml" || len(got.Steps) != 1 {
		t.Fatalf("loaded = %+v, want the saved template", got)
	}
	if got.Steps[0].Op != OpDropHighMissing {
		t.Fatalf("step op = %q, want drop_high_missing", got.Steps[0].Op)
	}
	// YAML gives numbers back as typed values the step can read.
	if got.Steps[0].Parameters.float("threshold", 0) != 0.5 {
		t.Fatalf("threshold = %v, want 0.5", got.Steps[0].Parameters["threshold"])
	}
}

func TestLoadTemplateRejectsNameless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("steps: []\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadTemplate(path); err == nil {
		t.Fatal("expected an error for a template without a name")
	}
}

func TestPredefinedTemplates(t *testing.T) {
	pre := PredefinedTemplates()
	for _, name := range []string{"basic", "standard", "text", "numeric"} {
		tmpl, ok := pre[name]
		if !ok {
			t.Fatalf("predefined template %q missing", name)
		}
		if len(tmpl.Steps) == 0 {
			t.Fatalf("template %q has no steps", name)
		}
	}
}
