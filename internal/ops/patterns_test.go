package ops

import (
	"errors"
	"testing"
)

func TestAnalyzePatternsEmailColumn(t *testing.T) {
	ds := mustDataset(t, textCol("contact",
		"ann@example.com", "bob@mail.org", "not an email", "cal@web.io",
	))
	rep, err := AnalyzePatterns(ds, "contact")
	if err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	m, ok := rep.Matches["email"]
	if !ok || m.Count != 3 {
		t.Fatalf("email match = %+v, want count 3", m)
	}
	if m.Percentage != 75 {
		t.Fatalf("email percentage = %v, want 75", m.Percentage)
	}
	if rep.TotalValues != 4 || rep.UniqueValues != 4 {
		t.Fatalf("totals = %d/%d, want 4/4", rep.TotalValues, rep.UniqueValues)
	}
}

func TestAnalyzePatternsFormattingIssues(t *testing.T) {
	ds := mustDataset(t, textCol("name", " ann", "b  ob", "café"))
	rep, err := AnalyzePatterns(ds, "name")
	if err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	want := []string{
		"Leading/trailing whitespace detected",
		"Multiple consecutive spaces detected",
		"Non-ASCII characters detected",
	}
	if len(rep.Issues) != len(want) {
		t.Fatalf("issues = %v, want %v", rep.Issues, want)
	}
	for i, issue := range want {
		if rep.Issues[i] != issue {
			t.Fatalf("issues[%d] = %q, want %q", i, rep.Issues[i], issue)
		}
	}
}

func TestAnalyzePatternsConsistency(t *testing.T) {
	ds := mustDataset(t, textCol("code", "AB12", "CD34", "EF56", "GH78"))
	rep, err := AnalyzePatterns(ds, "code")
	if err != nil {
		t.Fatalf("AnalyzePatterns: %v", err)
	}
	// One length bucket across four values.
	if rep.ConsistencyScore != 75 {
		t.Fatalf("consistency = %v, want 75", rep.ConsistencyScore)
	}
	if m := rep.Matches["alphanumeric"]; m.Count != 4 {
		t.Fatalf("alphanumeric match = %+v, want count 4", m)
	}
}

func TestAnalyzePatternsRejectsNumericColumn(t *testing.T) {
	ds := mustDataset(t, numCol("v", 1, 2, 3))
	if _, err := AnalyzePatterns(ds, "v"); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	if _, err := AnalyzePatterns(ds, "nope"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("err = %v, want ErrUnknownColumn", err)
	}
}
