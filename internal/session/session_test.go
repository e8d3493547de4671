package session

import (
	"errors"
	"testing"

	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/history"
	"github.com/datamend/datamend-cli/internal/loader"
	"github.com/datamend/datamend-cli/internal/ops"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		dataset.Column{Name: "v", Type: dataset.KindNumeric, Values: []dataset.Value{
			dataset.Num(1), dataset.Num(1), dataset.Num(2),
		}},
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	return ds
}

func TestSessionApplyAndUndo(t *testing.T) {
	s := New(0)
	ds := sampleDataset(t)
	s.Load(ds, &loader.FileInfo{Name: "sample.csv", Rows: 3, Cols: 1})

	deduped, removed, err := ops.RemoveDuplicates(s.Current(), nil, ops.KeepFirst)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	s.Apply("Removed duplicates", deduped)
	if s.Current().Rows() != 2 {
		t.Fatalf("rows = %d, want 2", s.Current().Rows())
	}

	restored, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if restored.Rows() != 3 {
		t.Fatalf("restored rows = %d, want 3", restored.Rows())
	}
	if !s.Current().Equal(ds) {
		t.Fatal("undo did not restore the exact prior state")
	}
}

func TestSessionUndoEmpty(t *testing.T) {
	s := New(0)
	s.Load(sampleDataset(t), nil)
	if _, err := s.Undo(); !errors.Is(err, history.ErrEmpty) {
		t.Fatalf("err = %v, want history.ErrEmpty", err)
	}
}

func TestSessionScoreCaches(t *testing.T) {
	s := New(0)
	s.Load(sampleDataset(t), nil)
	first := s.Score()
	if first != s.Score() {
		t.Fatal("score recomputed without a dataset change")
	}
	deduped, _, err := ops.RemoveDuplicates(s.Current(), nil, ops.KeepFirst)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	s.Apply("dedupe", deduped)
	if first == s.Score() {
		t.Fatal("score cache survived a dataset change")
	}
}

func TestSessionReset(t *testing.T) {
	s := New(0)
	ds := sampleDataset(t)
	s.Load(ds, nil)
	deduped, _, err := ops.RemoveDuplicates(s.Current(), nil, ops.KeepFirst)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	s.Apply("dedupe", deduped)

	s.Reset()
	if !s.Current().Equal(ds) {
		t.Fatal("reset did not restore the original")
	}
	if _, err := s.Undo(); !errors.Is(err, history.ErrEmpty) {
		t.Fatal("reset did not clear history")
	}
}

func TestSessionLoadClearsHistory(t *testing.T) {
	s := New(0)
	s.Load(sampleDataset(t), nil)
	deduped, _, err := ops.RemoveDuplicates(s.Current(), nil, ops.KeepFirst)
	if err != nil {
		t.Fatalf("RemoveDuplicates: %v", err)
	}
	s.Apply("dedupe", deduped)

	s.Load(sampleDataset(t), nil)
	if s.History.Len() != 0 {
		t.Fatalf("history length = %d, want 0 after a fresh load", s.History.Len())
	}
}
