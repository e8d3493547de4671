// Package session holds the per-user working state the UI layer and
// the CLI operate on. A session is single-caller by contract: no
// internal locking, the host serializes access per session.
package session

import (
	"github.com/datamend/datamend-cli/internal/dataset"
	"github.com/datamend/datamend-cli/internal/history"
	"github.com/datamend/datamend-cli/internal/loader"
	"github.com/datamend/datamend-cli/internal/pipeline"
	"github.com/datamend/datamend-cli/internal/quality"
)

// Session is one user's working state: the current dataset, the
// original as loaded, undo history, and the pipeline set.
type Session struct {
	current   *dataset.Dataset
	original  *dataset.Dataset
	fileInfo  *loader.FileInfo
	lastScore *quality.Report

	History   *history.Tracker
	Pipelines *pipeline.Manager
}

// New creates an empty session with the given undo capacity.
func New(historyCapacity int) *Session {
	return &Session{
		History:   history.New(historyCapacity),
		Pipelines: pipeline.NewManager(),
	}
}

// Load installs a dataset as both current and original state and
// clears prior history.
func (s *Session) Load(ds *dataset.Dataset, info *loader.FileInfo) {
	s.current = ds
	s.original = ds.Clone()
	s.fileInfo = info
	s.lastScore = nil
	s.History.Clear()
}

// Current returns the working dataset, or nil before Load.
func (s *Session) Current() *dataset.Dataset { return s.current }

// Original returns the dataset as loaded.
func (s *Session) Original() *dataset.Dataset { return s.original }

// FileInfo returns the loaded file's metadata.
func (s *Session) FileInfo() *loader.FileInfo { return s.fileInfo }

// Apply records the pre-operation snapshot in history and installs the
// result as the current dataset.
func (s *Session) Apply(label string, result *dataset.Dataset) {
	s.History.Record(label, s.current)
	s.current = result
	s.lastScore = nil
}

// Undo restores the dataset state prior to the most recent Apply.
func (s *Session) Undo() (*dataset.Dataset, error) {
	ds, err := s.History.Undo()
	if err != nil {
		return nil, err
	}
	s.current = ds
	s.lastScore = nil
	return ds, nil
}

// Score returns a quality report for the current dataset, reusing the
// cached one until the dataset changes.
func (s *Session) Score() *quality.Report {
	if s.lastScore == nil {
		s.lastScore = quality.Score(s.current)
	}
	return s.lastScore
}

// Reset restores the original dataset and clears history.
func (s *Session) Reset() {
	if s.original != nil {
		s.current = s.original.Clone()
	}
	s.lastScore = nil
	s.History.Clear()
}
