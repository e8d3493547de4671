// Package history is a bounded undo stack of pre-operation dataset
// snapshots.
package history

import (
	"errors"
	"time"

	"github.com/datamend/datamend-cli/internal/dataset"
)

// ErrEmpty signals that there is nothing to undo.
var ErrEmpty = errors.New("nothing to undo")

// DefaultCapacity bounds the stack when the caller does not choose.
const DefaultCapacity = 50

// Entry documents one recorded operation: the snapshot is the dataset
// state immediately before that operation ran.
type Entry struct {
	Operation string
	Snapshot  *dataset.Dataset
	Timestamp time.Time
}

// Tracker is a fixed-capacity undo stack. Pushing beyond capacity
// evicts the oldest entry, so the most recent operations stay
// undoable. Not safe for concurrent use; the host serializes access
// per session.
type Tracker struct {
	entries  []Entry
	capacity int
}

// New returns a tracker with the given capacity; non-positive values
// use DefaultCapacity.
func New(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{capacity: capacity}
}

// Record pushes a snapshot taken before the labeled operation.
func (t *Tracker) Record(operation string, before *dataset.Dataset) {
	if len(t.entries) >= t.capacity {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, Entry{
		Operation: operation,
		Snapshot:  before.Clone(),
		Timestamp: time.Now(),
	})
}

// Undo pops the most recent entry and returns its snapshot. The entry
// is discarded permanently; there is no redo.
func (t *Tracker) Undo() (*dataset.Dataset, error) {
	if len(t.entries) == 0 {
		return nil, ErrEmpty
	}
	last := t.entries[len(t.entries)-1]
	t.entries = t.entries[:len(t.entries)-1]
	return last.Snapshot, nil
}

// Len returns the number of undoable operations.
func (t *Tracker) Len() int { return len(t.entries) }

// Entries lists the recorded operations oldest-first, without the
// snapshots.
func (t *Tracker) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = Entry{Operation: e.Operation, Timestamp: e.Timestamp}
	}
	return out
}

// Clear discards all history.
func (t *Tracker) Clear() { t.entries = nil }
