package history

import (
	"context"
	"sync"

	"github.com/legalops/caseload/types"
)

// Nop is a HistorySink that discards entries. Used when no external audit
// feed is configured; the store's in-memory log still holds every entry.
type Nop struct{}

// NewNop creates a discarding sink.
func NewNop() Nop { return Nop{} }

// Append discards the entry.
func (Nop) Append(_ context.Context, _ types.HistoryEntry) error { return nil }

// Recorder is a HistorySink that captures entries in memory, for tests and
// in-process consumers.
type Recorder struct {
	mu      sync.Mutex
	entries []types.HistoryEntry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Append captures the entry.
func (r *Recorder) Append(_ context.Context, entry types.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of the captured entries in append order.
func (r *Recorder) Entries() []types.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of captured entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
