package types

import (
	"context"
	"time"
)

// HistoryEvent classifies an assignment state change.
type HistoryEvent string

// History event kinds.
const (
	EventAssigned          HistoryEvent = "ASSIGNED"
	EventUnassigned        HistoryEvent = "UNASSIGNED"
	EventAutoAssigned      HistoryEvent = "AUTO_ASSIGNED"
	EventTransferRequested HistoryEvent = "TRANSFER_REQUESTED"
	EventTransferApproved  HistoryEvent = "TRANSFER_APPROVED"
	EventTransferRejected  HistoryEvent = "TRANSFER_REJECTED"
)

// HistoryEntry is an append-only audit record of an assignment state change.
//
// Entries are immutable once written and retained for compliance. The engine
// emits them to a HistorySink; sink failures are reported but never roll
// back the change that produced the entry.
type HistoryEntry struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// CaseID is the case the change applies to.
	CaseID string `json:"case_id"`

	// WorkerID is the worker the change applies to. For transfer events this
	// is the target worker; FromWorkerID carries the source.
	WorkerID string `json:"worker_id,omitempty"`

	// FromWorkerID is the previous PRIMARY owner for transfer events.
	FromWorkerID string `json:"from_worker_id,omitempty"`

	// Event classifies the change.
	Event HistoryEvent `json:"event"`

	// Role is the assignment role involved, when applicable.
	Role Role `json:"role,omitempty"`

	// Actor performed the change.
	Actor Actor `json:"actor"`

	// At is when the change was committed.
	At time.Time `json:"at"`

	// Notes carries operation-specific detail: unassignment reasons,
	// transfer resolution notes, overflow markers.
	Notes string `json:"notes,omitempty"`
}

// HistorySink receives history entries emitted by the engine.
//
// Append is called after the corresponding state change has committed, from
// inside the per-case critical section. Implementations should return
// quickly; slow delivery belongs in a buffered or asynchronous sink. An
// Append error is logged and counted but does not fail the operation.
type HistorySink interface {
	Append(ctx context.Context, entry HistoryEntry) error
}
