// Package transfer implements the two-phase transfer workflow: a PENDING
// request filed by one actor, resolved (approved, rejected, or cancelled) by
// another operation later.
//
// The workflow owns the request records and the one-pending-per-case rule;
// the assignment store owns the actual ownership swap. Approval re-validates
// against live state, so a request that went stale between filing and
// approval never moves an assignment.
package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legalops/caseload/internal/store"
	"github.com/legalops/caseload/types"
)

// AssignmentStore is the slice of the store the workflow needs.
type AssignmentStore interface {
	ActivePrimary(caseID string) (types.Assignment, bool, error)
	TransferPrimary(ctx context.Context, p store.TransferParams) (types.Assignment, error)
	WithCaseLock(ctx context.Context, caseID string, fn func() error) error
	RecordEvent(ctx context.Context, entry types.HistoryEntry)
}

type request struct {
	mu  sync.Mutex
	req types.TransferRequest
}

// Workflow manages transfer requests over an assignment store.
type Workflow struct {
	store   AssignmentStore
	logger  types.Logger
	metrics types.TransferMetrics
	now     func() time.Time

	mu            sync.Mutex
	byID          map[string]*request
	pendingByCase map[string]string
}

// New creates a Workflow over the given store.
func New(s AssignmentStore) *Workflow {
	return &Workflow{
		store:         s,
		logger:        nopLogger{},
		metrics:       nopTransferMetrics{},
		now:           time.Now,
		byID:          make(map[string]*request),
		pendingByCase: make(map[string]string),
	}
}

// SetLogger replaces the workflow's logger.
func (w *Workflow) SetLogger(logger types.Logger) {
	if logger != nil {
		w.logger = logger
	}
}

// SetMetrics replaces the workflow's metrics collector.
func (w *Workflow) SetMetrics(m types.TransferMetrics) {
	if m != nil {
		w.metrics = m
	}
}

// SetClock overrides the workflow's time source.
func (w *Workflow) SetClock(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// Request files a PENDING transfer request.
//
// Validation and slot reservation run inside the case's critical section, so
// filing serializes against assignment mutations on the same case and can
// fail with ErrOperationTimedOut under contention. Fails with
// ErrInvalidTransfer when source and target are the same worker or when the
// source does not hold the case's ACTIVE PRIMARY assignment, and with
// ErrConflictingTransfer when the case already has a PENDING request.
// Filing changes no assignment.
func (w *Workflow) Request(ctx context.Context, caseID, fromWorkerID, toWorkerID string, actor types.Actor) (types.TransferRequest, error) {
	if fromWorkerID == toWorkerID {
		return types.TransferRequest{}, fmt.Errorf("source and target are both %s: %w", fromWorkerID, types.ErrInvalidTransfer)
	}

	r := &request{req: types.TransferRequest{
		ID:           uuid.NewString(),
		CaseID:       caseID,
		FromWorkerID: fromWorkerID,
		ToWorkerID:   toWorkerID,
		RequestedBy:  actor,
		Status:       types.TransferPending,
		RequestedAt:  w.now(),
	}}
	// Snapshot before the record is published; once it is in byID a
	// concurrent resolution may mutate it.
	filed := r.req

	// Validation and pending-slot reservation run inside the case's critical
	// section so the primary cannot move between the check and the insert.
	err := w.store.WithCaseLock(ctx, caseID, func() error {
		current, ok, err := w.store.ActivePrimary(caseID)
		if err != nil {
			return err
		}
		if !ok || current.WorkerID != fromWorkerID {
			return fmt.Errorf("worker %s does not hold the primary assignment on case %s: %w",
				fromWorkerID, caseID, types.ErrInvalidTransfer)
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if pendingID, exists := w.pendingByCase[caseID]; exists {
			return fmt.Errorf("case %s already has pending request %s: %w",
				caseID, pendingID, types.ErrConflictingTransfer)
		}
		w.byID[r.req.ID] = r
		w.pendingByCase[caseID] = r.req.ID
		return nil
	})
	if err != nil {
		return types.TransferRequest{}, err
	}

	w.metrics.RecordTransferRequested()
	w.store.RecordEvent(ctx, types.HistoryEntry{
		CaseID:       caseID,
		WorkerID:     toWorkerID,
		FromWorkerID: fromWorkerID,
		Event:        types.EventTransferRequested,
		Actor:        actor,
	})
	w.logger.Info("transfer requested", "request_id", filed.ID, "case_id", caseID,
		"from_worker_id", fromWorkerID, "to_worker_id", toWorkerID)

	return filed, nil
}

// Approve resolves a PENDING request by moving the PRIMARY assignment.
//
// The swap is re-validated against live state: when the source no longer
// holds the primary, Approve fails with ErrStaleTransfer and the request
// stays PENDING so it can still be rejected or cancelled. A request already
// in a terminal state fails with ErrTransferResolved.
func (w *Workflow) Approve(ctx context.Context, requestID string, actor types.Actor, notes string) (types.Assignment, error) {
	r, err := w.get(requestID)
	if err != nil {
		return types.Assignment{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.req.Status.Terminal() {
		return types.Assignment{}, fmt.Errorf("request %s is %s: %w", requestID, r.req.Status, types.ErrTransferResolved)
	}

	asgn, err := w.store.TransferPrimary(ctx, store.TransferParams{
		CaseID:       r.req.CaseID,
		FromWorkerID: r.req.FromWorkerID,
		ToWorkerID:   r.req.ToWorkerID,
		Actor:        actor,
		Notes:        notes,
	})
	if err != nil {
		w.metrics.RecordStaleTransfer()
		w.logger.Warn("transfer approval failed", "request_id", requestID, "case_id", r.req.CaseID, "error", err)
		return types.Assignment{}, fmt.Errorf("approve request %s: %w", requestID, err)
	}

	w.resolve(r, types.TransferApproved, notes)
	w.logger.Info("transfer approved", "request_id", requestID, "case_id", r.req.CaseID,
		"to_worker_id", r.req.ToWorkerID)
	return asgn, nil
}

// Reject resolves a PENDING request without touching any assignment.
// A request already in a terminal state fails with ErrTransferResolved.
func (w *Workflow) Reject(ctx context.Context, requestID string, actor types.Actor, notes string) (types.TransferRequest, error) {
	r, err := w.get(requestID)
	if err != nil {
		return types.TransferRequest{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.req.Status.Terminal() {
		return types.TransferRequest{}, fmt.Errorf("request %s is %s: %w", requestID, r.req.Status, types.ErrTransferResolved)
	}

	w.resolve(r, types.TransferRejected, notes)
	w.store.RecordEvent(ctx, types.HistoryEntry{
		CaseID:       r.req.CaseID,
		WorkerID:     r.req.ToWorkerID,
		FromWorkerID: r.req.FromWorkerID,
		Event:        types.EventTransferRejected,
		Actor:        actor,
		Notes:        notes,
	})
	w.logger.Info("transfer rejected", "request_id", requestID, "case_id", r.req.CaseID)
	return r.req, nil
}

// Cancel withdraws a PENDING request. Only the requester may cancel; anyone
// else gets ErrNotRequester. The request resolves to REJECTED with a
// cancellation note.
func (w *Workflow) Cancel(ctx context.Context, requestID string, actor types.Actor) (types.TransferRequest, error) {
	r, err := w.get(requestID)
	if err != nil {
		return types.TransferRequest{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.req.Status.Terminal() {
		return types.TransferRequest{}, fmt.Errorf("request %s is %s: %w", requestID, r.req.Status, types.ErrTransferResolved)
	}
	if actor.ID != r.req.RequestedBy.ID {
		return types.TransferRequest{}, fmt.Errorf("request %s was filed by %s: %w",
			requestID, r.req.RequestedBy.ID, types.ErrNotRequester)
	}

	const note = "cancelled by requester"
	w.resolve(r, types.TransferRejected, note)
	w.store.RecordEvent(ctx, types.HistoryEntry{
		CaseID:       r.req.CaseID,
		WorkerID:     r.req.ToWorkerID,
		FromWorkerID: r.req.FromWorkerID,
		Event:        types.EventTransferRejected,
		Actor:        actor,
		Notes:        note,
	})
	w.logger.Info("transfer cancelled", "request_id", requestID, "case_id", r.req.CaseID)
	return r.req, nil
}

// Pending returns the case's PENDING request, if any.
func (w *Workflow) Pending(caseID string) (types.TransferRequest, bool) {
	w.mu.Lock()
	var r *request
	if id, ok := w.pendingByCase[caseID]; ok {
		r = w.byID[id]
	}
	w.mu.Unlock()
	if r == nil {
		return types.TransferRequest{}, false
	}

	// The request may resolve between the index lookup and taking its lock;
	// re-check so callers never see a half-resolved record.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.req.Status != types.TransferPending {
		return types.TransferRequest{}, false
	}
	return r.req, true
}

// Get returns the request with the given ID.
// Returns ErrTransferNotFound when no such request exists.
func (w *Workflow) Get(requestID string) (types.TransferRequest, error) {
	r, err := w.get(requestID)
	if err != nil {
		return types.TransferRequest{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.req, nil
}

func (w *Workflow) get(requestID string) (*request, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	r, ok := w.byID[requestID]
	if !ok {
		return nil, fmt.Errorf("request %s: %w", requestID, types.ErrTransferNotFound)
	}
	return r, nil
}

// resolve flips the request to a terminal state and frees the case's pending
// slot. Caller holds r.mu.
func (w *Workflow) resolve(r *request, status types.TransferStatus, notes string) {
	now := w.now()
	r.req.Status = status
	r.req.ResolvedAt = &now
	r.req.ResolutionNotes = notes

	w.mu.Lock()
	if w.pendingByCase[r.req.CaseID] == r.req.ID {
		delete(w.pendingByCase, r.req.CaseID)
	}
	w.mu.Unlock()

	w.metrics.RecordTransferResolved(status)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}

type nopTransferMetrics struct{}

func (nopTransferMetrics) RecordTransferRequested()                      {}
func (nopTransferMetrics) RecordTransferResolved(types.TransferStatus)   {}
func (nopTransferMetrics) RecordStaleTransfer()                          {}
