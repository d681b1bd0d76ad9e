// Package store owns the authoritative set of active and historical case
// assignments and enforces the single-primary-owner invariant.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/legalops/caseload/types"
)

// Config holds store tuning parameters.
type Config struct {
	// Weights is the role weighting policy for load counters.
	Weights types.RoleWeights

	// LockTimeout bounds a single wait for the per-case critical section.
	LockTimeout time.Duration

	// LockRetries is how many times a timed-out lock acquisition is retried
	// before the operation surfaces ErrOperationTimedOut.
	LockRetries int
}

// Store is the authoritative in-memory assignment set.
//
// Concurrency protocol:
//   - Every mutating operation for a case enters that case's critical
//     section (a keyed token lock), so mutations on one case serialize while
//     different cases proceed in parallel.
//   - Worker load counters are mutated under per-worker locks acquired after
//     the case lock, in ascending worker-id order when an operation touches
//     two workers. The fixed order prevents deadlock between two transfers
//     that swap two workers' cases simultaneously.
//   - An inner RWMutex guards the index maps; readers take the read side and
//     therefore always observe fully applied operations, never a removed
//     primary without its replacement.
type Store struct {
	cfg Config

	caseLocks   *xsync.Map[string, chan struct{}]
	workerLocks *xsync.Map[string, *sync.Mutex]

	mu       sync.RWMutex
	byCase   map[string][]*types.Assignment
	byWorker map[string][]*types.Assignment
	loads    map[string]*loadCounter
	history  map[string][]types.HistoryEntry

	sink    types.HistorySink
	logger  types.Logger
	metrics types.StoreMetrics
	now     func() time.Time
}

type loadCounter struct {
	activeCount int
	weighted    float64
}

// AssignParams are the inputs for Assign.
type AssignParams struct {
	CaseID   string
	WorkerID string
	Role     types.Role
	Actor    types.Actor

	// Auto marks a rule-driven assignment (recorded as AUTO_ASSIGNED).
	Auto bool

	// Overflow marks an auto-assignment placed over capacity.
	Overflow bool
}

// UnassignParams are the inputs for Unassign.
type UnassignParams struct {
	CaseID   string
	WorkerID string
	Reason   string
	Actor    types.Actor
}

// TransferParams are the inputs for TransferPrimary.
type TransferParams struct {
	CaseID       string
	FromWorkerID string
	ToWorkerID   string
	Actor        types.Actor
	Notes        string
}

// New creates a store with the given configuration.
//
// Optional dependencies default to no-ops; use SetLogger, SetMetrics and
// SetSink to wire real implementations before serving traffic.
func New(cfg Config) *Store {
	if cfg.Weights == (types.RoleWeights{}) {
		cfg.Weights = types.DefaultRoleWeights()
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 5 * time.Second
	}
	if cfg.LockRetries < 0 {
		cfg.LockRetries = 0
	}

	return &Store{
		cfg:         cfg,
		caseLocks:   xsync.NewMap[string, chan struct{}](),
		workerLocks: xsync.NewMap[string, *sync.Mutex](),
		byCase:      make(map[string][]*types.Assignment),
		byWorker:    make(map[string][]*types.Assignment),
		loads:       make(map[string]*loadCounter),
		history:     make(map[string][]types.HistoryEntry),
		sink:        nopSink{},
		logger:      nopLogger{},
		metrics:     nopStoreMetrics{},
		now:         time.Now,
	}
}

// SetLogger sets the logger used for invariant violations and sink failures.
func (s *Store) SetLogger(logger types.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMetrics sets the metrics collector.
func (s *Store) SetMetrics(m types.StoreMetrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetSink sets the history sink. Entries are still kept in the store's own
// append-only log regardless of the sink.
func (s *Store) SetSink(sink types.HistorySink) {
	if sink != nil {
		s.sink = sink
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Weights returns the role weighting policy in effect.
func (s *Store) Weights() types.RoleWeights {
	return s.cfg.Weights
}

// Assign creates an ACTIVE assignment.
//
// For RolePrimary it fails with ErrAlreadyAssigned when the case already has
// an active primary owner; the store never silently replaces one. For any
// role it fails with ErrDuplicateAssignment when the worker already holds an
// active assignment on the case.
//
// On success, atomically: the assignment row exists, the worker's load
// counter reflects it, and a history entry has been recorded.
func (s *Store) Assign(ctx context.Context, p AssignParams) (types.Assignment, error) {
	if !p.Role.Valid() {
		return types.Assignment{}, fmt.Errorf("%w: unknown role %q", types.ErrInvalidConfig, p.Role)
	}

	release, err := s.acquireCase(ctx, p.CaseID)
	if err != nil {
		return types.Assignment{}, err
	}
	defer release()

	if p.Role == types.RolePrimary {
		if _, ok, perr := s.lookupActivePrimary(p.CaseID); perr != nil {
			return types.Assignment{}, perr
		} else if ok {
			return types.Assignment{}, fmt.Errorf("case %s: %w", p.CaseID, types.ErrAlreadyAssigned)
		}
	}
	if s.hasActiveAssignment(p.CaseID, p.WorkerID) {
		return types.Assignment{}, fmt.Errorf("case %s worker %s: %w", p.CaseID, p.WorkerID, types.ErrDuplicateAssignment)
	}

	asgn := &types.Assignment{
		ID:         uuid.NewString(),
		CaseID:     p.CaseID,
		WorkerID:   p.WorkerID,
		Role:       p.Role,
		Status:     types.StatusActive,
		AssignedAt: s.now(),
		AssignedBy: p.Actor,
		Overflow:   p.Overflow,
	}

	s.withWorkerLocks([]string{p.WorkerID}, func() {
		s.mu.Lock()
		s.byCase[p.CaseID] = append(s.byCase[p.CaseID], asgn)
		s.byWorker[p.WorkerID] = append(s.byWorker[p.WorkerID], asgn)
		s.bumpLoadLocked(p.WorkerID, p.Role, +1)
		s.mu.Unlock()

		s.metrics.SetWorkerLoad(p.WorkerID, s.loadOf(p.WorkerID).WeightedLoad)
	})

	s.metrics.RecordAssignment(p.Role, p.Auto)

	event := types.EventAssigned
	notes := ""
	if p.Auto {
		event = types.EventAutoAssigned
	}
	if p.Overflow {
		notes = "overflow: assigned over capacity"
	}
	s.recordEvent(ctx, types.HistoryEntry{
		CaseID:   p.CaseID,
		WorkerID: p.WorkerID,
		Event:    event,
		Role:     p.Role,
		Actor:    p.Actor,
		Notes:    notes,
	})

	return *asgn, nil
}

// Unassign terminates the worker's ACTIVE assignment on the case.
//
// Fails with ErrNotAssigned when no matching active assignment exists.
// On success, atomically: the assignment status flips to REMOVED with
// UnassignedAt set, the worker's load counter is decremented, and a history
// entry is recorded.
func (s *Store) Unassign(ctx context.Context, p UnassignParams) (types.Assignment, error) {
	release, err := s.acquireCase(ctx, p.CaseID)
	if err != nil {
		return types.Assignment{}, err
	}
	defer release()

	asgn := s.lookupActiveForWorker(p.CaseID, p.WorkerID)
	if asgn == nil {
		return types.Assignment{}, fmt.Errorf("case %s worker %s: %w", p.CaseID, p.WorkerID, types.ErrNotAssigned)
	}

	s.withWorkerLocks([]string{p.WorkerID}, func() {
		s.mu.Lock()
		s.removeLocked(asgn, p.Reason)
		s.mu.Unlock()

		s.metrics.SetWorkerLoad(p.WorkerID, s.loadOf(p.WorkerID).WeightedLoad)
	})

	s.metrics.RecordUnassignment(asgn.Role)
	s.recordEvent(ctx, types.HistoryEntry{
		CaseID:   p.CaseID,
		WorkerID: p.WorkerID,
		Event:    types.EventUnassigned,
		Role:     asgn.Role,
		Actor:    p.Actor,
		Notes:    p.Reason,
	})

	return *asgn, nil
}

// TransferPrimary atomically moves PRIMARY ownership of a case.
//
// Inside one critical section it verifies the source still holds the active
// primary (ErrStaleTransfer otherwise), removes the source assignment,
// removes any active assignment the target already holds on the case
// (a promoted secondary does not stack roles), creates the new primary, and
// adjusts both workers' load counters. Either everything applies or nothing
// does.
func (s *Store) TransferPrimary(ctx context.Context, p TransferParams) (types.Assignment, error) {
	release, err := s.acquireCase(ctx, p.CaseID)
	if err != nil {
		return types.Assignment{}, err
	}
	defer release()

	current, ok, err := s.lookupActivePrimary(p.CaseID)
	if err != nil {
		return types.Assignment{}, err
	}
	if !ok || current.WorkerID != p.FromWorkerID {
		return types.Assignment{}, fmt.Errorf("case %s: %w", p.CaseID, types.ErrStaleTransfer)
	}

	demoted := s.lookupActiveForWorker(p.CaseID, p.ToWorkerID)

	newPrimary := &types.Assignment{
		ID:         uuid.NewString(),
		CaseID:     p.CaseID,
		WorkerID:   p.ToWorkerID,
		Role:       types.RolePrimary,
		Status:     types.StatusActive,
		AssignedAt: s.now(),
		AssignedBy: p.Actor,
	}

	s.withWorkerLocks([]string{p.FromWorkerID, p.ToWorkerID}, func() {
		s.mu.Lock()
		s.removeLocked(current, "transferred")
		if demoted != nil {
			s.removeLocked(demoted, "superseded by transfer")
		}
		s.byCase[p.CaseID] = append(s.byCase[p.CaseID], newPrimary)
		s.byWorker[p.ToWorkerID] = append(s.byWorker[p.ToWorkerID], newPrimary)
		s.bumpLoadLocked(p.ToWorkerID, types.RolePrimary, +1)
		s.mu.Unlock()

		s.metrics.SetWorkerLoad(p.FromWorkerID, s.loadOf(p.FromWorkerID).WeightedLoad)
		s.metrics.SetWorkerLoad(p.ToWorkerID, s.loadOf(p.ToWorkerID).WeightedLoad)
	})

	s.metrics.RecordAssignment(types.RolePrimary, false)
	s.metrics.RecordUnassignment(types.RolePrimary)
	s.recordEvent(ctx, types.HistoryEntry{
		CaseID:       p.CaseID,
		WorkerID:     p.ToWorkerID,
		FromWorkerID: p.FromWorkerID,
		Event:        types.EventTransferApproved,
		Role:         types.RolePrimary,
		Actor:        p.Actor,
		Notes:        p.Notes,
	})

	return *newPrimary, nil
}

// ActivePrimary returns the case's active primary assignment, if any.
//
// Returns ErrCorruptState when more than one active primary row exists; that
// means the per-case serialization guarantee was violated and the case's
// operations must halt.
func (s *Store) ActivePrimary(caseID string) (types.Assignment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	asgn, ok, err := s.activePrimaryLocked(caseID)
	if err != nil || !ok {
		return types.Assignment{}, ok, err
	}

	return *asgn, true, nil
}

// ActiveForCase returns the active assignments for a case.
func (s *Store) ActiveForCase(caseID string) []types.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Assignment
	for _, a := range s.byCase[caseID] {
		if a.IsActive() {
			out = append(out, *a)
		}
	}

	return out
}

// ActiveForWorker returns the active assignments held by a worker.
func (s *Store) ActiveForWorker(workerID string) []types.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Assignment
	for _, a := range s.byWorker[workerID] {
		if a.IsActive() {
			out = append(out, *a)
		}
	}

	return out
}

// LoadOf returns the worker's current weighted load. CapacityRemaining is
// zero because the store does not know capacity ceilings; the workload
// calculator fills it in from the worker directory.
func (s *Store) LoadOf(workerID string) types.WeightedLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadOfLocked(workerID)
}

// LoadSnapshot returns every known worker's load computed against a single
// point-in-time view, so batch ranking never mixes before/after states of a
// concurrent mutation.
func (s *Store) LoadSnapshot() map[string]types.WeightedLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]types.WeightedLoad, len(s.loads))
	for id := range s.loads {
		out[id] = s.loadOfLocked(id)
	}

	return out
}

// History returns the append-only history entries for a case, in order.
func (s *Store) History(caseID string) []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[caseID]
	out := make([]types.HistoryEntry, len(entries))
	copy(out, entries)

	return out
}

// RecordEvent appends a history entry on behalf of another component (the
// transfer workflow records TRANSFER_REQUESTED / TRANSFER_REJECTED through
// this). The entry gets an ID and timestamp if missing.
func (s *Store) RecordEvent(ctx context.Context, entry types.HistoryEntry) {
	s.recordEvent(ctx, entry)
}

// WithCaseLock runs fn inside the case's critical section. Used by the
// transfer workflow so request validation and pending-slot reservation
// serialize against assignment mutations on the same case.
func (s *Store) WithCaseLock(ctx context.Context, caseID string, fn func() error) error {
	release, err := s.acquireCase(ctx, caseID)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}

// loadOf re-reads a worker's load taking the read lock. Used for gauge
// updates after a mutation commits.
func (s *Store) loadOf(workerID string) types.WeightedLoad {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loadOfLocked(workerID)
}

func (s *Store) loadOfLocked(workerID string) types.WeightedLoad {
	lc := s.loads[workerID]
	if lc == nil {
		return types.WeightedLoad{WorkerID: workerID}
	}

	return types.WeightedLoad{
		WorkerID:     workerID,
		ActiveCount:  lc.activeCount,
		WeightedLoad: lc.weighted,
	}
}

// acquireCase enters the case's critical section, waiting up to LockTimeout
// per attempt with LockRetries bounded retries before surfacing
// ErrOperationTimedOut. Context cancellation aborts the wait immediately.
func (s *Store) acquireCase(ctx context.Context, caseID string) (func(), error) {
	token := make(chan struct{}, 1)
	if existing, loaded := s.caseLocks.LoadOrStore(caseID, token); loaded {
		token = existing
	}

	start := s.now()
	defer func() {
		s.metrics.RecordLockWait(s.now().Sub(start).Seconds())
	}()

	for attempt := 0; attempt <= s.cfg.LockRetries; attempt++ {
		timer := time.NewTimer(s.cfg.LockTimeout)

		select {
		case token <- struct{}{}:
			timer.Stop()

			return func() { <-token }, nil
		case <-ctx.Done():
			timer.Stop()

			return nil, fmt.Errorf("case %s: %w: %w", caseID, types.ErrOperationTimedOut, ctx.Err())
		case <-timer.C:
			// Retry.
		}
	}

	return nil, fmt.Errorf("case %s: %w", caseID, types.ErrOperationTimedOut)
}

// withWorkerLocks runs fn holding the given workers' locks, acquired in
// ascending id order. Caller must already hold the case lock.
func (s *Store) withWorkerLocks(workerIDs []string, fn func()) {
	ids := make([]string, 0, len(workerIDs))
	ids = append(ids, workerIDs...)
	sort.Strings(ids)

	locks := make([]*sync.Mutex, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue // same worker twice
		}
		lock := &sync.Mutex{}
		if existing, loaded := s.workerLocks.LoadOrStore(id, lock); loaded {
			lock = existing
		}
		lock.Lock()
		locks = append(locks, lock)
	}

	fn()

	for i := len(locks) - 1; i >= 0; i-- {
		locks[i].Unlock()
	}
}

func (s *Store) bumpLoadLocked(workerID string, role types.Role, direction int) {
	lc := s.loads[workerID]
	if lc == nil {
		lc = &loadCounter{}
		s.loads[workerID] = lc
	}
	lc.activeCount += direction
	lc.weighted += float64(direction) * s.cfg.Weights.Weight(role)

	// Guard against float drift on long-lived counters.
	if lc.activeCount <= 0 {
		lc.activeCount = 0
		if lc.weighted < 1e-9 {
			lc.weighted = 0
		}
	}
}

// removeLocked terminates an active assignment and decrements its worker's
// load. Caller holds s.mu and the relevant worker lock.
func (s *Store) removeLocked(asgn *types.Assignment, reason string) {
	ts := s.now()
	asgn.Status = types.StatusRemoved
	asgn.UnassignedAt = &ts
	asgn.Reason = reason
	s.bumpLoadLocked(asgn.WorkerID, asgn.Role, -1)
}

func (s *Store) lookupActivePrimary(caseID string) (*types.Assignment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activePrimaryLocked(caseID)
}

// activePrimaryLocked scans for the active primary. Caller holds s.mu.
func (s *Store) activePrimaryLocked(caseID string) (*types.Assignment, bool, error) {
	var found *types.Assignment
	for _, a := range s.byCase[caseID] {
		if !a.IsActive() || a.Role != types.RolePrimary {
			continue
		}
		if found != nil {
			s.logger.Error("invariant violated: multiple active primary assignments",
				"case_id", caseID,
				"first", found.ID,
				"second", a.ID,
			)

			return nil, false, fmt.Errorf("case %s: %w", caseID, types.ErrCorruptState)
		}
		found = a
	}

	return found, found != nil, nil
}

func (s *Store) hasActiveAssignment(caseID, workerID string) bool {
	return s.lookupActiveForWorker(caseID, workerID) != nil
}

func (s *Store) lookupActiveForWorker(caseID, workerID string) *types.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.byCase[caseID] {
		if a.IsActive() && a.WorkerID == workerID {
			return a
		}
	}

	return nil
}

// recordEvent appends the entry to the store's log and forwards it to the
// sink. A sink failure is logged and counted but never fails the operation
// that produced the entry.
func (s *Store) recordEvent(ctx context.Context, entry types.HistoryEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = s.now()
	}

	s.mu.Lock()
	s.history[entry.CaseID] = append(s.history[entry.CaseID], entry)
	s.mu.Unlock()

	if err := s.sink.Append(ctx, entry); err != nil {
		s.logger.Warn("history sink append failed",
			"case_id", entry.CaseID,
			"event", entry.Event,
			"error", err,
		)
		s.metrics.RecordHistoryDropped()
	}
}

// Default no-op dependencies so the store never nil-checks.

type nopSink struct{}

func (nopSink) Append(_ context.Context, _ types.HistoryEntry) error { return nil }

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...any) {}
func (nopLogger) Info(_ string, _ ...any)  {}
func (nopLogger) Warn(_ string, _ ...any)  {}
func (nopLogger) Error(_ string, _ ...any) {}
func (nopLogger) Fatal(_ string, _ ...any) {}

type nopStoreMetrics struct{}

func (nopStoreMetrics) RecordAssignment(_ types.Role, _ bool) {}
func (nopStoreMetrics) RecordUnassignment(_ types.Role)       {}
func (nopStoreMetrics) SetWorkerLoad(_ string, _ float64)     {}
func (nopStoreMetrics) RecordLockWait(_ float64)              {}
func (nopStoreMetrics) RecordHistoryDropped()                 {}
