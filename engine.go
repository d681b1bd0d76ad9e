package caseload

import (
	"context"
	"fmt"

	"github.com/legalops/caseload/internal/logging"
	"github.com/legalops/caseload/internal/metrics"
	"github.com/legalops/caseload/internal/rules"
	"github.com/legalops/caseload/internal/store"
	"github.com/legalops/caseload/internal/transfer"
	"github.com/legalops/caseload/internal/workload"
	"github.com/legalops/caseload/strategy"
	"github.com/legalops/caseload/types"
)

// Engine is the assignment coordinator: it orchestrates manual assignment,
// auto-assignment, unassignment, and the transfer workflow over the
// assignment store, and exposes workload and history views.
//
// An Engine is safe for concurrent use. Operations on the same case are
// serialized; operations on different cases run in parallel.
type Engine struct {
	cfg Config

	store     *store.Store
	rules     *rules.Engine
	workload  *workload.Calculator
	transfers *transfer.Workflow

	directory types.WorkerDirectory
	strategy  types.RankStrategy
	fallback  types.RankStrategy

	logger  types.Logger
	metrics types.MetricsCollector
	hooks   *types.Hooks
}

// AssignRequest is the input to a manual assignment.
type AssignRequest struct {
	CaseID   string
	WorkerID string
	Role     types.Role
	Actor    types.Actor
}

// UnassignRequest is the input to an unassignment.
type UnassignRequest struct {
	CaseID   string
	WorkerID string
	Reason   string
	Actor    types.Actor
}

// TransferRequest is the input to filing a transfer request.
type TransferRequest struct {
	CaseID       string
	FromWorkerID string
	ToWorkerID   string
	Actor        types.Actor
}

// NewEngine creates an Engine over the given rule source and worker
// directory.
//
// Parameters:
//   - cfg: Engine configuration; missing values are defaulted in place. Nil
//     uses DefaultConfig.
//   - ruleSource: Routing rule feed (required)
//   - directory: Worker record feed (required)
//   - opts: Optional dependencies (WithLogger, WithMetrics, WithHooks,
//     WithHistorySink, WithStrategy)
//
// Returns:
//   - *Engine: A ready engine
//   - error: ErrRuleSourceRequired, ErrWorkerDirectoryRequired, or a
//     configuration validation error
func NewEngine(cfg *Config, ruleSource RuleSource, directory WorkerDirectory, opts ...Option) (*Engine, error) {
	if cfg == nil {
		defaults := DefaultConfig()
		cfg = &defaults
	}
	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ruleSource == nil {
		return nil, ErrRuleSourceRequired
	}
	if directory == nil {
		return nil, ErrWorkerDirectoryRequired
	}

	options := engineOptions{
		logger:   logging.NewNop(),
		metrics:  metrics.NewNop(),
		strategy: strategy.NewLeastLoaded(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	s := store.New(store.Config{
		Weights:     cfg.Weights,
		LockTimeout: cfg.LockTimeout,
		LockRetries: cfg.LockRetries,
	})
	s.SetLogger(options.logger)
	s.SetMetrics(options.metrics)
	if options.sink != nil {
		s.SetSink(options.sink)
	}

	ruleEngine := rules.New(ruleSource, directory)
	ruleEngine.SetLogger(options.logger)
	ruleEngine.SetMetrics(options.metrics)

	transfers := transfer.New(s)
	transfers.SetLogger(options.logger)
	transfers.SetMetrics(options.metrics)

	return &Engine{
		cfg:       *cfg,
		store:     s,
		rules:     ruleEngine,
		workload:  workload.New(s, directory),
		transfers: transfers,
		directory: directory,
		strategy:  options.strategy,
		fallback:  strategy.NewLeastLoaded(),
		logger:    options.logger,
		metrics:   options.metrics,
		hooks:     options.hooks,
	}, nil
}

// Assign creates an assignment of the given role, specified explicitly by a
// human caller.
//
// Fails with ErrWorkerNotFound or ErrWorkerInactive when the target cannot
// take cases, ErrAlreadyAssigned when assigning a PRIMARY role on a case that
// has an active primary owner, and ErrDuplicateAssignment when the worker
// already holds an active assignment on the case.
func (e *Engine) Assign(ctx context.Context, req AssignRequest) (types.Assignment, error) {
	w, err := e.directory.Worker(ctx, req.WorkerID)
	if err != nil {
		return types.Assignment{}, err
	}
	if !w.Active {
		return types.Assignment{}, fmt.Errorf("worker %s: %w", req.WorkerID, ErrWorkerInactive)
	}

	asgn, err := e.store.Assign(ctx, store.AssignParams{
		CaseID:   req.CaseID,
		WorkerID: req.WorkerID,
		Role:     req.Role,
		Actor:    req.Actor,
	})
	if err != nil {
		return types.Assignment{}, err
	}

	e.runHook("on_assigned", func(ctx context.Context) error {
		if e.hooks == nil || e.hooks.OnAssigned == nil {
			return nil
		}
		return e.hooks.OnAssigned(ctx, asgn)
	})

	return asgn, nil
}

// AutoAssign selects and assigns a PRIMARY owner for a case with no current
// one.
//
// The pipeline: rule resolution proposes candidates, capacity filtering drops
// inactive and overloaded workers, the ranking strategy picks the target, and
// the store commits the assignment. When every candidate is at capacity the
// case overflows to the least-loaded candidate regardless of capacity; the
// overflow is flagged on the assignment, logged, and counted.
//
// Fails with ErrAlreadyAssigned when the case has an active primary owner and
// ErrNoEligibleWorker when rule resolution yields nobody.
func (e *Engine) AutoAssign(ctx context.Context, ref types.CaseRef, actor types.Actor) (types.Assignment, error) {
	if _, ok, err := e.store.ActivePrimary(ref.ID); err != nil {
		return types.Assignment{}, err
	} else if ok {
		e.metrics.RecordAutoAssignOutcome("already_assigned")
		return types.Assignment{}, fmt.Errorf("case %s: %w", ref.ID, ErrAlreadyAssigned)
	}

	pool, err := e.rules.ResolveCandidates(ctx, ref)
	if err != nil {
		e.metrics.RecordAutoAssignOutcome("no_candidates")
		return types.Assignment{}, err
	}

	// One load snapshot for the whole ranking pass, so concurrent mutations
	// cannot skew relative order mid-batch.
	snap := e.store.LoadSnapshot()
	candidates := make([]types.Candidate, 0, len(pool.Workers))
	eligible := make([]types.Candidate, 0, len(pool.Workers))
	for _, w := range pool.Workers {
		load := snap[w.ID]
		load.WorkerID = w.ID
		c := types.Candidate{Worker: w, Load: load}
		candidates = append(candidates, c)
		if !w.AtCapacity(load.WeightedLoad) {
			eligible = append(eligible, c)
		}
	}

	overflow := len(eligible) == 0
	ranked := eligible
	picker := e.strategy
	if overflow {
		// Every candidate is at capacity; the case still needs an owner.
		ranked = candidates
		picker = e.fallback
	}

	pick, err := picker.Pick(ref, ranked)
	if err != nil {
		e.metrics.RecordAutoAssignOutcome("strategy_error")
		return types.Assignment{}, fmt.Errorf("rank candidates for case %s: %w", ref.ID, err)
	}

	asgn, err := e.store.Assign(ctx, store.AssignParams{
		CaseID:   ref.ID,
		WorkerID: pick.Worker.ID,
		Role:     types.RolePrimary,
		Actor:    actor,
		Auto:     true,
		Overflow: overflow,
	})
	if err != nil {
		e.metrics.RecordAutoAssignOutcome("store_rejected")
		return types.Assignment{}, err
	}

	if overflow {
		e.logger.Warn("auto-assignment overflowed capacity",
			"case_id", ref.ID, "worker_id", pick.Worker.ID,
			"weighted_load", pick.Load.WeightedLoad, "max_load", pick.Worker.MaxLoad,
			"rule_id", pool.RuleID)
		e.metrics.RecordAutoAssignOutcome("overflow")
		e.runHook("on_overflow", func(ctx context.Context) error {
			if e.hooks == nil || e.hooks.OnOverflow == nil {
				return nil
			}
			return e.hooks.OnOverflow(ctx, asgn, pick.Load)
		})
	} else {
		e.metrics.RecordAutoAssignOutcome("assigned")
	}

	e.runHook("on_assigned", func(ctx context.Context) error {
		if e.hooks == nil || e.hooks.OnAssigned == nil {
			return nil
		}
		return e.hooks.OnAssigned(ctx, asgn)
	})

	return asgn, nil
}

// Unassign terminates the worker's active assignment on the case.
// Fails with ErrNotAssigned when no matching active assignment exists.
func (e *Engine) Unassign(ctx context.Context, req UnassignRequest) error {
	asgn, err := e.store.Unassign(ctx, store.UnassignParams{
		CaseID:   req.CaseID,
		WorkerID: req.WorkerID,
		Reason:   req.Reason,
		Actor:    req.Actor,
	})
	if err != nil {
		return err
	}

	e.runHook("on_unassigned", func(ctx context.Context) error {
		if e.hooks == nil || e.hooks.OnUnassigned == nil {
			return nil
		}
		return e.hooks.OnUnassigned(ctx, asgn)
	})

	return nil
}

// RequestTransfer files a PENDING request to move the case's PRIMARY
// ownership. Filing changes no assignment; the transfer takes effect only on
// approval.
//
// Fails with ErrInvalidTransfer when the request is malformed and
// ErrConflictingTransfer when the case already has a PENDING request.
func (e *Engine) RequestTransfer(ctx context.Context, req TransferRequest) (types.TransferRequest, error) {
	return e.transfers.Request(ctx, req.CaseID, req.FromWorkerID, req.ToWorkerID, req.Actor)
}

// ApproveTransfer resolves a PENDING request, atomically moving PRIMARY
// ownership.
//
// Fails with ErrStaleTransfer, leaving the request PENDING, when the source
// no longer holds the primary assignment; with ErrTransferNotFound for an
// unknown ID; and with ErrTransferResolved for a request already resolved.
func (e *Engine) ApproveTransfer(ctx context.Context, requestID string, actor types.Actor, notes string) (types.Assignment, error) {
	asgn, err := e.transfers.Approve(ctx, requestID, actor, notes)
	if err != nil {
		return types.Assignment{}, err
	}

	e.notifyTransferResolved(requestID)
	return asgn, nil
}

// RejectTransfer resolves a PENDING request without touching any assignment.
func (e *Engine) RejectTransfer(ctx context.Context, requestID string, actor types.Actor, notes string) (types.TransferRequest, error) {
	req, err := e.transfers.Reject(ctx, requestID, actor, notes)
	if err != nil {
		return types.TransferRequest{}, err
	}

	e.notifyTransferResolved(requestID)
	return req, nil
}

// CancelTransfer withdraws a PENDING request. Only the requester may cancel;
// anyone else gets ErrNotRequester.
func (e *Engine) CancelTransfer(ctx context.Context, requestID string, actor types.Actor) (types.TransferRequest, error) {
	req, err := e.transfers.Cancel(ctx, requestID, actor)
	if err != nil {
		return types.TransferRequest{}, err
	}

	e.notifyTransferResolved(requestID)
	return req, nil
}

// PendingTransfer returns the case's PENDING transfer request, if any.
func (e *Engine) PendingTransfer(_ context.Context, caseID string) (types.TransferRequest, bool) {
	return e.transfers.Pending(caseID)
}

// Transfer returns the transfer request with the given ID.
// Returns ErrTransferNotFound when no such request exists.
func (e *Engine) Transfer(_ context.Context, requestID string) (types.TransferRequest, error) {
	return e.transfers.Get(requestID)
}

// WorkloadOf returns the worker's weighted load with capacity headroom.
// Returns ErrWorkerNotFound for an unknown worker.
func (e *Engine) WorkloadOf(ctx context.Context, workerID string) (types.WeightedLoad, error) {
	return e.workload.WorkloadOf(ctx, workerID)
}

// TeamWorkload returns weighted loads computed from one point-in-time
// snapshot, sorted by ascending load.
//
// Parameters:
//   - ctx: Context for directory reads
//   - workerIDs: Restrict the result to these workers; nil means everyone
//
// Returns:
//   - []types.WeightedLoad: One entry per selected worker
//   - error: Directory read failure
func (e *Engine) TeamWorkload(ctx context.Context, workerIDs []string) ([]types.WeightedLoad, error) {
	team, err := e.workload.TeamWorkload(ctx)
	if err != nil {
		return nil, err
	}
	if len(workerIDs) == 0 {
		return team, nil
	}

	keep := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		keep[id] = true
	}
	out := make([]types.WeightedLoad, 0, len(workerIDs))
	for _, wl := range team {
		if keep[wl.WorkerID] {
			out = append(out, wl)
		}
	}
	return out, nil
}

// ActiveAssignmentsForCase returns the case's active assignments.
func (e *Engine) ActiveAssignmentsForCase(_ context.Context, caseID string) []types.Assignment {
	return e.store.ActiveForCase(caseID)
}

// ActiveAssignmentsForWorker returns the worker's active assignments.
func (e *Engine) ActiveAssignmentsForWorker(_ context.Context, workerID string) []types.Assignment {
	return e.store.ActiveForWorker(workerID)
}

// History returns the case's append-only history entries in order.
func (e *Engine) History(_ context.Context, caseID string) []types.HistoryEntry {
	return e.store.History(caseID)
}

// notifyTransferResolved fires the OnTransferResolved hook with the request's
// terminal state.
func (e *Engine) notifyTransferResolved(requestID string) {
	req, err := e.transfers.Get(requestID)
	if err != nil {
		return
	}

	e.runHook("on_transfer_resolved", func(ctx context.Context) error {
		if e.hooks == nil || e.hooks.OnTransferResolved == nil {
			return nil
		}
		return e.hooks.OnTransferResolved(ctx, req)
	})
}

// runHook invokes a lifecycle hook in a background goroutine with a bounded
// context. Hook errors are logged, never propagated.
func (e *Engine) runHook(name string, fn func(ctx context.Context) error) {
	if e.hooks == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.HookTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			e.logger.Warn("lifecycle hook failed", "hook", name, "error", err)
		}
	}()
}
