package types

import "context"

// RuleSource provides the ordered list of active assignment rules.
//
// The engine treats the feed as read-only: rules are created, edited, and
// deactivated by an external rule-management API. Implementations may serve
// a cached list with explicit invalidation (see source.KVRules) or return a
// fresh list per call (see source.StaticRules).
type RuleSource interface {
	// ActiveRules returns the active rules. Order is not significant; the
	// rule engine sorts by ascending Priority before evaluation.
	ActiveRules(ctx context.Context) ([]AssignmentRule, error)
}

// WorkerDirectory provides worker records: practice areas, capacity ceiling,
// and eligibility.
//
// Like RuleSource, the directory is a read-only feed owned by an external
// collaborator; implementations may cache with explicit invalidation.
type WorkerDirectory interface {
	// Worker returns the record for the given worker ID.
	// Returns ErrWorkerNotFound when no record exists.
	Worker(ctx context.Context, id string) (Worker, error)

	// ListWorkers returns all known workers.
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// RankStrategy selects the assignment target from a capacity-filtered
// candidate pool during auto-assignment.
//
// Strategy implementations should:
//   - Be deterministic (same input → same output)
//   - Handle edge cases (empty pool, equal loads)
//   - Run quickly (called on the assignment hot path)
//   - Be stateless (no side effects)
type RankStrategy interface {
	// Pick returns the candidate that should receive the PRIMARY
	// assignment. The pool is never empty; the coordinator handles empty
	// pools before ranking.
	Pick(ref CaseRef, pool []Candidate) (Candidate, error)
}
