package types

import "context"

// Hooks defines callbacks for engine lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// after the corresponding state change has committed, so they never hold the
// per-case critical section. Hook errors are logged but do not fail engine
// operations.
//
// Best practices for hook implementations:
//   - Complete quickly (< 1 second recommended)
//   - Respect context cancellation
//   - Make hooks idempotent (at-least-once delivery)
type Hooks struct {
	// OnAssigned is called when an assignment is created (manual or auto).
	OnAssigned func(ctx context.Context, assignment Assignment) error

	// OnUnassigned is called when an assignment is terminated.
	OnUnassigned func(ctx context.Context, assignment Assignment) error

	// OnTransferResolved is called when a transfer request reaches a
	// terminal state.
	OnTransferResolved func(ctx context.Context, request TransferRequest) error

	// OnOverflow is called when auto-assignment places a case on a worker
	// already at capacity.
	OnOverflow func(ctx context.Context, assignment Assignment, load WeightedLoad) error
}
