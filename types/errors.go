package types

import "errors"

// Sentinel errors for the caseload library.
//
// These errors provide type-safe error checking using errors.Is() and
// errors.As(). All components use these sentinels for known conditions and
// wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Store errors - returned by assignment store operations.
var (
	// ErrAlreadyAssigned is returned when a case already has an ACTIVE
	// PRIMARY assignment. The caller must unassign or transfer first; the
	// store never silently replaces an owner.
	ErrAlreadyAssigned = errors.New("case already has an active primary assignment")

	// ErrNotAssigned is returned when no matching ACTIVE assignment exists
	// for an unassign or transfer operation.
	ErrNotAssigned = errors.New("no matching active assignment")

	// ErrDuplicateAssignment is returned when the worker already holds an
	// ACTIVE assignment on the case. A worker holds at most one active role
	// per case; transfers promote by replacing, not stacking.
	ErrDuplicateAssignment = errors.New("worker already holds an active assignment on this case")

	// ErrCorruptState indicates an internal-consistency violation such as
	// two ACTIVE PRIMARY assignments for one case. It means the per-case
	// serialization guarantee was broken and must be investigated, not
	// retried.
	ErrCorruptState = errors.New("assignment state corrupted: invariant violated")
)

// Rule engine and auto-assignment errors.
var (
	// ErrNoEligibleWorker is returned when rule resolution and the
	// practice-area fallback produce no assignable worker.
	ErrNoEligibleWorker = errors.New("no eligible worker for case")

	// ErrRuleSourceUnavailable is returned when the rule feed cannot be read
	// and no cached rules are available.
	ErrRuleSourceUnavailable = errors.New("rule source unavailable")

	// ErrWorkerNotFound is returned when the worker directory has no record
	// for a referenced worker ID.
	ErrWorkerNotFound = errors.New("worker not found in directory")

	// ErrWorkerInactive is returned when a manual assignment targets a
	// worker that is not eligible for new assignments.
	ErrWorkerInactive = errors.New("worker is not active")
)

// Transfer workflow errors.
var (
	// ErrConflictingTransfer is returned when a PENDING transfer request
	// already exists for the case.
	ErrConflictingTransfer = errors.New("conflicting transfer request in flight")

	// ErrInvalidTransfer is returned when the source worker does not hold
	// the ACTIVE PRIMARY assignment, or source and target are the same.
	ErrInvalidTransfer = errors.New("invalid transfer request")

	// ErrStaleTransfer is returned on approval when the source assignment is
	// no longer valid. The request stays PENDING for caller retry or
	// cancellation; no partial change is applied.
	ErrStaleTransfer = errors.New("transfer source assignment no longer valid")

	// ErrTransferNotFound is returned when no transfer request exists with
	// the given ID.
	ErrTransferNotFound = errors.New("transfer request not found")

	// ErrTransferResolved is returned when approve/reject targets a request
	// already in a terminal state.
	ErrTransferResolved = errors.New("transfer request already resolved")

	// ErrNotRequester is returned when someone other than the requester
	// attempts to cancel a pending transfer.
	ErrNotRequester = errors.New("only the requester may cancel a transfer")
)

// Concurrency errors.
var (
	// ErrOperationTimedOut is returned when the per-case critical section
	// cannot be entered within the configured lock timeout after bounded
	// retries. No partial state change has occurred.
	ErrOperationTimedOut = errors.New("operation timed out waiting for case lock")
)

// Engine lifecycle errors.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRuleSourceRequired is returned when the rule source is nil.
	ErrRuleSourceRequired = errors.New("rule source is required")

	// ErrWorkerDirectoryRequired is returned when the worker directory is nil.
	ErrWorkerDirectoryRequired = errors.New("worker directory is required")
)
