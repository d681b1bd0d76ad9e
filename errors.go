package caseload

import "github.com/legalops/caseload/types"

// Sentinel errors returned by the Engine, re-exported from the types
// subpackage so callers can match with errors.Is against either path.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrRuleSourceRequired is returned when the rule source is nil.
	ErrRuleSourceRequired = types.ErrRuleSourceRequired

	// ErrWorkerDirectoryRequired is returned when the worker directory is nil.
	ErrWorkerDirectoryRequired = types.ErrWorkerDirectoryRequired

	// ErrAlreadyAssigned is returned when a case already has an active
	// PRIMARY assignment.
	ErrAlreadyAssigned = types.ErrAlreadyAssigned

	// ErrNotAssigned is returned when unassigning a worker that holds no
	// active assignment on the case.
	ErrNotAssigned = types.ErrNotAssigned

	// ErrDuplicateAssignment is returned when the worker already holds an
	// active assignment on the case.
	ErrDuplicateAssignment = types.ErrDuplicateAssignment

	// ErrCorruptState is returned when an invariant violation is detected,
	// such as two active PRIMARY assignments on one case.
	ErrCorruptState = types.ErrCorruptState

	// ErrNoEligibleWorker is returned when auto-assignment finds no worker
	// able to take the case.
	ErrNoEligibleWorker = types.ErrNoEligibleWorker

	// ErrRuleSourceUnavailable is returned when the rule feed cannot be read.
	ErrRuleSourceUnavailable = types.ErrRuleSourceUnavailable

	// ErrWorkerNotFound is returned when the directory has no record for the
	// worker.
	ErrWorkerNotFound = types.ErrWorkerNotFound

	// ErrWorkerInactive is returned when assigning to a deactivated worker.
	ErrWorkerInactive = types.ErrWorkerInactive

	// ErrConflictingTransfer is returned when the case already has a PENDING
	// transfer request.
	ErrConflictingTransfer = types.ErrConflictingTransfer

	// ErrInvalidTransfer is returned when a transfer request is malformed,
	// such as the source not holding the PRIMARY assignment.
	ErrInvalidTransfer = types.ErrInvalidTransfer

	// ErrStaleTransfer is returned when approving a request whose source no
	// longer holds the PRIMARY assignment.
	ErrStaleTransfer = types.ErrStaleTransfer

	// ErrTransferNotFound is returned when no request exists for the ID.
	ErrTransferNotFound = types.ErrTransferNotFound

	// ErrTransferResolved is returned when resolving a request already in a
	// terminal state.
	ErrTransferResolved = types.ErrTransferResolved

	// ErrNotRequester is returned when someone other than the requester
	// cancels a transfer request.
	ErrNotRequester = types.ErrNotRequester

	// ErrOperationTimedOut is returned when a per-case lock cannot be
	// acquired within the configured timeout and retries.
	ErrOperationTimedOut = types.ErrOperationTimedOut
)
