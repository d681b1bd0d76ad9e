package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations must be non-blocking and safe for concurrent use; all
// methods are called from request-handling goroutines inside engine
// operations.
//
// This interface composes smaller, domain-focused interfaces so components
// can depend on only the slice they record.
type MetricsCollector interface {
	StoreMetrics
	AssignMetrics
	TransferMetrics
}

// StoreMetrics defines metrics for assignment store operations.
type StoreMetrics interface {
	// RecordAssignment records a committed assignment creation.
	//
	// Parameters:
	//   - role: Assignment role ("PRIMARY", "SECONDARY", "SUPPORTING")
	//   - auto: true for rule-driven auto-assignment
	RecordAssignment(role Role, auto bool)

	// RecordUnassignment records a committed assignment termination.
	RecordUnassignment(role Role)

	// SetWorkerLoad sets the current weighted load gauge for a worker.
	SetWorkerLoad(workerID string, load float64)

	// RecordLockWait records time spent waiting for the per-case critical
	// section, in seconds.
	RecordLockWait(seconds float64)

	// RecordHistoryDropped records a history entry that could not be
	// delivered to the sink.
	RecordHistoryDropped()
}

// AssignMetrics defines metrics for auto-assignment outcomes.
type AssignMetrics interface {
	// RecordAutoAssignOutcome records an auto-assignment attempt.
	//
	// Parameters:
	//   - outcome: "assigned", "overflow", or "no_eligible_worker"
	RecordAutoAssignOutcome(outcome string)

	// RecordRuleMatch records which rule produced the candidate pool.
	// ruleID is empty for the practice-area fallback.
	RecordRuleMatch(ruleID string)
}

// TransferMetrics defines metrics for transfer workflow operations.
type TransferMetrics interface {
	// RecordTransferRequested records a new pending transfer request.
	RecordTransferRequested()

	// RecordTransferResolved records a terminal transfer resolution.
	//
	// Parameters:
	//   - status: Terminal status ("APPROVED", "REJECTED")
	RecordTransferResolved(status TransferStatus)

	// RecordStaleTransfer records an approval rejected because the source
	// assignment was no longer valid.
	RecordStaleTransfer()
}
