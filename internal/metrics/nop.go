// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/legalops/caseload/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	collector := metrics.NewNop()
//	eng, err := caseload.NewEngine(&cfg, rules, dir, caseload.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// StoreMetrics implementation

// RecordAssignment discards the assignment metric.
func (n *NopMetrics) RecordAssignment(_ /* role */ types.Role, _ /* auto */ bool) {
	// No-op
}

// RecordUnassignment discards the unassignment metric.
func (n *NopMetrics) RecordUnassignment(_ /* role */ types.Role) {
	// No-op
}

// SetWorkerLoad discards the worker load gauge.
func (n *NopMetrics) SetWorkerLoad(_ /* workerID */ string, _ /* load */ float64) {
	// No-op
}

// RecordLockWait discards the lock wait metric.
func (n *NopMetrics) RecordLockWait(_ /* seconds */ float64) {
	// No-op
}

// RecordHistoryDropped discards the history drop counter.
func (n *NopMetrics) RecordHistoryDropped() {
	// No-op
}

// AssignMetrics implementation

// RecordAutoAssignOutcome discards the auto-assignment outcome counter.
func (n *NopMetrics) RecordAutoAssignOutcome(_ /* outcome */ string) {
	// No-op
}

// RecordRuleMatch discards the rule match counter.
func (n *NopMetrics) RecordRuleMatch(_ /* ruleID */ string) {
	// No-op
}

// TransferMetrics implementation

// RecordTransferRequested discards the transfer request counter.
func (n *NopMetrics) RecordTransferRequested() {
	// No-op
}

// RecordTransferResolved discards the transfer resolution counter.
func (n *NopMetrics) RecordTransferResolved(_ /* status */ types.TransferStatus) {
	// No-op
}

// RecordStaleTransfer discards the stale transfer counter.
func (n *NopMetrics) RecordStaleTransfer() {
	// No-op
}
