// Package types defines the core data model and interfaces shared across
// the caseload library.
//
// It contains the assignment entities (CaseRef, Worker, Assignment,
// AssignmentRule, TransferRequest, HistoryEntry), the sentinel errors
// returned by engine operations, and the pluggable interfaces consumed by
// the root package (Logger, MetricsCollector, RuleSource, WorkerDirectory,
// HistorySink, RankStrategy).
//
// Internal packages depend on types without depending on the root caseload
// package, which keeps the dependency graph acyclic while the root package
// re-exports the commonly used definitions via type aliases.
package types
