// Package caseload implements case assignment and workload allocation for
// legal case management systems.
//
// The engine answers one question: which staff member owns which case, and
// at what cost to their capacity. It composes four components:
//
//   - AssignmentStore: the authoritative set of active and historical case
//     assignments, guarded by per-case critical sections
//   - RuleEngine: first-match-wins routing rules that propose candidate
//     workers for auto-assignment
//   - WorkloadCalculator: role-weighted load and capacity views
//   - TransferWorkflow: two-phase PRIMARY ownership transfers with
//     approve/reject/cancel resolution
//
// # Quick Start
//
//	rules := source.NewStaticRules(myRules)
//	directory := source.NewStaticDirectory(myWorkers)
//
//	cfg := caseload.DefaultConfig()
//	eng, err := caseload.NewEngine(&cfg, rules, directory,
//	    caseload.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	asgn, err := eng.AutoAssign(ctx, types.CaseRef{
//	    ID:           "case-2041",
//	    PracticeArea: "family",
//	    CaseType:     "custody",
//	    Priority:     types.PriorityHigh,
//	}, actor)
//
// # Concurrency Model
//
// Every mutating operation on a case is serialized against every other
// mutating operation on the same case; operations on different cases run
// fully in parallel. Worker load counters are adjusted only inside these
// per-case critical sections, behind per-worker locks acquired in sorted
// order, so concurrent transfers that swap two workers' cases cannot
// deadlock.
//
// # Feeds
//
// Routing rules and worker records are read-only feeds owned by external
// systems. Use the source package for static or NATS JetStream KV backed
// implementations, or provide your own RuleSource and WorkerDirectory.
package caseload
