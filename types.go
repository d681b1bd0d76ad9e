package caseload

import "github.com/legalops/caseload/types"

// Re-export types from the types subpackage.
//
// This file provides a stable public API for the library's core types and
// interfaces. It uses type aliases to re-export definitions from the `types`
// subpackage, which contains the actual implementations.
//
// This pattern solves the "import cycle" problem by allowing internal
// packages to depend on `types` without depending on the root `caseload`
// package, while still providing a convenient `caseload.Assignment`,
// `caseload.Logger`, etc. for users.
type (
	CaseRef      = types.CaseRef
	CasePriority = types.CasePriority
	Actor        = types.Actor
	Worker       = types.Worker
	WeightedLoad = types.WeightedLoad
	RoleWeights  = types.RoleWeights
	Candidate    = types.Candidate

	Role             = types.Role
	AssignmentStatus = types.AssignmentStatus
	Assignment       = types.Assignment

	MatchPredicate = types.MatchPredicate
	TargetPolicy   = types.TargetPolicy
	TargetKind     = types.TargetKind
	AssignmentRule = types.AssignmentRule
	CandidatePool  = types.CandidatePool

	TransferStatus = types.TransferStatus

	HistoryEvent = types.HistoryEvent
	HistoryEntry = types.HistoryEntry
)

// Re-export interfaces from the types subpackage for convenience.
type (
	RuleSource       = types.RuleSource
	WorkerDirectory  = types.WorkerDirectory
	RankStrategy     = types.RankStrategy
	HistorySink      = types.HistorySink
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	Hooks            = types.Hooks
)

// Re-export role constants.
const (
	RolePrimary    = types.RolePrimary
	RoleSecondary  = types.RoleSecondary
	RoleSupporting = types.RoleSupporting
)

// Re-export assignment status constants.
const (
	StatusActive  = types.StatusActive
	StatusRemoved = types.StatusRemoved
)

// Re-export case priority constants.
const (
	PriorityLow      = types.PriorityLow
	PriorityMedium   = types.PriorityMedium
	PriorityHigh     = types.PriorityHigh
	PriorityCritical = types.PriorityCritical
)

// Re-export transfer status constants.
const (
	TransferPending  = types.TransferPending
	TransferApproved = types.TransferApproved
	TransferRejected = types.TransferRejected
)

// Re-export target kind constants.
const (
	TargetWorker       = types.TargetWorker
	TargetTeam         = types.TargetTeam
	TargetPracticeArea = types.TargetPracticeArea
)

// DefaultRoleWeights returns the standard weighting policy:
// PRIMARY 1.0, SECONDARY 0.5, SUPPORTING 0.
func DefaultRoleWeights() RoleWeights {
	return types.DefaultRoleWeights()
}
