package types

import "slices"

// TargetKind selects how a matched rule resolves its candidate pool.
type TargetKind string

// Target policy kinds.
const (
	// TargetWorker resolves to a single explicit worker.
	TargetWorker TargetKind = "WORKER"

	// TargetTeam resolves to an explicit set of workers.
	TargetTeam TargetKind = "TEAM"

	// TargetPracticeArea resolves to every active worker covering the
	// case's practice area.
	TargetPracticeArea TargetKind = "PRACTICE_AREA"
)

// MatchPredicate is the condition part of an assignment rule, evaluated
// against CaseRef attributes. Zero-valued fields are wildcards.
type MatchPredicate struct {
	// PracticeArea must equal the case's practice area when non-empty.
	PracticeArea string `json:"practice_area,omitempty"`

	// CaseTypes must contain the case's type when non-empty.
	CaseTypes []string `json:"case_types,omitempty"`

	// MinPriority requires the case priority to be at or above this level
	// when non-zero.
	MinPriority CasePriority `json:"min_priority,omitempty"`
}

// Matches reports whether the predicate applies to the given case.
func (p MatchPredicate) Matches(ref CaseRef) bool {
	if p.PracticeArea != "" && p.PracticeArea != ref.PracticeArea {
		return false
	}
	if len(p.CaseTypes) > 0 && !slices.Contains(p.CaseTypes, ref.CaseType) {
		return false
	}
	if p.MinPriority != 0 && ref.Priority < p.MinPriority {
		return false
	}

	return true
}

// TargetPolicy is the action part of an assignment rule.
type TargetPolicy struct {
	// Kind selects the resolution mode.
	Kind TargetKind `json:"kind"`

	// WorkerID is the explicit target for TargetWorker.
	WorkerID string `json:"worker_id,omitempty"`

	// Team is the explicit worker set for TargetTeam.
	Team []string `json:"team,omitempty"`
}

// AssignmentRule is an immutable routing rule evaluated during
// auto-assignment.
//
// Rules are created and edited by an external rule-management API; the
// engine only reads active rules ordered by ascending Priority and applies
// the first match.
type AssignmentRule struct {
	// ID uniquely identifies the rule.
	ID string `json:"id"`

	// Priority orders rule evaluation; lower numbers are evaluated first.
	Priority int `json:"priority"`

	// Active rules participate in evaluation; inactive rules are skipped.
	Active bool `json:"active"`

	// Match is the predicate evaluated against the case.
	Match MatchPredicate `json:"match"`

	// Target determines the candidate pool when the predicate matches.
	Target TargetPolicy `json:"target"`
}

// CandidatePool is the outcome of rule resolution: the workers eligible to
// receive the PRIMARY assignment, before capacity filtering and ranking.
type CandidatePool struct {
	// RuleID is the matched rule, empty when the practice-area fallback
	// produced the pool.
	RuleID string `json:"rule_id,omitempty"`

	// Workers are the eligible workers.
	Workers []Worker `json:"workers"`
}
