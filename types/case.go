package types

// CasePriority is the urgency level of a case as supplied by the external
// case-management system.
type CasePriority int

// Case priority levels, ordered from lowest to highest urgency.
const (
	PriorityLow CasePriority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the human-readable priority name.
func (p CasePriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// CaseRef identifies a legal case together with the attributes the rule
// engine evaluates. The engine never mutates a CaseRef; the full case record
// is owned by an external case-management collaborator.
type CaseRef struct {
	// ID is the opaque case identifier.
	ID string `json:"id"`

	// PracticeArea is the legal practice area (e.g., "family", "torts").
	PracticeArea string `json:"practice_area"`

	// CaseType is the practice-specific case type (e.g., "divorce", "slip_and_fall").
	CaseType string `json:"case_type"`

	// Priority is the case urgency used by rule predicates.
	Priority CasePriority `json:"priority"`

	// OrgID scopes the case to an organization. Opaque to the engine.
	OrgID string `json:"org_id"`
}

// Actor identifies the already-authorized caller performing an operation.
//
// Authorization happens outside the engine; an Actor is a capability value
// passed per call, never global state.
type Actor struct {
	// ID is the opaque user identifier.
	ID string `json:"id"`

	// Display is an optional human-readable name recorded in history entries.
	Display string `json:"display,omitempty"`
}

// System is the actor recorded for engine-initiated changes such as
// rule-driven auto-assignment.
var System = Actor{ID: "system", Display: "system"}
