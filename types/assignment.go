package types

import "time"

// Role is the ownership role of an assignment on a case.
type Role string

// Assignment roles. Only RolePrimary is exclusivity-constrained: a case has
// at most one ACTIVE PRIMARY assignment at any time.
const (
	RolePrimary    Role = "PRIMARY"
	RoleSecondary  Role = "SECONDARY"
	RoleSupporting Role = "SUPPORTING"
)

// Valid reports whether the role is one of the defined ownership roles.
func (r Role) Valid() bool {
	switch r {
	case RolePrimary, RoleSecondary, RoleSupporting:
		return true
	default:
		return false
	}
}

// AssignmentStatus is the lifecycle status of an assignment.
type AssignmentStatus string

// Assignment statuses. Assignments are never deleted; termination flips the
// status to REMOVED and stamps UnassignedAt.
const (
	StatusActive  AssignmentStatus = "ACTIVE"
	StatusRemoved AssignmentStatus = "REMOVED"
)

// Assignment is the ownership relation between a case and a worker.
type Assignment struct {
	// ID uniquely identifies this assignment record.
	ID string `json:"id"`

	// CaseID is the case this assignment belongs to.
	CaseID string `json:"case_id"`

	// WorkerID is the assigned worker.
	WorkerID string `json:"worker_id"`

	// Role is the ownership role (PRIMARY, SECONDARY, SUPPORTING).
	Role Role `json:"role"`

	// Status is ACTIVE or REMOVED.
	Status AssignmentStatus `json:"status"`

	// AssignedAt is when the assignment was created.
	AssignedAt time.Time `json:"assigned_at"`

	// AssignedBy is the actor that created the assignment.
	AssignedBy Actor `json:"assigned_by"`

	// UnassignedAt is set when the assignment is terminated.
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`

	// Reason records why the assignment was terminated.
	Reason string `json:"reason,omitempty"`

	// Overflow marks an auto-assignment that was placed on a worker already
	// at capacity because no strictly eligible worker existed.
	Overflow bool `json:"overflow,omitempty"`
}

// IsActive reports whether the assignment currently counts toward load.
func (a Assignment) IsActive() bool {
	return a.Status == StatusActive
}
