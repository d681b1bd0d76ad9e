package types

import "slices"

// Worker is a staff member eligible to own cases.
//
// Worker records are provided by the external WorkerDirectory feed. The
// engine treats them as read-only except for the derived load counter, which
// is maintained by the assignment store.
type Worker struct {
	// ID is the opaque worker identifier.
	ID string `json:"id"`

	// PracticeAreas lists the practice areas this worker handles.
	PracticeAreas []string `json:"practice_areas"`

	// MaxLoad is the capacity ceiling in weighted load units.
	MaxLoad float64 `json:"max_load"`

	// CurrentLoad is the persisted legacy load counter. It participates in
	// auto-assignment tie-breaking but the authoritative weighted load is
	// always derived from active assignments.
	CurrentLoad float64 `json:"current_load"`

	// Active reports whether the worker is eligible for new assignments.
	Active bool `json:"active"`
}

// HandlesPracticeArea reports whether the worker covers the given practice area.
func (w Worker) HandlesPracticeArea(area string) bool {
	return slices.Contains(w.PracticeAreas, area)
}

// AtCapacity reports whether the given weighted load has reached the worker's
// MaxLoad ceiling. A MaxLoad of zero or below means no ceiling.
func (w Worker) AtCapacity(weightedLoad float64) bool {
	if w.MaxLoad <= 0 {
		return false
	}
	return weightedLoad >= w.MaxLoad
}

// WeightedLoad is a point-in-time view of a worker's capacity consumption.
type WeightedLoad struct {
	// WorkerID identifies the worker.
	WorkerID string `json:"worker_id"`

	// ActiveCount is the number of ACTIVE assignments regardless of role.
	ActiveCount int `json:"active_count"`

	// WeightedLoad is the role-weighted sum of active assignments.
	WeightedLoad float64 `json:"weighted_load"`

	// CapacityRemaining is MaxLoad minus WeightedLoad. Negative when the
	// worker is over capacity (overflow assignments).
	CapacityRemaining float64 `json:"capacity_remaining"`
}

// RoleWeights maps assignment roles to their capacity weight.
type RoleWeights struct {
	Primary    float64 `json:"primary"`
	Secondary  float64 `json:"secondary"`
	Supporting float64 `json:"supporting"`
}

// DefaultRoleWeights returns the standard weighting policy:
// PRIMARY 1.0, SECONDARY 0.5, SUPPORTING 0.
func DefaultRoleWeights() RoleWeights {
	return RoleWeights{Primary: 1.0, Secondary: 0.5, Supporting: 0}
}

// Weight returns the capacity weight for the given role.
func (rw RoleWeights) Weight(role Role) float64 {
	switch role {
	case RolePrimary:
		return rw.Primary
	case RoleSecondary:
		return rw.Secondary
	case RoleSupporting:
		return rw.Supporting
	default:
		return 0
	}
}

// Candidate pairs a worker with its load snapshot during auto-assignment
// ranking. Ranking strategies receive candidates computed from a single
// consistent store snapshot.
type Candidate struct {
	Worker Worker
	Load   WeightedLoad
}
