package types

import "time"

// TransferStatus is the state of a transfer request.
type TransferStatus string

// Transfer request states. PENDING is the only non-terminal state; APPROVED
// and REJECTED are terminal and permit no further transitions.
const (
	TransferPending  TransferStatus = "PENDING"
	TransferApproved TransferStatus = "APPROVED"
	TransferRejected TransferStatus = "REJECTED"
)

// Terminal reports whether the status permits no further transitions.
func (s TransferStatus) Terminal() bool {
	return s == TransferApproved || s == TransferRejected
}

// TransferRequest is a two-phase request to move PRIMARY ownership of a case
// from one worker to another. The transfer takes effect only on approval;
// requesting it changes no assignment.
//
// At most one PENDING request may exist per case at a time.
type TransferRequest struct {
	// ID uniquely identifies the request.
	ID string `json:"id"`

	// CaseID is the case whose ownership is being transferred.
	CaseID string `json:"case_id"`

	// FromWorkerID must hold the ACTIVE PRIMARY assignment when the request
	// is created, and still hold it when the request is approved.
	FromWorkerID string `json:"from_worker_id"`

	// ToWorkerID receives PRIMARY ownership on approval.
	ToWorkerID string `json:"to_worker_id"`

	// RequestedBy is the actor that filed the request.
	RequestedBy Actor `json:"requested_by"`

	// Status is PENDING, APPROVED, or REJECTED.
	Status TransferStatus `json:"status"`

	// RequestedAt is when the request was filed.
	RequestedAt time.Time `json:"requested_at"`

	// ResolvedAt is set when the request reaches a terminal state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// ResolutionNotes records the approver/rejecter's notes.
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}
