package models

import "time"

// EscalationStatus represents the state of a pending human decision.
type EscalationStatus string

const (
	// EscalationStatusPending indicates the record awaits a human decision.
	EscalationStatusPending EscalationStatus = "pending"
	// EscalationStatusResolved indicates a human has decided.
	EscalationStatusResolved EscalationStatus = "resolved"
)

// Valid returns true if the status is a known value.
func (s EscalationStatus) Valid() bool {
	switch s {
	case EscalationStatusPending, EscalationStatusResolved:
		return true
	default:
		return false
	}
}

// EscalationRecord is a pending human decision created when a worker
// escalates a task. It is resolved exactly once; after resolution only the
// resolution fields are populated, everything else is immutable.
type EscalationRecord struct {
	// ID is the unique identifier for this record.
	ID string `json:"id"`
	// TaskID references the originating task.
	TaskID string `json:"task_id"`
	// Role is the role that raised the escalation.
	Role string `json:"role"`
	// Reason explains why the escalation was raised.
	Reason string `json:"reason"`
	// Recommendation is the worker's proposed course of action.
	Recommendation string `json:"recommendation,omitempty"`
	// Priority is the tier assigned to the decision.
	Priority Priority `json:"priority"`
	// Status is pending until a human resolves the record.
	Status EscalationStatus `json:"status"`
	// Decision is the human's resolution payload, set exactly once.
	Decision string `json:"decision,omitempty"`
	// CreatedAt is when the escalation was raised.
	CreatedAt time.Time `json:"created_at"`
	// ResolvedAt is when the record was resolved, if it has been.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Resolved returns true once a decision has been recorded.
func (r *EscalationRecord) Resolved() bool {
	return r.Status == EscalationStatusResolved
}
