package models

import "time"

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not queued.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusQueued indicates the task is waiting in the pending queue.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusInProgress indicates a worker is executing the task.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed after exhausting retries.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusEscalated indicates the task is waiting on a human decision.
	TaskStatusEscalated TaskStatus = "escalated"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusQueued, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusEscalated:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status is a terminal state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusEscalated:
		return true
	default:
		return false
	}
}

// Task represents a unit of work routed through the orchestrator.
type Task struct {
	// ID is the stable external identifier for this task.
	ID string `json:"id"`
	// StorageID is the storage-layer identifier assigned on persistence, if any.
	StorageID int64 `json:"storage_id,omitempty"`
	// Description is the free-text content of the work to perform.
	Description string `json:"description"`
	// Role is the worker role this task is assigned to.
	Role string `json:"role"`
	// Status is the current lifecycle state of the task.
	Status TaskStatus `json:"status"`
	// Priority is the declared priority tier.
	Priority Priority `json:"priority"`
	// Score is the computed numeric priority score, recomputed on enqueue.
	Score int `json:"score"`
	// DueDate is the optional deadline for the task.
	DueDate *time.Time `json:"due_date,omitempty"`
	// BlockedBy lists task IDs that must complete before this task is assignable.
	BlockedBy []string `json:"blocked_by,omitempty"`
	// RetryCount is the number of times this task has been retried.
	RetryCount int `json:"retry_count,omitempty"`
	// Metadata carries arbitrary key/value context, e.g. handoff payloads.
	Metadata map[string]string `json:"metadata,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the task reached a terminal state, if applicable.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// Error contains the last error message if the task failed.
	Error string `json:"error,omitempty"`
}

// Blocked returns true if the task declares any prerequisites.
func (t *Task) Blocked() bool {
	return len(t.BlockedBy) > 0
}
