// Package orchestrator owns the task lifecycle: intake, priority queueing,
// scheduling ticks, worker assignment, retries, handoffs, and escalation
// bookkeeping.
package orchestrator

import (
	"time"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventTaskQueued indicates a task entered the pending queue.
	EventTaskQueued EventType = "task_queued"
	// EventTaskAssigned indicates a task was dispatched to a worker.
	EventTaskAssigned EventType = "task_assigned"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskRetried indicates a failed task was re-queued for retry.
	EventTaskRetried EventType = "task_retried"
	// EventTaskFailed indicates a task failed permanently.
	EventTaskFailed EventType = "task_failed"
	// EventHandoffCreated indicates a handoff task was synthesized.
	EventHandoffCreated EventType = "handoff_created"
	// EventEscalation indicates a task was escalated for human decision.
	EventEscalation EventType = "escalation"
	// EventEscalationResolved indicates a human resolved an escalation.
	EventEscalationResolved EventType = "escalation_resolved"
	// EventWorkerError indicates a worker raised an execution error.
	EventWorkerError EventType = "worker_error"
)

// Event represents an observable event emitted by the orchestrator.
// Delivery is fire-and-forget; subscribers that fall behind lose events.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// Role is the worker role involved, if applicable.
	Role string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Task is the related task snapshot, if applicable.
	Task *models.Task
	// Result is the task result for completion events.
	Result *models.TaskResult
	// Record is the escalation record for escalation events.
	Record *models.EscalationRecord
	// HandoffTaskID is the synthesized task's ID for handoff events.
	HandoffTaskID string
}
