package orchestrator

import (
	"time"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Status is a snapshot of the orchestrator's scheduling state.
type Status struct {
	// QueueDepth is the number of tasks in the pending queue.
	QueueDepth int `json:"queue_depth"`
	// InProgress is the number of tasks currently executing.
	InProgress int `json:"in_progress"`
	// Completed is the number of tasks that completed successfully.
	Completed int `json:"completed"`
	// PendingEscalations is the number of unresolved escalation records.
	PendingEscalations int `json:"pending_escalations"`
	// Workers maps each registered role to its busy state.
	Workers map[string]bool `json:"workers"`
}

// RoleSummary aggregates terminal outcomes for one role.
type RoleSummary struct {
	// Completed is the number of tasks the role completed.
	Completed int `json:"completed"`
	// Escalated is the number of tasks the role escalated.
	Escalated int `json:"escalated"`
	// Failed is the number of tasks that permanently failed for the role.
	Failed int `json:"failed"`
}

// GetStatus returns the current scheduling snapshot.
func (o *Orchestrator) GetStatus() Status {
	o.mu.Lock()
	queueDepth := o.queue.depth()
	inProgress := len(o.inProgress)
	completed := len(o.completedIDs)
	pending := 0
	for _, record := range o.escalations {
		if !record.Resolved() {
			pending++
		}
	}
	o.mu.Unlock()

	return Status{
		QueueDepth:         queueDepth,
		InProgress:         inProgress,
		Completed:          completed,
		PendingEscalations: pending,
		Workers:            o.registry.BusyStates(),
	}
}

// GetDailySummary aggregates terminal outcomes since the cutoff, grouped by
// role. Permanent failures are included so they stay discoverable outside
// the logs.
func (o *Orchestrator) GetDailySummary(since time.Time) map[string]*RoleSummary {
	o.mu.Lock()
	defer o.mu.Unlock()

	summary := make(map[string]*RoleSummary)
	for _, entry := range o.history {
		if entry.at.Before(since) {
			continue
		}
		rs := summary[entry.role]
		if rs == nil {
			rs = &RoleSummary{}
			summary[entry.role] = rs
		}
		switch entry.status {
		case models.TaskStatusCompleted:
			rs.Completed++
		case models.TaskStatusEscalated:
			rs.Escalated++
		case models.TaskStatusFailed:
			rs.Failed++
		}
	}
	return summary
}
