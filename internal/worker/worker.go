// Package worker defines the contract between the orchestration engine and
// the role-specialized workers that execute tasks, along with the worker
// implementations bundled with the engine.
package worker

import (
	"context"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Worker is a named capacity unit that processes one task at a time.
// Implementations signal handoffs and escalations through fields on the
// returned TaskResult; hard execution failures are returned as errors and
// handled by the orchestrator's retry policy.
type Worker interface {
	// Role returns the role identity this worker serves.
	Role() string
	// ProcessTask executes the task and returns its result. It may suspend
	// on external calls; the context carries cancellation.
	ProcessTask(ctx context.Context, task *models.Task) (*models.TaskResult, error)
}
