package worker

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Handler processes a single task on behalf of a ScriptedWorker.
type Handler func(ctx context.Context, task *models.Task) (*models.TaskResult, error)

// ScriptedWorker is a deterministic worker driven by a handler function.
// It backs the demo organization and is the worker of choice in tests.
type ScriptedWorker struct {
	role    string
	handler Handler
}

// NewScripted creates a worker for the given role backed by the handler.
func NewScripted(role string, handler Handler) *ScriptedWorker {
	return &ScriptedWorker{role: role, handler: handler}
}

// NewEcho creates a worker that completes every task with a fixed-format
// acknowledgement of its description.
func NewEcho(role string) *ScriptedWorker {
	return NewScripted(role, func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
		return &models.TaskResult{
			Output: fmt.Sprintf("[%s] handled: %s", role, task.Description),
		}, nil
	})
}

// Role returns the role identity this worker serves.
func (w *ScriptedWorker) Role() string {
	return w.role
}

// ProcessTask runs the scripted handler.
func (w *ScriptedWorker) ProcessTask(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
	if w.handler == nil {
		return &models.TaskResult{}, nil
	}
	return w.handler(ctx, task)
}
