package worker

import (
	"context"
	"strings"

	"github.com/ShayCichocki/orgmux/internal/rules"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

// GuardedWorker wraps a Worker and runs every result through the escalation
// rule engine. When a rule matches and the worker did not already signal an
// escalation, the guard attaches one so the orchestrator records it; an
// escalation the worker raised itself passes through untouched.
type GuardedWorker struct {
	inner  Worker
	engine *rules.Engine
}

// Guard wraps w with rule evaluation against the given engine.
func Guard(w Worker, engine *rules.Engine) *GuardedWorker {
	return &GuardedWorker{inner: w, engine: engine}
}

// Role returns the wrapped worker's role.
func (g *GuardedWorker) Role() string {
	return g.inner.Role()
}

// ProcessTask delegates to the wrapped worker, then evaluates the rule
// engine over the task and result.
func (g *GuardedWorker) ProcessTask(ctx context.Context, task *models.Task) (*models.TaskResult, error) {
	result, err := g.inner.ProcessTask(ctx, task)
	if err != nil {
		return result, err
	}
	if result == nil {
		result = &models.TaskResult{}
	}
	if result.Escalation != nil {
		return result, nil
	}

	verdict := g.engine.Evaluate(task, result, g.inner.Role())
	if verdict.ShouldEscalate {
		result.Escalation = &models.EscalationSignal{
			Reason:   strings.Join(verdict.Reasons, "; "),
			Priority: verdict.Priority,
		}
	}
	return result, nil
}
