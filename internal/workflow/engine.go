package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/orgmux/internal/orchestrator"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

// EscalationSink receives escalation signals raised by workflow steps, e.g.
// to create an EscalationRecord on the orchestrator.
type EscalationSink func(task *models.Task, role string, signal *models.EscalationSignal)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the debug logger.
func WithLogger(l *orchestrator.DebugLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEscalationSink routes step escalations to the given sink.
func WithEscalationSink(sink EscalationSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithCondition registers a custom condition under the given name.
func WithCondition(name string, cond Condition) Option {
	return func(e *Engine) { e.conditions[name] = cond }
}

// Engine executes workflow definitions synchronously against the shared
// worker registry. It keeps its own instance bookkeeping and never touches
// the orchestrator's queue or busy flags.
type Engine struct {
	registry   *orchestrator.WorkerRegistry
	defs       *DefinitionStore
	conditions map[string]Condition
	logger     *orchestrator.DebugLogger
	sink       EscalationSink
}

// NewEngine creates an Engine over the given registry and definition store.
func NewEngine(registry *orchestrator.WorkerRegistry, defs *DefinitionStore, opts ...Option) *Engine {
	e := &Engine{
		registry:   registry,
		defs:       defs,
		conditions: make(map[string]Condition),
		logger:     orchestrator.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterCondition adds a custom condition after construction.
func (e *Engine) RegisterCondition(name string, cond Condition) {
	e.conditions[name] = cond
}

// Start executes the named definition to completion, escalation, or failure
// inside the call. A false step condition marks the step skipped and
// continues; an unknown role or unknown condition records a step error and
// continues; a result signaling escalation halts the instance; a hard
// execution error halts the instance as failed.
func (e *Engine) Start(ctx context.Context, definitionID string, initialContext map[string]string) (*Instance, error) {
	def, ok := e.defs.Get(definitionID)
	if !ok {
		return nil, fmt.Errorf("unknown workflow definition: %s", definitionID)
	}

	inst := &Instance{
		ID:           uuid.NewString(),
		DefinitionID: def.ID,
		Context:      make(map[string]string, len(initialContext)),
		Status:       InstanceRunning,
		StartedAt:    time.Now(),
	}
	for k, v := range initialContext {
		inst.Context[k] = v
	}

	e.logger.Log("[workflow] instance %s started for definition %s (%d steps)",
		inst.ID, def.ID, len(def.Steps))

	for i, step := range def.Steps {
		inst.StepIndex = i

		ok, known := e.evalCondition(step.Condition, inst)
		if !known {
			e.recordError(inst, i, step, fmt.Sprintf("unknown condition: %s", step.Condition))
			continue
		}
		if !ok {
			e.logger.Log("[workflow] instance %s step %d skipped (condition %s)", inst.ID, i, step.Condition)
			inst.Results = append(inst.Results, StepResult{
				Index: i, Name: step.Name, Role: step.Role, Status: StepSkipped,
			})
			continue
		}

		w, found := e.registry.Lookup(step.Role)
		if !found {
			e.recordError(inst, i, step, fmt.Sprintf("no worker registered for role: %s", step.Role))
			continue
		}

		priority := step.Priority
		if !priority.Valid() {
			priority = models.PriorityMedium
		}
		task := &models.Task{
			ID:          uuid.NewString(),
			Description: Render(step.Content, inst.Context),
			Role:        step.Role,
			Status:      models.TaskStatusInProgress,
			Priority:    priority,
			CreatedAt:   time.Now(),
			Metadata: map[string]string{
				"workflow_instance": inst.ID,
				"workflow_step":     fmt.Sprintf("%d", i),
			},
		}

		result, err := w.ProcessTask(ctx, task)
		if err != nil {
			// A hard execution error halts the instance, unlike an unknown
			// role, which only skips the step.
			inst.Results = append(inst.Results, StepResult{
				Index: i, Name: step.Name, Role: step.Role, Status: StepFailed, Error: err.Error(),
			})
			e.finish(inst, InstanceFailed)
			e.logger.Log("[workflow] instance %s failed at step %d: %v", inst.ID, i, err)
			return inst, nil
		}
		if result == nil {
			result = &models.TaskResult{}
		}

		if result.Escalation != nil {
			inst.Results = append(inst.Results, StepResult{
				Index: i, Name: step.Name, Role: step.Role, Status: StepEscalated, Output: result.Output,
			})
			inst.Escalation = result.Escalation
			if e.sink != nil {
				e.sink(task, step.Role, result.Escalation)
			}
			e.finish(inst, InstanceEscalated)
			e.logger.Log("[workflow] instance %s escalated at step %d: %s", inst.ID, i, result.Escalation.Reason)
			return inst, nil
		}

		e.mergeContext(inst, i, step, result)
		inst.Results = append(inst.Results, StepResult{
			Index: i, Name: step.Name, Role: step.Role, Status: StepCompleted, Output: result.Output,
		})
	}

	e.finish(inst, InstanceCompleted)
	e.logger.Log("[workflow] instance %s completed (%d results)", inst.ID, len(inst.Results))
	return inst, nil
}

// recordError records a non-halting step error and keeps going, favoring
// partial completion over all-or-nothing.
func (e *Engine) recordError(inst *Instance, index int, step Step, msg string) {
	e.logger.Log("[workflow] instance %s step %d error: %s", inst.ID, index, msg)
	inst.Results = append(inst.Results, StepResult{
		Index: index, Name: step.Name, Role: step.Role, Status: StepFailed, Error: msg,
	})
}

// mergeContext folds a step result into the instance context under the
// step-indexed key, the step name key if present, and the last-output key.
func (e *Engine) mergeContext(inst *Instance, index int, step Step, result *models.TaskResult) {
	inst.Context[fmt.Sprintf("step_%d_output", index)] = result.Output
	if step.Name != "" {
		inst.Context[step.Name+"_output"] = result.Output
	}
	inst.Context["last_output"] = result.Output
	for k, v := range result.Data {
		inst.Context[k] = v
	}
}

// finish stamps the terminal status and end time.
func (e *Engine) finish(inst *Instance, status InstanceStatus) {
	now := time.Now()
	inst.Status = status
	inst.EndedAt = &now
}
