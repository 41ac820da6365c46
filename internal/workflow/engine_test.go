package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/orgmux/internal/orchestrator"
	"github.com/ShayCichocki/orgmux/internal/worker"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

// newTestEngine builds an engine with the given workers and definitions.
func newTestEngine(t *testing.T, workers []worker.Worker, defs []*Definition, opts ...Option) *Engine {
	t.Helper()
	registry := orchestrator.NewWorkerRegistry()
	for _, w := range workers {
		if err := registry.Register(w); err != nil {
			t.Fatalf("Register(%s) error = %v", w.Role(), err)
		}
	}
	store := NewDefinitionStore()
	for _, def := range defs {
		store.Add(def)
	}
	return NewEngine(registry, store, opts...)
}

func TestEngine_UnknownDefinition(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	if _, err := e.Start(context.Background(), "ghost", nil); err == nil {
		t.Error("Start() with unknown definition should error")
	}
}

func TestEngine_RunsStepsInOrder(t *testing.T) {
	var order []string
	record := func(role string) worker.Worker {
		return worker.NewScripted(role, func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
			order = append(order, role)
			return &models.TaskResult{Output: role + " done: " + task.Description}, nil
		})
	}

	def := &Definition{
		ID: "onboarding",
		Steps: []Step{
			{Role: "hr", Content: "prepare offer for {{candidate}}"},
			{Role: "it", Content: "provision laptop based on {{last_output}}"},
		},
	}
	e := newTestEngine(t, []worker.Worker{record("hr"), record("it")}, []*Definition{def})

	inst, err := e.Start(context.Background(), "onboarding", map[string]string{"candidate": "Jo"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceCompleted {
		t.Errorf("instance status = %q, want completed", inst.Status)
	}
	if len(order) != 2 || order[0] != "hr" || order[1] != "it" {
		t.Errorf("execution order = %v, want [hr it]", order)
	}
	if len(inst.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(inst.Results))
	}

	// Step 1 saw the rendered candidate; step 2 saw step 1's output.
	if !strings.Contains(inst.Results[0].Output, "prepare offer for Jo") {
		t.Errorf("step 0 output = %q", inst.Results[0].Output)
	}
	if !strings.Contains(inst.Results[1].Output, "hr done") {
		t.Errorf("step 1 output = %q, want it to include step 0's output", inst.Results[1].Output)
	}
	if inst.Context["last_output"] != inst.Results[1].Output {
		t.Errorf("last_output = %q, want the final step's output", inst.Context["last_output"])
	}
	if inst.EndedAt == nil {
		t.Error("completed instance should have an end timestamp")
	}
}

func TestEngine_FalseConditionSkipsStep(t *testing.T) {
	def := &Definition{
		ID: "two-step",
		Steps: []Step{
			{Role: "ops", Content: "step one"},
			{Role: "ops", Content: "cleanup after failure", Condition: ConditionPreviousFailed},
		},
	}
	e := newTestEngine(t, []worker.Worker{worker.NewEcho("ops")}, []*Definition{def})

	inst, err := e.Start(context.Background(), "two-step", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceCompleted {
		t.Errorf("instance status = %q, want completed (skips do not halt)", inst.Status)
	}
	if len(inst.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(inst.Results))
	}
	if inst.Results[0].Status != StepCompleted {
		t.Errorf("step 0 status = %q, want completed", inst.Results[0].Status)
	}
	if inst.Results[1].Status != StepSkipped {
		t.Errorf("step 1 status = %q, want skipped", inst.Results[1].Status)
	}
}

func TestEngine_PreviousSucceededCondition(t *testing.T) {
	def := &Definition{
		ID: "chain",
		Steps: []Step{
			{Role: "ops", Content: "step one"},
			{Role: "ops", Content: "step two", Condition: ConditionPreviousSucceeded},
		},
	}
	e := newTestEngine(t, []worker.Worker{worker.NewEcho("ops")}, []*Definition{def})

	inst, err := e.Start(context.Background(), "chain", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if inst.Results[1].Status != StepCompleted {
		t.Errorf("step 1 status = %q, want completed after step 0 succeeded", inst.Results[1].Status)
	}
}

func TestEngine_CustomCondition(t *testing.T) {
	def := &Definition{
		ID: "gated",
		Steps: []Step{
			{Role: "ops", Content: "only in prod", Condition: "is_production"},
		},
	}
	e := newTestEngine(t, []worker.Worker{worker.NewEcho("ops")}, []*Definition{def},
		WithCondition("is_production", func(inst *Instance) bool {
			return inst.Context["env"] == "production"
		}))

	inst, err := e.Start(context.Background(), "gated", map[string]string{"env": "staging"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if inst.Results[0].Status != StepSkipped {
		t.Errorf("step status = %q, want skipped in staging", inst.Results[0].Status)
	}

	inst, err = e.Start(context.Background(), "gated", map[string]string{"env": "production"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if inst.Results[0].Status != StepCompleted {
		t.Errorf("step status = %q, want completed in production", inst.Results[0].Status)
	}
}

func TestEngine_UnknownRoleRecordsErrorAndContinues(t *testing.T) {
	def := &Definition{
		ID: "partial",
		Steps: []Step{
			{Role: "ghost", Content: "nobody does this"},
			{Role: "ops", Content: "but this still runs"},
		},
	}
	e := newTestEngine(t, []worker.Worker{worker.NewEcho("ops")}, []*Definition{def})

	inst, err := e.Start(context.Background(), "partial", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceCompleted {
		t.Errorf("instance status = %q, want completed despite the missing role", inst.Status)
	}
	if inst.Results[0].Status != StepFailed || !strings.Contains(inst.Results[0].Error, "ghost") {
		t.Errorf("step 0 = %+v, want a recorded error naming the role", inst.Results[0])
	}
	if inst.Results[1].Status != StepCompleted {
		t.Errorf("step 1 status = %q, want completed", inst.Results[1].Status)
	}
}

func TestEngine_EscalationHaltsInstance(t *testing.T) {
	escalating := worker.NewScripted("legal", func(_ context.Context, _ *models.Task) (*models.TaskResult, error) {
		return &models.TaskResult{
			Output:     "cannot approve",
			Escalation: &models.EscalationSignal{Reason: "contract exceeds authority"},
		}, nil
	})

	def := &Definition{
		ID: "approval",
		Steps: []Step{
			{Role: "legal", Content: "review contract"},
			{Role: "ops", Content: "execute contract"},
		},
	}

	var sunk *models.EscalationSignal
	e := newTestEngine(t, []worker.Worker{escalating, worker.NewEcho("ops")}, []*Definition{def},
		WithEscalationSink(func(_ *models.Task, role string, sig *models.EscalationSignal) {
			if role == "legal" {
				sunk = sig
			}
		}))

	inst, err := e.Start(context.Background(), "approval", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceEscalated {
		t.Errorf("instance status = %q, want escalated", inst.Status)
	}
	// No further steps ran after the escalating one.
	if len(inst.Results) != 1 {
		t.Fatalf("results = %d, want only the escalating step", len(inst.Results))
	}
	if inst.Results[0].Status != StepEscalated {
		t.Errorf("step status = %q, want escalated", inst.Results[0].Status)
	}
	if inst.Escalation == nil || inst.Escalation.Reason != "contract exceeds authority" {
		t.Errorf("instance escalation = %+v", inst.Escalation)
	}
	if sunk == nil {
		t.Error("escalation sink should have received the signal")
	}
}

func TestEngine_HardErrorHaltsInstanceAsFailed(t *testing.T) {
	failing := worker.NewScripted("ops", func(_ context.Context, _ *models.Task) (*models.TaskResult, error) {
		return nil, errors.New("backend exploded")
	})

	def := &Definition{
		ID: "fragile",
		Steps: []Step{
			{Role: "ops", Content: "step one"},
			{Role: "ops", Content: "never reached"},
		},
	}
	e := newTestEngine(t, []worker.Worker{failing}, []*Definition{def})

	inst, err := e.Start(context.Background(), "fragile", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceFailed {
		t.Errorf("instance status = %q, want failed", inst.Status)
	}
	if len(inst.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(inst.Results))
	}
	if inst.Results[0].Status != StepFailed || inst.Results[0].Error == "" {
		t.Errorf("step 0 = %+v, want failed with the error recorded", inst.Results[0])
	}
}

func TestEngine_SkipAfterSuccessScenario(t *testing.T) {
	// Two-step workflow where step 2 only runs if step 1 failed; step 1
	// succeeds, so the instance completes with one result and one skip.
	def := &Definition{
		ID: "fallback",
		Steps: []Step{
			{Name: "primary", Role: "ops", Content: "try the main path"},
			{Name: "fallback", Role: "ops", Content: "recover", Condition: ConditionPreviousFailed},
		},
	}
	e := newTestEngine(t, []worker.Worker{worker.NewEcho("ops")}, []*Definition{def})

	inst, err := e.Start(context.Background(), "fallback", nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if inst.Status != InstanceCompleted {
		t.Fatalf("instance status = %q, want completed", inst.Status)
	}
	executed, skipped := 0, 0
	for _, r := range inst.Results {
		switch r.Status {
		case StepCompleted:
			executed++
		case StepSkipped:
			skipped++
		}
	}
	if executed != 1 || skipped != 1 {
		t.Errorf("results = %+v, want 1 executed and 1 skipped", inst.Results)
	}
	// Named steps merge their output under the name key.
	if _, ok := inst.Context["primary_output"]; !ok {
		t.Error("context should contain primary_output for the named step")
	}
}
