// Package workflow sequences multi-role approval/execution chains. A
// workflow definition is an ordered list of steps, each naming a target
// role, a content template, and an optional condition; the engine drives
// the shared worker pool through the steps synchronously, stopping early on
// escalation.
package workflow

import (
	"time"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Step is one entry in a workflow definition.
type Step struct {
	// Name optionally labels the step; named step outputs are merged into
	// context under "<name>_output".
	Name string `yaml:"name,omitempty"`
	// Role is the worker role that executes this step.
	Role string `yaml:"role"`
	// Content is the task content template; {{var}} tokens are substituted
	// from the instance context.
	Content string `yaml:"content"`
	// Priority is the tier for the step's task; defaults to medium.
	Priority models.Priority `yaml:"priority,omitempty"`
	// Condition optionally gates execution: "previous_step_succeeded",
	// "previous_step_failed", or the name of a registered custom condition.
	Condition string `yaml:"condition,omitempty"`
}

// Definition is an ordered list of steps executed as one workflow.
type Definition struct {
	// ID identifies the definition; defaults to the source file name.
	ID string `yaml:"id"`
	// Name is the human-readable title.
	Name string `yaml:"name,omitempty"`
	// Description explains what the workflow does.
	Description string `yaml:"description,omitempty"`
	// Steps are executed in order.
	Steps []Step `yaml:"steps"`
}

// InstanceStatus represents the state of a running workflow instance.
type InstanceStatus string

const (
	// InstanceRunning indicates steps are still executing.
	InstanceRunning InstanceStatus = "running"
	// InstanceCompleted indicates all steps ran or were skipped.
	InstanceCompleted InstanceStatus = "completed"
	// InstanceEscalated indicates a step escalated and no further steps ran.
	InstanceEscalated InstanceStatus = "escalated"
	// InstanceFailed indicates a step raised a hard execution error.
	InstanceFailed InstanceStatus = "failed"
)

// StepStatus represents the outcome of a single step.
type StepStatus string

const (
	// StepCompleted indicates the step executed and returned a result.
	StepCompleted StepStatus = "completed"
	// StepSkipped indicates the step's condition evaluated false.
	StepSkipped StepStatus = "skipped"
	// StepEscalated indicates the step's result signaled escalation.
	StepEscalated StepStatus = "escalated"
	// StepFailed indicates the step could not execute or raised an error.
	StepFailed StepStatus = "failed"
)

// StepResult records the outcome of one step of an instance.
type StepResult struct {
	// Index is the step's position in the definition.
	Index int `json:"index"`
	// Name is the step's label, if any.
	Name string `json:"name,omitempty"`
	// Role is the worker role the step targeted.
	Role string `json:"role"`
	// Status is the step outcome.
	Status StepStatus `json:"status"`
	// Output is the worker's output for executed steps.
	Output string `json:"output,omitempty"`
	// Error holds the failure reason for failed steps.
	Error string `json:"error,omitempty"`
}

// Instance is one running execution of a Definition. The step index only
// moves forward; once the status leaves running, no further steps execute.
type Instance struct {
	// ID is the unique identifier for this execution.
	ID string `json:"id"`
	// DefinitionID references the definition being executed.
	DefinitionID string `json:"definition_id"`
	// Context accumulates step outputs for template substitution.
	Context map[string]string `json:"context"`
	// StepIndex is the index of the step currently or last executed.
	StepIndex int `json:"step_index"`
	// Results lists the recorded step outcomes in order.
	Results []StepResult `json:"results"`
	// Status is the instance state.
	Status InstanceStatus `json:"status"`
	// Escalation carries the signal that halted an escalated instance.
	Escalation *models.EscalationSignal `json:"escalation,omitempty"`
	// StartedAt is when execution began.
	StartedAt time.Time `json:"started_at"`
	// EndedAt is when the instance reached a terminal status.
	EndedAt *time.Time `json:"ended_at,omitempty"`
}
