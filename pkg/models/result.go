package models

// TaskResult is what a worker produces for a processed task.
// Besides the textual output, a worker may attach routing signals: a handoff
// to another role, or an escalation to a human decision-maker.
type TaskResult struct {
	// Output is the worker's textual output for the task.
	Output string `json:"output"`
	// Data carries structured key/value output merged into workflow context.
	Data map[string]string `json:"data,omitempty"`
	// Handoff, if set, requests that follow-up work be queued for another role.
	Handoff *Handoff `json:"handoff,omitempty"`
	// Escalation, if set, requests a human decision before the work proceeds.
	Escalation *EscalationSignal `json:"escalation,omitempty"`
}

// Handoff describes a transfer of unfinished context from one role to another.
type Handoff struct {
	// FromRole is the role handing the work off.
	FromRole string `json:"from_role"`
	// ToRole is the role that should pick the work up.
	ToRole string `json:"to_role"`
	// Context is the free-text context passed to the receiving role.
	Context string `json:"context"`
	// Priority is the tier for the synthesized task; defaults to medium.
	Priority Priority `json:"priority,omitempty"`
}

// EscalationSignal is a worker's request for human sign-off.
type EscalationSignal struct {
	// Reason explains why the worker is escalating.
	Reason string `json:"reason"`
	// Recommendation is the worker's proposed course of action.
	Recommendation string `json:"recommendation,omitempty"`
	// Priority is the tier the worker believes the decision deserves.
	Priority Priority `json:"priority,omitempty"`
}
