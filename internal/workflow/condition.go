package workflow

// Built-in condition names.
const (
	// ConditionPreviousSucceeded gates a step on the prior step completing.
	ConditionPreviousSucceeded = "previous_step_succeeded"
	// ConditionPreviousFailed gates a step on the prior step failing.
	ConditionPreviousFailed = "previous_step_failed"
)

// Condition is a custom predicate evaluated against the instance before a
// step executes.
type Condition func(inst *Instance) bool

// evalCondition resolves a step's condition against the instance. The
// second return value is false when the condition name is unknown.
func (e *Engine) evalCondition(name string, inst *Instance) (result bool, known bool) {
	switch name {
	case "":
		return true, true
	case ConditionPreviousSucceeded:
		prev := lastResult(inst)
		return prev == nil || prev.Status == StepCompleted, true
	case ConditionPreviousFailed:
		prev := lastResult(inst)
		return prev != nil && prev.Status == StepFailed, true
	}
	if cond, ok := e.conditions[name]; ok {
		return cond(inst), true
	}
	return false, false
}

// lastResult returns the most recent recorded step result, or nil.
func lastResult(inst *Instance) *StepResult {
	if len(inst.Results) == 0 {
		return nil
	}
	return &inst.Results[len(inst.Results)-1]
}
