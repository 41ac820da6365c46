package models

import "time"

// Priority represents the declared urgency tier of a task or escalation.
type Priority string

const (
	// PriorityCritical is for tasks requiring immediate attention.
	PriorityCritical Priority = "critical"
	// PriorityHigh is for tasks that should run ahead of routine work.
	PriorityHigh Priority = "high"
	// PriorityMedium is the default tier for routine work.
	PriorityMedium Priority = "medium"
	// PriorityLow is for background work with no time pressure.
	PriorityLow Priority = "low"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// BaseScore returns the numeric base score for the tier.
// Unknown tiers score as medium.
func (p Priority) BaseScore() int {
	switch p {
	case PriorityCritical:
		return 100
	case PriorityHigh:
		return 75
	case PriorityLow:
		return 25
	default:
		return 50
	}
}

// Rank returns an ordering value for comparing tiers; higher is more urgent.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

// Score computes the numeric priority score for a task at the given time.
// The base score comes from the tier; time pressure and dependency state add
// boosts on top:
//
//   - +50 if the due date has passed
//   - +30 if due within 24 hours
//   - +15 if due within 72 hours
//   - +10 if declared prerequisites exist and all appear in completed
//
// The function is pure: given the same task, clock, and completed set it
// always returns the same score.
func Score(t *Task, now time.Time, completed map[string]bool) int {
	score := t.Priority.BaseScore()

	if t.DueDate != nil {
		until := t.DueDate.Sub(now)
		switch {
		case until < 0:
			score += 50
		case until <= 24*time.Hour:
			score += 30
		case until <= 72*time.Hour:
			score += 15
		}
	}

	if len(t.BlockedBy) > 0 {
		resolved := true
		for _, id := range t.BlockedBy {
			if !completed[id] {
				resolved = false
				break
			}
		}
		if resolved {
			score += 10
		}
	}

	return score
}

// Ready reports whether every prerequisite of the task appears in the
// completed set. Tasks with no prerequisites are always ready.
func Ready(t *Task, completed map[string]bool) bool {
	for _, id := range t.BlockedBy {
		if !completed[id] {
			return false
		}
	}
	return true
}
