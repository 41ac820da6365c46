// Package rules implements the layered escalation rule engine. It evaluates
// a task/result/role triple against explicit markers, financial thresholds,
// keyword sets, role-specific triggers, and custom predicates, producing a
// structured verdict for the caller to act on.
package rules

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Default financial ceilings, in whole currency units.
const (
	// DefaultSingleExpenseCeiling is the ceiling for a single expense when no
	// role-specific ceiling is configured.
	DefaultSingleExpenseCeiling = 10_000
	// DefaultContractCeiling is the ceiling applied when the text mentions a
	// contract.
	DefaultContractCeiling = 50_000
)

// Verdict is the result of rule evaluation. It aggregates every matched
// rule; evaluation is an OR of triggers, not first-match.
type Verdict struct {
	// ShouldEscalate is true if any rule matched.
	ShouldEscalate bool `json:"should_escalate"`
	// Reasons lists one human-readable entry per matched rule, in rule order.
	Reasons []string `json:"reasons,omitempty"`
	// Priority is the resolved tier for the decision. It never de-escalates
	// below the task's own declared priority.
	Priority models.Priority `json:"priority"`
}

// Rule is a caller-supplied predicate. A non-empty reason counts as a match.
type Rule func(task *models.Task, result *models.TaskResult, role string) (matched bool, reason string)

// Config holds the engine's configurable thresholds and triggers.
type Config struct {
	// SingleExpenseCeiling overrides DefaultSingleExpenseCeiling when > 0.
	SingleExpenseCeiling float64
	// ContractCeiling overrides DefaultContractCeiling when > 0.
	ContractCeiling float64
	// RoleCeilings maps a role to its expense approval ceiling. A configured
	// role ceiling takes precedence over the global ceilings.
	RoleCeilings map[string]float64
	// RoleTriggers maps a role to phrases that always escalate for that
	// role, regardless of amount.
	RoleTriggers map[string][]string
}

// Engine evaluates tasks against the layered rule set.
type Engine struct {
	singleExpenseCeiling float64
	contractCeiling      float64
	roleCeilings         map[string]float64
	roleTriggers         map[string][]string
	custom               []Rule
}

// NewEngine creates an Engine from the given configuration and optional
// custom rules. Zero-valued ceilings fall back to the defaults.
func NewEngine(cfg Config, custom ...Rule) *Engine {
	e := &Engine{
		singleExpenseCeiling: cfg.SingleExpenseCeiling,
		contractCeiling:      cfg.ContractCeiling,
		roleCeilings:         cfg.RoleCeilings,
		roleTriggers:         cfg.RoleTriggers,
		custom:               custom,
	}
	if e.singleExpenseCeiling <= 0 {
		e.singleExpenseCeiling = DefaultSingleExpenseCeiling
	}
	if e.contractCeiling <= 0 {
		e.contractCeiling = DefaultContractCeiling
	}
	return e
}

// Evaluate runs every rule layer against the task, result, and role and
// returns the aggregated verdict. All layers run; each match appends its own
// reason.
func (e *Engine) Evaluate(task *models.Task, result *models.TaskResult, role string) Verdict {
	text := combinedText(task, result)
	lower := strings.ToLower(text)

	var reasons []string

	// Layer 1: explicit executive-approval markers.
	for _, marker := range explicitMarkers {
		if strings.Contains(lower, marker) {
			reasons = append(reasons, fmt.Sprintf("content explicitly requests executive approval (%q)", marker))
			break
		}
	}

	// Layer 2: financial thresholds. Every extracted amount is checked
	// independently; any violation appends its own reason.
	reasons = append(reasons, e.financialReasons(lower, role)...)

	// Layer 3: risk keywords.
	for _, kw := range riskKeywords {
		if strings.Contains(lower, kw) {
			reasons = append(reasons, fmt.Sprintf("risk keyword detected: %s", kw))
		}
	}

	// Layer 4: strategic keywords.
	for _, kw := range strategicKeywords {
		if strings.Contains(lower, kw) {
			reasons = append(reasons, fmt.Sprintf("strategic keyword detected: %s", kw))
		}
	}

	// Layer 5: role-specific mandatory triggers.
	for _, phrase := range e.roleTriggers[role] {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			reasons = append(reasons, fmt.Sprintf("mandatory trigger for role %s: %s", role, phrase))
		}
	}

	// Layer 6: caller-supplied custom predicate rules.
	for _, rule := range e.custom {
		if matched, reason := rule(task, result, role); matched {
			if reason == "" {
				reason = "custom rule matched"
			}
			reasons = append(reasons, reason)
		}
	}

	return Verdict{
		ShouldEscalate: len(reasons) > 0,
		Reasons:        reasons,
		Priority:       resolvePriority(task, reasons),
	}
}

// financialReasons checks every amount in the text against the applicable
// ceiling: the role's configured ceiling if one exists, otherwise the
// contract ceiling when the text mentions a contract, otherwise the global
// single-expense ceiling.
func (e *Engine) financialReasons(lower, role string) []string {
	amounts := ExtractAmounts(lower)
	if len(amounts) == 0 {
		return nil
	}

	var reasons []string
	roleCeiling, hasRoleCeiling := e.roleCeilings[role]
	mentionsContract := strings.Contains(lower, "contract")

	for _, amount := range amounts {
		switch {
		case hasRoleCeiling:
			if amount > roleCeiling {
				reasons = append(reasons, fmt.Sprintf(
					"amount %.2f exceeds approval ceiling %.2f for role %s", amount, roleCeiling, role))
			}
		case mentionsContract:
			if amount > e.contractCeiling {
				reasons = append(reasons, fmt.Sprintf(
					"contract value %.2f exceeds ceiling %.2f", amount, e.contractCeiling))
			}
		default:
			if amount > e.singleExpenseCeiling {
				reasons = append(reasons, fmt.Sprintf(
					"amount %.2f exceeds single-expense ceiling %.2f", amount, e.singleExpenseCeiling))
			}
		}
	}
	return reasons
}

// resolvePriority derives the verdict's tier. It starts at medium and only
// ever escalates: critical when a reason carries a critical indicator or the
// task itself is critical, high when the task is high and nothing elevated
// the verdict further.
func resolvePriority(task *models.Task, reasons []string) models.Priority {
	priority := models.PriorityMedium

	for _, reason := range reasons {
		lower := strings.ToLower(reason)
		for _, indicator := range criticalIndicators {
			if strings.Contains(lower, indicator) {
				return models.PriorityCritical
			}
		}
	}

	if task != nil {
		switch task.Priority {
		case models.PriorityCritical:
			return models.PriorityCritical
		case models.PriorityHigh:
			priority = models.PriorityHigh
		}
	}
	return priority
}

// combinedText joins the task and result text that rules match against.
func combinedText(task *models.Task, result *models.TaskResult) string {
	var parts []string
	if task != nil && task.Description != "" {
		parts = append(parts, task.Description)
	}
	if result != nil {
		if result.Output != "" {
			parts = append(parts, result.Output)
		}
		if result.Escalation != nil && result.Escalation.Reason != "" {
			parts = append(parts, result.Escalation.Reason)
		}
	}
	return strings.Join(parts, "\n")
}
