package rules

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

func TestEngine_NoMatchNoEscalation(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{Description: "summarize the weekly metrics", Priority: models.PriorityMedium}

	verdict := e.Evaluate(task, &models.TaskResult{Output: "done"}, "analyst")
	if verdict.ShouldEscalate {
		t.Errorf("Evaluate() escalated with reasons %v, want no escalation", verdict.Reasons)
	}
	if verdict.Priority != models.PriorityMedium {
		t.Errorf("Evaluate() priority = %q, want medium", verdict.Priority)
	}
}

func TestEngine_ExplicitMarker(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{Description: "this purchase requires executive approval", Priority: models.PriorityMedium}

	verdict := e.Evaluate(task, nil, "finance")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate on explicit marker")
	}
	if len(verdict.Reasons) != 1 {
		t.Errorf("Evaluate() reasons = %v, want exactly one", verdict.Reasons)
	}
}

func TestEngine_RoleCeiling(t *testing.T) {
	e := NewEngine(Config{RoleCeilings: map[string]float64{"devops": 5000}})
	task := &models.Task{Description: "pay the $15,000 invoice for new build servers"}

	verdict := e.Evaluate(task, nil, "devops")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate past the role ceiling")
	}
	found := false
	for _, reason := range verdict.Reasons {
		if strings.Contains(reason, "devops") && strings.Contains(reason, "5000") {
			found = true
		}
	}
	if !found {
		t.Errorf("Evaluate() reasons = %v, want one citing the devops ceiling", verdict.Reasons)
	}
}

func TestEngine_GlobalCeilings(t *testing.T) {
	e := NewEngine(Config{})

	tests := []struct {
		name         string
		text         string
		wantEscalate bool
		wantIn       string
	}{
		{"expense under global ceiling", "reimburse $4,000 travel", false, ""},
		{"expense over global ceiling", "purchase order for $12,000", true, "single-expense"},
		{"contract under contract ceiling", "sign the $30,000 contract", false, ""},
		{"contract over contract ceiling", "sign the $75,000 contract renewal", true, "contract"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := e.Evaluate(&models.Task{Description: tt.text}, nil, "sales")
			if verdict.ShouldEscalate != tt.wantEscalate {
				t.Fatalf("Evaluate(%q) escalate = %v (reasons %v), want %v",
					tt.text, verdict.ShouldEscalate, verdict.Reasons, tt.wantEscalate)
			}
			if tt.wantIn != "" {
				joined := strings.Join(verdict.Reasons, "; ")
				if !strings.Contains(joined, tt.wantIn) {
					t.Errorf("Evaluate(%q) reasons = %v, want mention of %q", tt.text, verdict.Reasons, tt.wantIn)
				}
			}
		})
	}
}

func TestEngine_MultipleAmountsAnyViolationTriggers(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{Description: "phase one costs $2,000, phase two costs $40,000"}

	verdict := e.Evaluate(task, nil, "ops")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate when any amount violates a threshold")
	}
	if len(verdict.Reasons) != 1 {
		t.Errorf("Evaluate() reasons = %v, want one violation for the second amount", verdict.Reasons)
	}
}

func TestEngine_KeywordLayers(t *testing.T) {
	e := NewEngine(Config{})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"risk keyword", "vendor reported a data breach overnight", "risk keyword"},
		{"strategic keyword", "proposal to enter a new market in Q3", "strategic keyword"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := e.Evaluate(&models.Task{Description: tt.text}, nil, "ops")
			if !verdict.ShouldEscalate {
				t.Fatalf("Evaluate(%q) should escalate", tt.text)
			}
			joined := strings.Join(verdict.Reasons, "; ")
			if !strings.Contains(joined, tt.want) {
				t.Errorf("Evaluate(%q) reasons = %v, want mention of %q", tt.text, verdict.Reasons, tt.want)
			}
		})
	}
}

func TestEngine_RoleTriggers(t *testing.T) {
	e := NewEngine(Config{
		RoleTriggers: map[string][]string{
			"hr": {"termination", "salary change"},
		},
	})

	verdict := e.Evaluate(&models.Task{Description: "process the termination paperwork"}, nil, "hr")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate on a role trigger")
	}

	// The same phrase for a different role does not trigger.
	verdict = e.Evaluate(&models.Task{Description: "process the termination paperwork"}, nil, "ops")
	if verdict.ShouldEscalate {
		t.Errorf("Evaluate() escalated for unrelated role, reasons %v", verdict.Reasons)
	}
}

func TestEngine_CustomRules(t *testing.T) {
	afterHours := func(task *models.Task, _ *models.TaskResult, _ string) (bool, string) {
		if strings.Contains(task.Description, "after hours") {
			return true, "after-hours work requires sign-off"
		}
		return false, ""
	}
	e := NewEngine(Config{}, afterHours)

	verdict := e.Evaluate(&models.Task{Description: "deploy after hours"}, nil, "devops")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate on custom rule")
	}
	if verdict.Reasons[0] != "after-hours work requires sign-off" {
		t.Errorf("Evaluate() reason = %q, want the custom rule's reason", verdict.Reasons[0])
	}
}

func TestEngine_AggregatesAllLayers(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{
		Description: "the $20,000 settlement for the lawsuit requires executive approval",
	}

	verdict := e.Evaluate(task, nil, "legal")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should escalate")
	}
	// Marker + financial + risk keyword all match.
	if len(verdict.Reasons) < 3 {
		t.Errorf("Evaluate() reasons = %v, want at least 3 (marker, amount, risk)", verdict.Reasons)
	}
}

func TestResolvePriority(t *testing.T) {
	tests := []struct {
		name    string
		task    *models.Task
		reasons []string
		want    models.Priority
	}{
		{"defaults to medium", &models.Task{Priority: models.PriorityLow}, []string{"amount exceeds ceiling"}, models.PriorityMedium},
		{"critical indicator in reason", &models.Task{Priority: models.PriorityLow}, []string{"risk keyword detected: data breach"}, models.PriorityCritical},
		{"urgent indicator in reason", &models.Task{}, []string{"urgent vendor issue"}, models.PriorityCritical},
		{"critical task elevates", &models.Task{Priority: models.PriorityCritical}, []string{"amount exceeds ceiling"}, models.PriorityCritical},
		{"high task elevates to high", &models.Task{Priority: models.PriorityHigh}, []string{"amount exceeds ceiling"}, models.PriorityHigh},
		{"nil task stays medium", nil, []string{"amount exceeds ceiling"}, models.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolvePriority(tt.task, tt.reasons); got != tt.want {
				t.Errorf("resolvePriority() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_VerdictNeverBelowTaskPriority(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{
		Description: "purchase order for $12,000",
		Priority:    models.PriorityHigh,
	}

	verdict := e.Evaluate(task, nil, "ops")
	if verdict.Priority.Rank() < task.Priority.Rank() {
		t.Errorf("verdict priority %q is below task priority %q", verdict.Priority, task.Priority)
	}
}

func TestEngine_EscalationSignalTextIsMatched(t *testing.T) {
	e := NewEngine(Config{})
	task := &models.Task{Description: "routine deployment"}
	result := &models.TaskResult{
		Output:     "deployment blocked",
		Escalation: &models.EscalationSignal{Reason: "possible security incident on edge nodes"},
	}

	verdict := e.Evaluate(task, result, "devops")
	if !verdict.ShouldEscalate {
		t.Fatal("Evaluate() should match keywords in the escalation signal")
	}
	if verdict.Priority != models.PriorityCritical {
		t.Errorf("Evaluate() priority = %q, want critical for a security reason", verdict.Priority)
	}
}
