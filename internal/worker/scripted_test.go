package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

func TestScriptedWorker_Role(t *testing.T) {
	w := NewEcho("finance")
	if got := w.Role(); got != "finance" {
		t.Errorf("Role() = %q, want %q", got, "finance")
	}
}

func TestScriptedWorker_ProcessTask(t *testing.T) {
	w := NewScripted("support", func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
		return &models.TaskResult{Output: "resolved " + task.ID}, nil
	})

	result, err := w.ProcessTask(context.Background(), &models.Task{ID: "t-1"})
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if result.Output != "resolved t-1" {
		t.Errorf("ProcessTask() output = %q, want %q", result.Output, "resolved t-1")
	}
}

func TestScriptedWorker_ProcessTaskError(t *testing.T) {
	wantErr := errors.New("backend unavailable")
	w := NewScripted("devops", func(_ context.Context, _ *models.Task) (*models.TaskResult, error) {
		return nil, wantErr
	})

	_, err := w.ProcessTask(context.Background(), &models.Task{ID: "t-1"})
	if !errors.Is(err, wantErr) {
		t.Errorf("ProcessTask() error = %v, want %v", err, wantErr)
	}
}

func TestScriptedWorker_NilHandler(t *testing.T) {
	w := NewScripted("ops", nil)
	result, err := w.ProcessTask(context.Background(), &models.Task{ID: "t-1"})
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if result == nil {
		t.Fatal("ProcessTask() returned nil result")
	}
}

func TestEchoWorker_MentionsDescription(t *testing.T) {
	w := NewEcho("legal")
	result, err := w.ProcessTask(context.Background(), &models.Task{ID: "t-1", Description: "review NDA"})
	if err != nil {
		t.Fatalf("ProcessTask() error = %v", err)
	}
	if !strings.Contains(result.Output, "review NDA") {
		t.Errorf("ProcessTask() output = %q, want it to contain the description", result.Output)
	}
}

func TestParseEscalationMarker(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		wantReason string
		wantOK     bool
	}{
		{"marker on first line", "ESCALATE: contract exceeds authority\ndetails follow", "contract exceeds authority", true},
		{"no marker", "all done", "", false},
		{"marker mid-text is ignored", "summary\nESCALATE: later", "", false},
		{"marker with surrounding whitespace", "  ESCALATE:  needs sign-off  ", "needs sign-off", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := parseEscalationMarker(tt.output)
			if ok != tt.wantOK || reason != tt.wantReason {
				t.Errorf("parseEscalationMarker(%q) = (%q, %v), want (%q, %v)",
					tt.output, reason, ok, tt.wantReason, tt.wantOK)
			}
		})
	}
}
