package models

import (
	"testing"
	"time"
)

func TestPriority_Valid(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		want     bool
	}{
		{"critical is valid", PriorityCritical, true},
		{"high is valid", PriorityHigh, true},
		{"medium is valid", PriorityMedium, true},
		{"low is valid", PriorityLow, true},
		{"empty string is invalid", Priority(""), false},
		{"unknown tier is invalid", Priority("urgent"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.priority.Valid(); got != tt.want {
				t.Errorf("Priority(%q).Valid() = %v, want %v", tt.priority, got, tt.want)
			}
		})
	}
}

func TestPriority_BaseScore(t *testing.T) {
	tests := []struct {
		priority Priority
		want     int
	}{
		{PriorityCritical, 100},
		{PriorityHigh, 75},
		{PriorityMedium, 50},
		{PriorityLow, 25},
		{Priority(""), 50},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			if got := tt.priority.BaseScore(); got != tt.want {
				t.Errorf("Priority(%q).BaseScore() = %d, want %d", tt.priority, got, tt.want)
			}
		})
	}
}

func TestScore_NoDueDate(t *testing.T) {
	now := time.Now()

	// A critical task with no due date and no prerequisites scores exactly
	// the tier base.
	task := &Task{Priority: PriorityCritical}
	if got := Score(task, now, nil); got != 100 {
		t.Errorf("Score(critical, no due date) = %d, want 100", got)
	}
}

func TestScore_DueDateBoosts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"overdue adds 50", now.Add(-24 * time.Hour), 100},
		{"due within 24h adds 30", now.Add(12 * time.Hour), 80},
		{"due within 72h adds 15", now.Add(48 * time.Hour), 65},
		{"due far out adds nothing", now.Add(200 * time.Hour), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := tt.due
			task := &Task{Priority: PriorityMedium, DueDate: &due}
			if got := Score(task, now, nil); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_ResolvedPrerequisitesBoost(t *testing.T) {
	now := time.Now()
	completed := map[string]bool{"t-1": true, "t-2": true}

	tests := []struct {
		name      string
		blockedBy []string
		want      int
	}{
		{"no prerequisites, no boost", nil, 50},
		{"all prerequisites resolved adds 10", []string{"t-1", "t-2"}, 60},
		{"unresolved prerequisite, no boost", []string{"t-1", "t-9"}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{Priority: PriorityMedium, BlockedBy: tt.blockedBy}
			if got := Score(task, now, completed); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_OverdueMediumScoresLikeCritical(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	task := &Task{Priority: PriorityMedium, DueDate: &yesterday}
	if got := Score(task, now, nil); got != 100 {
		t.Errorf("Score(medium, due yesterday) = %d, want 100", got)
	}
}

func TestReady(t *testing.T) {
	completed := map[string]bool{"a": true, "b": true}

	tests := []struct {
		name      string
		blockedBy []string
		completed map[string]bool
		want      bool
	}{
		{"empty list is always ready", nil, nil, true},
		{"empty list ready against empty set", nil, map[string]bool{}, true},
		{"all prerequisites completed", []string{"a", "b"}, completed, true},
		{"one prerequisite missing", []string{"a", "c"}, completed, false},
		{"all prerequisites missing", []string{"x"}, map[string]bool{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &Task{BlockedBy: tt.blockedBy}
			if got := Ready(task, tt.completed); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	if PriorityCritical.Rank() <= PriorityHigh.Rank() {
		t.Error("critical should rank above high")
	}
	if PriorityHigh.Rank() <= PriorityMedium.Rank() {
		t.Error("high should rank above medium")
	}
	if PriorityMedium.Rank() <= PriorityLow.Rank() {
		t.Error("medium should rank above low")
	}
}
