package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/state"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show task and escalation state",
	Long: `Display the persisted state of the orchestrator.

Shows:
  - Task counts by status
  - Pending escalations awaiting a human decision`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	path := cfg.State.DBPath
	if path == "" {
		path = state.DefaultDBPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No state yet. Run 'orgmux run' to start.")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.TaskCounts()
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	fmt.Println("Tasks:")
	for _, status := range []models.TaskStatus{
		models.TaskStatusPending,
		models.TaskStatusQueued,
		models.TaskStatusInProgress,
		models.TaskStatusCompleted,
		models.TaskStatusFailed,
		models.TaskStatusEscalated,
	} {
		if n := counts[status]; n > 0 {
			fmt.Printf("  %-12s %d\n", status, n)
		}
	}
	if len(counts) == 0 {
		fmt.Println("  none")
	}

	pending, err := db.PendingEscalations()
	if err != nil {
		return fmt.Errorf("list escalations: %w", err)
	}

	fmt.Println()
	if len(pending) == 0 {
		fmt.Println("Escalations: none pending")
		return nil
	}

	fmt.Printf("Escalations: %s pending\n", color.New(color.FgRed, color.Bold).Sprintf("%d", len(pending)))
	for _, rec := range pending {
		fmt.Printf("  %s [%s/%s] %s (%s ago)\n",
			rec.ID, rec.Role, rec.Priority, rec.Reason, formatDuration(time.Since(rec.CreatedAt)))
	}
	fmt.Println("\nReview them with 'orgmux escalations review'.")
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
