package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/tui"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

var escalationsAll bool

var escalationsCmd = &cobra.Command{
	Use:   "escalations",
	Short: "List and resolve escalations",
	Long: `Work with escalation records.

Without a subcommand, lists pending escalations. Use 'resolve' to record
a decision for one record, or 'review' for an interactive session.`,
	RunE: runEscalationsList,
}

var escalationsResolveCmd = &cobra.Command{
	Use:   "resolve <id> <decision>",
	Short: "Record a decision for an escalation",
	Args:  cobra.ExactArgs(2),
	RunE:  runEscalationsResolve,
}

var escalationsReviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively review pending escalations",
	RunE:  runEscalationsReview,
}

func init() {
	escalationsCmd.Flags().BoolVar(&escalationsAll, "all", false, "Include resolved escalations")
	escalationsCmd.AddCommand(escalationsResolveCmd)
	escalationsCmd.AddCommand(escalationsReviewCmd)
}

func runEscalationsList(cmd *cobra.Command, args []string) error {
	db, err := openDB(loadConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	var records []*models.EscalationRecord
	if escalationsAll {
		records, err = db.ListEscalations()
	} else {
		records, err = db.PendingEscalations()
	}
	if err != nil {
		return fmt.Errorf("list escalations: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No escalations.")
		return nil
	}

	for _, rec := range records {
		marker := color.RedString("pending")
		if rec.Resolved() {
			marker = color.GreenString("resolved")
		}
		fmt.Printf("%s  %s [%s/%s]\n", rec.ID, marker, rec.Role, rec.Priority)
		fmt.Printf("    reason: %s\n", rec.Reason)
		if rec.Recommendation != "" {
			fmt.Printf("    recommendation: %s\n", rec.Recommendation)
		}
		if rec.Resolved() {
			fmt.Printf("    decision: %s\n", rec.Decision)
		}
	}
	return nil
}

func runEscalationsResolve(cmd *cobra.Command, args []string) error {
	db, err := openDB(loadConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	id, decision := args[0], args[1]
	if err := db.ResolveEscalationRecord(id, decision, time.Now()); err != nil {
		return fmt.Errorf("resolve escalation: %w", err)
	}
	fmt.Printf("Resolved %s: %s\n", id, decision)
	return nil
}

func runEscalationsReview(cmd *cobra.Command, args []string) error {
	db, err := openDB(loadConfig())
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := db.PendingEscalations()
	if err != nil {
		return fmt.Errorf("list escalations: %w", err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending escalations.")
		return nil
	}

	model := tui.NewReview(pending)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run review: %w", err)
	}

	for _, res := range model.Resolutions() {
		if err := db.ResolveEscalationRecord(res.RecordID, res.Decision, time.Now()); err != nil {
			return fmt.Errorf("resolve escalation %s: %w", res.RecordID, err)
		}
		fmt.Printf("Resolved %s: %s\n", res.RecordID, res.Decision)
	}
	return nil
}
