package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/orchestrator"
	"github.com/ShayCichocki/orgmux/internal/rules"
	"github.com/ShayCichocki/orgmux/internal/worker"
	"github.com/ShayCichocki/orgmux/internal/workflow"
)

var workflowsDir string

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List and run workflow definitions",
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow definitions from the workflow directory",
	RunE:  runWorkflowsList,
}

var workflowsRunCmd = &cobra.Command{
	Use:   "run <id> [key=value ...]",
	Short: "Run a workflow definition with the demo organization",
	Long: `Execute the named workflow synchronously against the demo workers.
Additional key=value arguments seed the instance context for {{var}}
template substitution, e.g.:

  orgmux workflows run contract-review contract="Q3 vendor agreement"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWorkflowsRun,
}

func init() {
	workflowsCmd.PersistentFlags().StringVar(&workflowsDir, "dir", "", "Workflow definitions directory (defaults to config)")
	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsRunCmd)
}

// loadDefinitions loads the workflow directory from the flag or config.
func loadDefinitions() (*workflow.DefinitionStore, error) {
	cfg := loadConfig()
	dir := workflowsDir
	if dir == "" {
		dir = cfg.Workflows.Dir
	}

	store := workflow.NewDefinitionStore()
	if err := store.LoadDir(dir); err != nil {
		return nil, err
	}
	return store, nil
}

func runWorkflowsList(cmd *cobra.Command, args []string) error {
	store, err := loadDefinitions()
	if err != nil {
		return err
	}

	defs := store.List()
	if len(defs) == 0 {
		fmt.Println("No workflow definitions found.")
		return nil
	}

	for _, def := range defs {
		fmt.Printf("%s  %s (%d steps)\n", color.CyanString(def.ID), def.Name, len(def.Steps))
		if def.Description != "" {
			fmt.Printf("    %s\n", def.Description)
		}
	}
	return nil
}

func runWorkflowsRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	store, err := loadDefinitions()
	if err != nil {
		return err
	}

	initialContext := make(map[string]string)
	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("invalid context argument %q: expected key=value", arg)
		}
		initialContext[key] = value
	}

	engine := rules.NewEngine(rules.Config{
		SingleExpenseCeiling: cfg.Escalation.SingleExpenseCeiling,
		ContractCeiling:      cfg.Escalation.ContractCeiling,
		RoleCeilings:         cfg.Escalation.RoleCeilings,
		RoleTriggers:         cfg.Escalation.RoleTriggers,
	})

	registry := orchestrator.NewWorkerRegistry()
	for _, w := range demoWorkers(cfg) {
		if err := registry.Register(worker.Guard(w, engine)); err != nil {
			return fmt.Errorf("register worker: %w", err)
		}
	}

	wfEngine := workflow.NewEngine(registry, store)
	inst, err := wfEngine.Start(cmd.Context(), args[0], initialContext)
	if err != nil {
		return err
	}

	for _, step := range inst.Results {
		label := step.Name
		if label == "" {
			label = fmt.Sprintf("step %d", step.Index)
		}
		switch step.Status {
		case workflow.StepCompleted:
			fmt.Printf("%s %s [%s]\n", color.GreenString("ok"), label, step.Role)
			if step.Output != "" {
				fmt.Printf("    %s\n", step.Output)
			}
		case workflow.StepSkipped:
			fmt.Printf("%s %s [%s]\n", color.YellowString("skipped"), label, step.Role)
		case workflow.StepEscalated:
			fmt.Printf("%s %s [%s]\n", color.New(color.FgRed, color.Bold).Sprint("escalated"), label, step.Role)
		case workflow.StepFailed:
			fmt.Printf("%s %s [%s]: %s\n", color.RedString("failed"), label, step.Role, step.Error)
		}
	}

	fmt.Printf("\nInstance %s: %s\n", inst.ID, string(inst.Status))
	if inst.Escalation != nil {
		fmt.Printf("Escalation: %s\n", color.RedString(inst.Escalation.Reason))
	}
	return nil
}
