package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/config"
	"github.com/ShayCichocki/orgmux/internal/orchestrator"
	"github.com/ShayCichocki/orgmux/internal/rules"
	"github.com/ShayCichocki/orgmux/internal/worker"
	"github.com/ShayCichocki/orgmux/internal/workflow"
	"github.com/ShayCichocki/orgmux/pkg/models"
)

var (
	runPriority  string
	runDrain     bool
	runDebugLog  string
	runWorkflows []string
)

var runCmd = &cobra.Command{
	Use:   "run [role:description ...]",
	Short: "Run the orchestrator with the demo organization",
	Long: `Start the scheduling loop with the built-in demo organization and
enqueue the given tasks. Each argument is "role:description", e.g.:

  orgmux run "support:customer reports a billing bug" \
             "finance:approve $15,000 vendor payment"

Demo roles: engineering, devops, finance, legal, support.

Tasks left pending or queued from a previous run are restored from the
database before the loop starts. Press Ctrl+C to stop; with --drain the
loop exits on its own once all work has settled.`,
	RunE: runOrchestrator,
}

func init() {
	runCmd.Flags().StringVar(&runPriority, "priority", "medium", "Priority tier for the enqueued tasks: critical, high, medium, or low")
	runCmd.Flags().BoolVar(&runDrain, "drain", false, "Exit once the queue is empty and no tasks are in progress")
	runCmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write debug logs to this file")
	runCmd.Flags().StringArrayVar(&runWorkflows, "workflow", nil, "Workflow definition ID to execute before the loop starts (repeatable)")
}

func runOrchestrator(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	priority := models.Priority(runPriority)
	if !priority.Valid() {
		return fmt.Errorf("invalid priority: %s", runPriority)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	logger := orchestrator.NopLogger()
	if runDebugLog != "" {
		logger, err = orchestrator.NewDebugLogger(runDebugLog)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer logger.Close()
	}

	orch := orchestrator.New(
		orchestrator.WithMaxConcurrent(cfg.Orchestrator.MaxConcurrent),
		orchestrator.WithTickInterval(cfg.Orchestrator.TickInterval),
		orchestrator.WithRetryLimit(cfg.Orchestrator.RetryLimit),
		orchestrator.WithStore(db),
		orchestrator.WithLogger(logger),
	)

	engine := rules.NewEngine(rules.Config{
		SingleExpenseCeiling: cfg.Escalation.SingleExpenseCeiling,
		ContractCeiling:      cfg.Escalation.ContractCeiling,
		RoleCeilings:         cfg.Escalation.RoleCeilings,
		RoleTriggers:         cfg.Escalation.RoleTriggers,
	})

	for _, w := range demoWorkers(cfg) {
		if err := orch.Register(worker.Guard(w, engine)); err != nil {
			return fmt.Errorf("register worker: %w", err)
		}
	}

	if err := orch.RestorePending(); err != nil {
		return fmt.Errorf("restore pending tasks: %w", err)
	}

	for _, arg := range args {
		task, err := parseTaskArg(arg, priority)
		if err != nil {
			return err
		}
		orch.Enqueue(task)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go printEvents(orch.Events())

	started := time.Now()
	orch.Start(ctx)

	if err := runStartupWorkflows(ctx, cfg, orch, logger); err != nil {
		orch.Stop()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if runDrain {
		waitForDrain(ctx, orch, sigCh)
	} else {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
	}

	orch.Stop()
	printSummary(orch, started)
	return nil
}

// runStartupWorkflows loads the workflow directory, optionally starts the
// hot-reload watcher, and executes any --workflow instances. Workflow step
// escalations are recorded on the orchestrator like task escalations.
func runStartupWorkflows(ctx context.Context, cfg *config.Config, orch *orchestrator.Orchestrator, logger *orchestrator.DebugLogger) error {
	if len(runWorkflows) == 0 && !cfg.Workflows.Watch {
		return nil
	}

	store := workflow.NewDefinitionStore()
	if err := store.LoadDir(cfg.Workflows.Dir); err != nil {
		if len(runWorkflows) > 0 {
			return fmt.Errorf("load workflows: %w", err)
		}
		return nil
	}

	if cfg.Workflows.Watch {
		go store.Watch(ctx, cfg.Workflows.Dir, logger)
	}

	engine := workflow.NewEngine(orch.Registry(), store,
		workflow.WithLogger(logger),
		workflow.WithEscalationSink(func(task *models.Task, role string, sig *models.EscalationSignal) {
			orch.Escalate(task, role, sig)
		}))

	for _, id := range runWorkflows {
		inst, err := engine.Start(ctx, id, nil)
		if err != nil {
			return fmt.Errorf("run workflow %s: %w", id, err)
		}
		fmt.Printf("workflow %s: %s (%d steps)\n", id, inst.Status, len(inst.Results))
	}
	return nil
}

// parseTaskArg parses a "role:description" argument.
func parseTaskArg(arg string, priority models.Priority) (*models.Task, error) {
	role, description, found := strings.Cut(arg, ":")
	role = strings.TrimSpace(role)
	description = strings.TrimSpace(description)
	if !found || role == "" || description == "" {
		return nil, fmt.Errorf("invalid task %q: expected \"role:description\"", arg)
	}
	return &models.Task{
		Description: description,
		Role:        role,
		Priority:    priority,
	}, nil
}

// waitForDrain blocks until the queue empties and nothing is in flight, or a
// signal arrives.
func waitForDrain(ctx context.Context, orch *orchestrator.Orchestrator, sigCh <-chan os.Signal) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := orch.GetStatus()
			if st.QueueDepth == 0 && st.InProgress == 0 {
				return
			}
		}
	}
}

// printEvents streams orchestrator events to stdout with per-type coloring.
func printEvents(events <-chan orchestrator.Event) {
	for ev := range events {
		stamp := ev.Timestamp.Format("15:04:05")
		switch ev.Type {
		case orchestrator.EventTaskQueued:
			fmt.Printf("%s %s [%s] %s\n", stamp, color.CyanString("queued"), ev.Role, ev.Message)
		case orchestrator.EventTaskAssigned:
			fmt.Printf("%s %s [%s] task %s\n", stamp, color.BlueString("assigned"), ev.Role, ev.TaskID)
		case orchestrator.EventTaskCompleted:
			fmt.Printf("%s %s [%s] task %s\n", stamp, color.GreenString("completed"), ev.Role, ev.TaskID)
		case orchestrator.EventTaskRetried:
			fmt.Printf("%s %s [%s] %s\n", stamp, color.YellowString("retried"), ev.Role, ev.Message)
		case orchestrator.EventTaskFailed:
			fmt.Printf("%s %s [%s] %s\n", stamp, color.RedString("failed"), ev.Role, ev.Message)
		case orchestrator.EventHandoffCreated:
			fmt.Printf("%s %s [%s] %s\n", stamp, color.MagentaString("handoff"), ev.Role, ev.Message)
		case orchestrator.EventEscalation:
			reason := ev.Message
			if ev.Record != nil {
				reason = ev.Record.Reason
			}
			fmt.Printf("%s %s [%s] %s\n", stamp, color.New(color.FgRed, color.Bold).Sprint("ESCALATION"), ev.Role, reason)
		case orchestrator.EventEscalationResolved:
			fmt.Printf("%s %s %s\n", stamp, color.GreenString("resolved"), ev.Message)
		case orchestrator.EventWorkerError:
			fmt.Printf("%s %s [%s] %v\n", stamp, color.RedString("worker error"), ev.Role, ev.Error)
		}
	}
}

// printSummary prints the per-role daily summary for this run.
func printSummary(orch *orchestrator.Orchestrator, since time.Time) {
	summary := orch.GetDailySummary(since)
	if len(summary) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Run summary:")
	for role, rs := range summary {
		fmt.Printf("  %-12s %s  %s  %s\n", role,
			color.GreenString("%d completed", rs.Completed),
			color.YellowString("%d escalated", rs.Escalated),
			color.RedString("%d failed", rs.Failed))
	}

	pending := orch.PendingEscalations()
	if len(pending) > 0 {
		fmt.Printf("\n%s pending escalations. Review them with 'orgmux escalations review'.\n",
			color.New(color.FgRed, color.Bold).Sprintf("%d", len(pending)))
	}
}

// demoWorkers builds the built-in demo organization. Handoffs and outputs
// are keyed off simple description checks so escalation and routing paths
// are easy to demonstrate.
func demoWorkers(cfg *config.Config) []worker.Worker {
	workers := []worker.Worker{
		worker.NewScripted("engineering", func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
			lower := strings.ToLower(task.Description)
			if strings.Contains(lower, "deploy") {
				return &models.TaskResult{
					Output: "change ready for deployment",
					Handoff: &models.Handoff{
						FromRole: "engineering",
						ToRole:   "devops",
						Context:  "deploy the change: " + task.Description,
						Priority: task.Priority,
					},
				}, nil
			}
			return &models.TaskResult{Output: "implemented: " + task.Description}, nil
		}),
		worker.NewScripted("support", func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
			lower := strings.ToLower(task.Description)
			if strings.Contains(lower, "bug") || strings.Contains(lower, "broken") {
				return &models.TaskResult{
					Output: "reproduced the issue, needs a code fix",
					Handoff: &models.Handoff{
						FromRole: "support",
						ToRole:   "engineering",
						Context:  "fix reported issue: " + task.Description,
						Priority: models.PriorityHigh,
					},
				}, nil
			}
			return &models.TaskResult{Output: "answered: " + task.Description}, nil
		}),
		worker.NewEcho("devops"),
		worker.NewScripted("finance", func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
			return &models.TaskResult{Output: "processed: " + task.Description}, nil
		}),
		worker.NewScripted("legal", func(_ context.Context, task *models.Task) (*models.TaskResult, error) {
			return &models.TaskResult{Output: "reviewed: " + task.Description}, nil
		}),
	}

	if key, err := config.GetAPIKey(cfg); err == nil || cfg.Anthropic.UseBedrock {
		llm, err := worker.NewLLM(worker.LLMConfig{
			Role:          "analyst",
			System:        "You are a business analyst. Answer concisely. If a request exceeds your authority, reply with a first line of 'ESCALATE: <reason>'.",
			APIKey:        key,
			Model:         anthropic.Model(cfg.Anthropic.Model),
			UseAWSBedrock: cfg.Anthropic.UseBedrock,
			AWSRegion:     cfg.Anthropic.AWSRegion,
			AWSProfile:    cfg.Anthropic.AWSProfile,
		})
		if err == nil {
			workers = append(workers, llm)
		}
	}

	return workers
}
