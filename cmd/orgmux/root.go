package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/config"
	"github.com/ShayCichocki/orgmux/internal/state"
)

var rootCmd = &cobra.Command{
	Use:   "orgmux",
	Short: "Task Orchestration & Escalation Engine",
	Long: `Orgmux dispatches prioritized tasks across a pool of role-based
workers, retries failures with score decay, routes handoffs between roles,
and escalates decisions that exceed a worker's authority to a human.

Core capabilities:
- Priority-scored task queue with due-date and dependency boosts
- Role-based worker pool under a global concurrency ceiling
- Layered escalation rules (financial ceilings, risk and strategic keywords)
- Synchronous multi-step workflows with conditions and templates
- Persistent task and escalation state in sqlite`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(escalationsCmd)
	rootCmd.AddCommand(workflowsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration, exiting on error. Commands that can run
// without config should not use this.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openDB opens and migrates the state database at the configured path.
func openDB(cfg *config.Config) (*state.DB, error) {
	path := cfg.State.DBPath
	if path == "" {
		path = state.DefaultDBPath()
	}
	db, err := state.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}
