package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/orgmux/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify orgmux configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/orgmux/config.yaml
Project-specific overrides can be placed in .orgmux.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("orchestrator.max_concurrent: %d\n", cfg.Orchestrator.MaxConcurrent)
	fmt.Printf("orchestrator.tick_interval: %s\n", cfg.Orchestrator.TickInterval)
	fmt.Printf("orchestrator.retry_limit: %d\n", cfg.Orchestrator.RetryLimit)
	fmt.Printf("escalation.single_expense_ceiling: %.2f\n", cfg.Escalation.SingleExpenseCeiling)
	fmt.Printf("escalation.contract_ceiling: %.2f\n", cfg.Escalation.ContractCeiling)
	for role, ceiling := range cfg.Escalation.RoleCeilings {
		fmt.Printf("escalation.role_ceilings.%s: %.2f\n", role, ceiling)
	}
	for role, triggers := range cfg.Escalation.RoleTriggers {
		fmt.Printf("escalation.role_triggers.%s: %s\n", role, strings.Join(triggers, ", "))
	}
	fmt.Printf("state.db_path: %s\n", cfg.State.DBPath)
	fmt.Printf("workflows.dir: %s\n", cfg.Workflows.Dir)
	fmt.Printf("workflows.watch: %t\n", cfg.Workflows.Watch)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "orchestrator.max_concurrent":
		return strconv.Itoa(cfg.Orchestrator.MaxConcurrent), nil
	case "orchestrator.tick_interval":
		return cfg.Orchestrator.TickInterval.String(), nil
	case "orchestrator.retry_limit":
		return strconv.Itoa(cfg.Orchestrator.RetryLimit), nil
	case "escalation.single_expense_ceiling":
		return strconv.FormatFloat(cfg.Escalation.SingleExpenseCeiling, 'f', 2, 64), nil
	case "escalation.contract_ceiling":
		return strconv.FormatFloat(cfg.Escalation.ContractCeiling, 'f', 2, 64), nil
	case "state.db_path":
		return cfg.State.DBPath, nil
	case "workflows.dir":
		return cfg.Workflows.Dir, nil
	case "workflows.watch":
		return strconv.FormatBool(cfg.Workflows.Watch), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for use_bedrock: %w", err)
		}
		cfg.Anthropic.UseBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "orchestrator.max_concurrent":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_concurrent: %w", err)
		}
		cfg.Orchestrator.MaxConcurrent = n
	case "orchestrator.tick_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for tick_interval: %w", err)
		}
		cfg.Orchestrator.TickInterval = d
	case "orchestrator.retry_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for retry_limit: %w", err)
		}
		cfg.Orchestrator.RetryLimit = n
	case "escalation.single_expense_ceiling":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid amount for single_expense_ceiling: %w", err)
		}
		cfg.Escalation.SingleExpenseCeiling = f
	case "escalation.contract_ceiling":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid amount for contract_ceiling: %w", err)
		}
		cfg.Escalation.ContractCeiling = f
	case "state.db_path":
		cfg.State.DBPath = value
	case "workflows.dir":
		cfg.Workflows.Dir = value
	case "workflows.watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for workflows.watch: %w", err)
		}
		cfg.Workflows.Watch = b
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
