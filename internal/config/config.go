// Package config handles configuration loading and management for orgmux.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for orgmux.
type Config struct {
	Anthropic    AnthropicConfig    `mapstructure:"anthropic"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Escalation   EscalationConfig   `mapstructure:"escalation"`
	State        StateConfig        `mapstructure:"state"`
	Workflows    WorkflowsConfig    `mapstructure:"workflows"`
}

// AnthropicConfig holds Anthropic API settings for LLM-backed workers.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	// AWSRegion is the Bedrock region; empty defers to the AWS SDK defaults.
	AWSRegion string `mapstructure:"aws_region"`
	// AWSProfile is the shared-config profile used for Bedrock credentials.
	AWSProfile string `mapstructure:"aws_profile"`
}

// OrchestratorConfig holds dispatch loop settings.
type OrchestratorConfig struct {
	// MaxConcurrent caps simultaneously executing tasks across all roles.
	MaxConcurrent int `mapstructure:"max_concurrent"`
	// TickInterval is the dispatch loop period.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// RetryLimit is the failure count at which a task becomes terminal.
	RetryLimit int `mapstructure:"retry_limit"`
}

// EscalationConfig holds escalation rule engine settings.
type EscalationConfig struct {
	// SingleExpenseCeiling is the global amount above which any task escalates.
	SingleExpenseCeiling float64 `mapstructure:"single_expense_ceiling"`
	// ContractCeiling applies to tasks that mention contracts.
	ContractCeiling float64 `mapstructure:"contract_ceiling"`
	// RoleCeilings maps a role to its spending authority.
	RoleCeilings map[string]float64 `mapstructure:"role_ceilings"`
	// RoleTriggers maps a role to keywords that force escalation for it.
	RoleTriggers map[string][]string `mapstructure:"role_triggers"`
}

// StateConfig holds persistence settings.
type StateConfig struct {
	// DBPath is the sqlite database location; empty means the XDG default.
	DBPath string `mapstructure:"db_path"`
}

// WorkflowsConfig holds workflow definition settings.
type WorkflowsConfig struct {
	// Dir is the directory of YAML workflow definitions.
	Dir string `mapstructure:"dir"`
	// Watch enables hot reload of definitions on file change.
	Watch bool `mapstructure:"watch"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ORGMUX_*, ANTHROPIC_API_KEY)
// 2. Project config (.orgmux.yaml in current directory or parent)
// 3. User config (~/.config/orgmux/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("ORGMUX")
	v.AutomaticEnv()

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY", "ORGMUX_ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.aws_region", "ORGMUX_AWS_REGION")
	v.BindEnv("anthropic.aws_profile", "ORGMUX_AWS_PROFILE")
	v.BindEnv("orchestrator.max_concurrent", "ORGMUX_MAX_CONCURRENT")
	v.BindEnv("orchestrator.tick_interval", "ORGMUX_TICK_INTERVAL")
	v.BindEnv("state.db_path", "ORGMUX_DB_PATH")
	v.BindEnv("workflows.dir", "ORGMUX_WORKFLOWS_DIR")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("orchestrator.max_concurrent", cfg.Orchestrator.MaxConcurrent)
	v.Set("orchestrator.tick_interval", cfg.Orchestrator.TickInterval.String())
	v.Set("orchestrator.retry_limit", cfg.Orchestrator.RetryLimit)
	v.Set("escalation.single_expense_ceiling", cfg.Escalation.SingleExpenseCeiling)
	v.Set("escalation.contract_ceiling", cfg.Escalation.ContractCeiling)
	v.Set("escalation.role_ceilings", cfg.Escalation.RoleCeilings)
	v.Set("escalation.role_triggers", cfg.Escalation.RoleTriggers)
	v.Set("state.db_path", cfg.State.DBPath)
	v.Set("workflows.dir", cfg.Workflows.Dir)
	v.Set("workflows.watch", cfg.Workflows.Watch)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "")
	v.SetDefault("anthropic.aws_profile", "")

	v.SetDefault("orchestrator.max_concurrent", 5)
	v.SetDefault("orchestrator.tick_interval", "5s")
	v.SetDefault("orchestrator.retry_limit", 3)

	v.SetDefault("escalation.single_expense_ceiling", 10000.0)
	v.SetDefault("escalation.contract_ceiling", 50000.0)
	v.SetDefault("escalation.role_ceilings", map[string]float64{})
	v.SetDefault("escalation.role_triggers", map[string][]string{})

	v.SetDefault("state.db_path", "")

	v.SetDefault("workflows.dir", "workflows")
	v.SetDefault("workflows.watch", false)
}

// getUserConfigDir returns the XDG config directory for orgmux.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "orgmux")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "orgmux")
	}
	return filepath.Join(home, ".config", "orgmux")
}

// findProjectConfig searches for .orgmux.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".orgmux.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			APIKey: "",
			Model:  "claude-sonnet-4-5",
		},
		Orchestrator: OrchestratorConfig{
			MaxConcurrent: 5,
			TickInterval:  5 * time.Second,
			RetryLimit:    3,
		},
		Escalation: EscalationConfig{
			SingleExpenseCeiling: 10000,
			ContractCeiling:      50000,
			RoleCeilings:         map[string]float64{},
			RoleTriggers:         map[string][]string{},
		},
		Workflows: WorkflowsConfig{
			Dir: "workflows",
		},
	}
}
