package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Orchestrator.MaxConcurrent != 5 {
		t.Errorf("expected default max_concurrent 5, got %d", cfg.Orchestrator.MaxConcurrent)
	}

	if cfg.Orchestrator.TickInterval != 5*time.Second {
		t.Errorf("expected default tick_interval 5s, got %v", cfg.Orchestrator.TickInterval)
	}

	if cfg.Orchestrator.RetryLimit != 3 {
		t.Errorf("expected default retry_limit 3, got %d", cfg.Orchestrator.RetryLimit)
	}

	if cfg.Escalation.SingleExpenseCeiling != 10000 {
		t.Errorf("expected default single_expense_ceiling 10000, got %v", cfg.Escalation.SingleExpenseCeiling)
	}

	if cfg.Escalation.ContractCeiling != 50000 {
		t.Errorf("expected default contract_ceiling 50000, got %v", cfg.Escalation.ContractCeiling)
	}

	if cfg.Workflows.Dir != "workflows" {
		t.Errorf("expected default workflows dir 'workflows', got %q", cfg.Workflows.Dir)
	}
}

func TestLoadFromPath(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
  model: claude-haiku-4-5
  use_bedrock: true
  aws_region: eu-west-1
  aws_profile: staging
orchestrator:
  max_concurrent: 8
  tick_interval: 2s
  retry_limit: 5
escalation:
  single_expense_ceiling: 20000
  contract_ceiling: 75000
  role_ceilings:
    devops: 5000
    sales: 15000
  role_triggers:
    legal:
      - lawsuit
      - subpoena
state:
  db_path: /tmp/orgmux-test.db
workflows:
  dir: ./flows
  watch: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}

	if cfg.Anthropic.Model != "claude-haiku-4-5" {
		t.Errorf("expected model 'claude-haiku-4-5', got %q", cfg.Anthropic.Model)
	}

	if !cfg.Anthropic.UseBedrock {
		t.Error("expected use_bedrock to be true")
	}

	if cfg.Anthropic.AWSRegion != "eu-west-1" {
		t.Errorf("expected aws_region 'eu-west-1', got %q", cfg.Anthropic.AWSRegion)
	}

	if cfg.Anthropic.AWSProfile != "staging" {
		t.Errorf("expected aws_profile 'staging', got %q", cfg.Anthropic.AWSProfile)
	}

	if cfg.Orchestrator.MaxConcurrent != 8 {
		t.Errorf("expected max_concurrent 8, got %d", cfg.Orchestrator.MaxConcurrent)
	}

	if cfg.Orchestrator.TickInterval != 2*time.Second {
		t.Errorf("expected tick_interval 2s, got %v", cfg.Orchestrator.TickInterval)
	}

	if cfg.Orchestrator.RetryLimit != 5 {
		t.Errorf("expected retry_limit 5, got %d", cfg.Orchestrator.RetryLimit)
	}

	if cfg.Escalation.SingleExpenseCeiling != 20000 {
		t.Errorf("expected single_expense_ceiling 20000, got %v", cfg.Escalation.SingleExpenseCeiling)
	}

	if got := cfg.Escalation.RoleCeilings["devops"]; got != 5000 {
		t.Errorf("expected devops ceiling 5000, got %v", got)
	}

	if got := cfg.Escalation.RoleTriggers["legal"]; len(got) != 2 || got[0] != "lawsuit" {
		t.Errorf("expected legal triggers [lawsuit subpoena], got %v", got)
	}

	if cfg.State.DBPath != "/tmp/orgmux-test.db" {
		t.Errorf("expected db_path '/tmp/orgmux-test.db', got %q", cfg.State.DBPath)
	}

	if cfg.Workflows.Dir != "./flows" {
		t.Errorf("expected workflows dir './flows', got %q", cfg.Workflows.Dir)
	}

	if !cfg.Workflows.Watch {
		t.Error("expected workflows.watch to be true")
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	// A minimal file keeps the built-in defaults for everything it omits.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("anthropic:\n  api_key: k\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Orchestrator.MaxConcurrent != 5 {
		t.Errorf("expected default max_concurrent 5, got %d", cfg.Orchestrator.MaxConcurrent)
	}

	if cfg.Escalation.ContractCeiling != 50000 {
		t.Errorf("expected default contract_ceiling 50000, got %v", cfg.Escalation.ContractCeiling)
	}
}

func TestExpandEnv(t *testing.T) {
	// Set environment variable
	os.Setenv("TEST_VAR", "expanded-value")
	defer os.Unsetenv("TEST_VAR")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	// Test with XDG_CONFIG_HOME set
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := getUserConfigDir()
	expected := "/custom/config/orgmux"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
