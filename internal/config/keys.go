package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey indicates no Anthropic API key was found in the environment
// or the loaded configuration.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// apiKeyEnvVars are the environment variables consulted for the key, in
// order. They mirror the viper bindings in Load so direct lookups and
// config loading agree on precedence.
var apiKeyEnvVars = []string{"ANTHROPIC_API_KEY", "ORGMUX_ANTHROPIC_API_KEY"}

// GetAPIKey resolves the Anthropic API key for LLM-backed workers.
// Environment variables win over the config file; a config value may
// reference an environment variable with ${VAR} syntax.
func GetAPIKey(cfg *Config) (string, error) {
	for _, name := range apiKeyEnvVars {
		if key := os.Getenv(name); key != "" {
			return key, nil
		}
	}

	if cfg != nil {
		if key := resolveConfiguredKey(cfg.Anthropic.APIKey); key != "" {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// resolveConfiguredKey expands ${VAR} references in a config-file key value.
// A reference that did not resolve is treated as unset.
func resolveConfiguredKey(raw string) string {
	if raw == "" {
		return ""
	}
	key := os.ExpandEnv(raw)
	if key == "" || strings.HasPrefix(key, "${") {
		return ""
	}
	return key
}

// ValidateAPIKey checks that a key looks like an Anthropic key (sk-ant-
// prefix, plausible length). It does not call the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey renders a key for display in `orgmux config` output, keeping
// the sk-ant- prefix and the last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource identifies where GetAPIKey found the key.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource reports where the key would be sourced from, following
// the same precedence as GetAPIKey.
func GetAPIKeySource(cfg *Config) KeySource {
	for _, name := range apiKeyEnvVars {
		if os.Getenv(name) != "" {
			return KeySourceEnv
		}
	}
	if cfg != nil && resolveConfiguredKey(cfg.Anthropic.APIKey) != "" {
		return KeySourceConfig
	}
	return KeySourceNone
}
