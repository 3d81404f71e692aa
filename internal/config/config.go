package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load reads the configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	expandEnvVars(&cfg)

	return &cfg, nil
}

// applyDefaults fills in default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.Settings.ConfigDir == "" {
		cfg.Settings.ConfigDir = "~/.hive"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.OpenAI.TimeoutSeconds == 0 {
		cfg.LLM.OpenAI.TimeoutSeconds = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Channels.Telegram.SendTimeoutSeconds == 0 {
		cfg.Channels.Telegram.SendTimeoutSeconds = 30
	}
	if cfg.Scheduler.TickSeconds == 0 {
		cfg.Scheduler.TickSeconds = 30
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9090"
	}
	if cfg.MessageBus.Capacity == 0 {
		cfg.MessageBus.Capacity = 64
	}
}

// expandEnvVars expands environment variable references in the configuration.
func expandEnvVars(c *Config) {
	c.LLM.OpenAI.APIKey = expandEnv(c.LLM.OpenAI.APIKey)
	c.Channels.Telegram.Token = expandEnv(c.Channels.Telegram.Token)
	c.Settings.ConfigDir = expandHome(expandEnv(c.Settings.ConfigDir))
	c.Logging.Output = expandHome(c.Logging.Output)
}

// Validate checks the configuration and returns all problems found.
func (c *Config) Validate() []error {
	var errors []error

	if c.Settings.ConfigDir == "" {
		errors = append(errors, fmt.Errorf("settings.config_dir is required"))
	}

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			errors = append(errors, fmt.Errorf("llm.openai.api_key is required when provider is 'openai'"))
		}
	case "mock":
		// No credentials needed; used for local runs and tests.
	default:
		errors = append(errors, fmt.Errorf("invalid llm.provider: %s (expected: openai, mock)", c.LLM.Provider))
	}

	if c.Channels.Telegram.Enabled && c.Channels.Telegram.Token == "" {
		errors = append(errors, fmt.Errorf("channels.telegram.token is required when telegram is enabled"))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errors = append(errors, fmt.Errorf("invalid logging.level: %s (expected: debug, info, warn, error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errors = append(errors, fmt.Errorf("invalid logging.format: %s (expected: json, text)", c.Logging.Format))
	}

	if c.Scheduler.TickSeconds < 1 {
		errors = append(errors, fmt.Errorf("scheduler.tick_seconds must be positive, got %d", c.Scheduler.TickSeconds))
	}

	if c.MessageBus.Capacity < 1 {
		errors = append(errors, fmt.Errorf("message_bus.capacity must be positive, got %d", c.MessageBus.Capacity))
	}

	return errors
}

// SchedulesPath returns the path of the persistent schedule store file.
func (c *Config) SchedulesPath() string {
	return filepath.Join(c.Settings.ConfigDir, "schedules.jsonl")
}

// AgentsDir returns the directory holding per-agent definitions.
func (c *Config) AgentsDir() string {
	return filepath.Join(c.Settings.ConfigDir, "agents")
}

// expandEnv expands a ${VAR} or ${VAR:default} reference.
func expandEnv(s string) string {
	if !strings.HasPrefix(s, "${") {
		return s
	}

	end := strings.Index(s, "}")
	if end == -1 {
		return s
	}

	content := s[2:end]
	if parts := strings.SplitN(content, ":", 2); len(parts) == 2 {
		if val := os.Getenv(parts[0]); val != "" {
			return val
		}
		return parts[1]
	}

	return os.Getenv(content)
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
