// Package config provides configuration loading and validation for Hive.
// It supports a TOML settings file with environment variable expansion,
// default values, and validation, plus per-agent YAML configuration files
// kept in an agents directory.
//
// Settings file structure:
//   - [settings]: Config directory holding agents and the schedule store
//   - [llm]: Completion provider configuration (OpenAI-compatible)
//   - [logging]: Logging level, format, and output
//   - [channels]: Channel configurations (Telegram)
//   - [scheduler]: Schedule runner tick period
//   - [metrics]: Prometheus metrics listener
//   - [message_bus]: Message queue capacity
//
// Environment variables can be referenced using ${VAR} or ${VAR:default}
// syntax, for example: api_key = "${OPENAI_API_KEY}".
package config

// Config represents the main application configuration.
type Config struct {
	Settings   SettingsConfig   `toml:"settings"`
	LLM        LLMConfig        `toml:"llm"`
	Logging    LoggingConfig    `toml:"logging"`
	Channels   ChannelsConfig   `toml:"channels"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Metrics    MetricsConfig    `toml:"metrics"`
	MessageBus MessageBusConfig `toml:"message_bus"`
}

// SettingsConfig holds paths for agent definitions and persistent state.
type SettingsConfig struct {
	// ConfigDir is the directory holding agents/<name>/ definitions and
	// the schedules file. Defaults to ~/.hive.
	ConfigDir string `toml:"config_dir"`
}

// LLMConfig holds the default completion provider configuration.
// Individual agents may override the model.
type LLMConfig struct {
	Provider string       `toml:"provider"` // "openai" or "mock"
	OpenAI   OpenAIConfig `toml:"openai"`
}

// OpenAIConfig holds configuration for an OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// ChannelsConfig holds channel configurations.
type ChannelsConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

// TelegramConfig holds the Telegram channel configuration.
type TelegramConfig struct {
	Enabled            bool     `toml:"enabled"`
	Token              string   `toml:"token"`
	AllowedChats       []string `toml:"allowed_chats"`
	SendTimeoutSeconds int      `toml:"send_timeout_seconds"`
}

// SchedulerConfig holds the schedule runner configuration.
type SchedulerConfig struct {
	TickSeconds int `toml:"tick_seconds"`
}

// MetricsConfig holds the Prometheus metrics listener configuration.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// MessageBusConfig holds message queue capacity settings.
type MessageBusConfig struct {
	Capacity int `toml:"capacity"`
}

// AgentConfig describes one agent persona, loaded from
// agents/<name>/agent.yaml inside the config directory.
type AgentConfig struct {
	Name   string       `yaml:"name"`
	Soul   string       `yaml:"soul"`   // path to the soul file, relative to the agent dir
	Skills []string     `yaml:"skills"` // declared skills shown to teammates
	Tools  []ToolConfig `yaml:"tools"`
	Model  string       `yaml:"model"` // optional model override

	// SoulText is the loaded content of the soul file. Populated by LoadAgents.
	SoulText string `yaml:"-"`
}

// ToolConfig describes one tool an agent may use.
type ToolConfig struct {
	Name        string   `yaml:"name"`
	Enabled     bool     `yaml:"enabled"`
	Endpoint    string   `yaml:"endpoint"` // bridge endpoint, empty means unconnected
	Permissions []string `yaml:"permissions"`
}
