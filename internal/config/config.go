// Package config loads application configuration from file or environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tandem/internal/conversation"
)

// Default paths and identifiers shared across subsystems.
const (
	DefaultAppName       = "tandem"
	DefaultConfigPath    = "$HOME/.config/tandem"
	DefaultTrajectoryDir = ".tandem/trajectories"
	DefaultDatabasePath  = ".tandem/tandem.db"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Session      SessionConfig      `mapstructure:"session"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Trajectory   TrajectoryConfig   `mapstructure:"trajectory"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// SessionConfig is the immutable per-session contract between the two
// participants. MaxTotalTurns of zero means unbounded. The json tags match
// the persisted trajectory artifact's config block.
type SessionConfig struct {
	FirstSpeaker                    string `mapstructure:"first_speaker" json:"first_speaker"`
	MaxTotalTurns                   int    `mapstructure:"max_total_turns" json:"max_total_turns"`
	ShowReasoningToOtherParticipant bool   `mapstructure:"show_reasoning_to_other_participant" json:"show_reasoning_to_other_participant"`
	ShowToolActionToNavigator       bool   `mapstructure:"show_tool_action_to_navigator" json:"show_tool_action_to_navigator"`
	ShowToolResultToNavigator       bool   `mapstructure:"show_tool_result_to_navigator" json:"show_tool_result_to_navigator"`
	RequireMutualFinishAgreement    bool   `mapstructure:"require_mutual_finish_agreement" json:"require_mutual_finish_agreement"`
	AllowNavigatorExecution         bool   `mapstructure:"allow_navigator_execution" json:"allow_navigator_execution"`
}

// OrchestratorConfig bounds the scheduling loop.
type OrchestratorConfig struct {
	// RetryLimit bounds same-step retries after a format error or an
	// execution-permission denial.
	RetryLimit int `mapstructure:"retry_limit"`
	// ExecTimeout is the per-command budget for the execution backend.
	ExecTimeout time.Duration `mapstructure:"exec_timeout"`
	// MaxCallsPerParticipant and MaxCostPerParticipant are per-participant
	// budgets; zero disables the corresponding limit.
	MaxCallsPerParticipant int     `mapstructure:"max_calls_per_participant"`
	MaxCostPerParticipant  float64 `mapstructure:"max_cost_per_participant"`
	// EnableTracing switches the zerolog tracer on.
	EnableTracing bool `mapstructure:"enable_tracing"`
}

// TrajectoryConfig selects and parameterizes the trajectory store.
type TrajectoryConfig struct {
	// Backend is "file" or "libsql".
	Backend string `mapstructure:"backend"`
	// Dir receives one JSON artifact per session for the file backend.
	Dir string `mapstructure:"dir"`
	// DatabasePath is the embedded libsql file for the libsql backend.
	DatabasePath string `mapstructure:"database_path"`
	// Validate rejects artifacts that fail schema validation before saving.
	Validate bool `mapstructure:"validate"`
}

// LoggingConfig stores logger settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"` // zerolog level name
}

// FirstSpeakerAuthor resolves the configured first speaker to a participant.
func (c SessionConfig) FirstSpeakerAuthor() (conversation.Author, error) {
	switch strings.ToLower(strings.TrimSpace(c.FirstSpeaker)) {
	case "", string(conversation.AuthorDriver):
		return conversation.AuthorDriver, nil
	case string(conversation.AuthorNavigator):
		return conversation.AuthorNavigator, nil
	default:
		return conversation.AuthorNone, fmt.Errorf("invalid first_speaker %q", c.FirstSpeaker)
	}
}

// Visibility derives the projection rules from the session flags.
func (c SessionConfig) Visibility() conversation.Visibility {
	return conversation.Visibility{
		ShowReasoningToOther:      c.ShowReasoningToOtherParticipant,
		ShowToolActionToNavigator: c.ShowToolActionToNavigator,
		ShowToolResultToNavigator: c.ShowToolResultToNavigator,
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultConfigPath)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Session defaults: driver speaks first, navigator advisory-only, all
	// redaction flags off.
	v.SetDefault("session.first_speaker", string(conversation.AuthorDriver))
	v.SetDefault("session.max_total_turns", 40)
	v.SetDefault("session.show_reasoning_to_other_participant", false)
	v.SetDefault("session.show_tool_action_to_navigator", true)
	v.SetDefault("session.show_tool_result_to_navigator", true)
	v.SetDefault("session.require_mutual_finish_agreement", false)
	v.SetDefault("session.allow_navigator_execution", false)

	// Orchestrator defaults
	v.SetDefault("orchestrator.retry_limit", 1)
	v.SetDefault("orchestrator.exec_timeout", 30*time.Second)
	v.SetDefault("orchestrator.max_calls_per_participant", 0)
	v.SetDefault("orchestrator.max_cost_per_participant", 0.0)
	v.SetDefault("orchestrator.enable_tracing", true)

	// Trajectory defaults
	v.SetDefault("trajectory.backend", "file")
	v.SetDefault("trajectory.dir", DefaultTrajectoryDir)
	v.SetDefault("trajectory.database_path", DefaultDatabasePath)
	v.SetDefault("trajectory.validate", true)

	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(strings.ToUpper(DefaultAppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file falls back to defaults; anything else is fatal.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Session.FirstSpeakerAuthor(); err != nil {
		return err
	}
	if c.Session.MaxTotalTurns < 0 {
		return fmt.Errorf("max_total_turns must be zero (unbounded) or positive, got %d", c.Session.MaxTotalTurns)
	}
	if c.Orchestrator.RetryLimit < 0 {
		return fmt.Errorf("retry_limit must not be negative, got %d", c.Orchestrator.RetryLimit)
	}
	switch c.Trajectory.Backend {
	case "file", "libsql":
	default:
		return fmt.Errorf("unknown trajectory backend %q", c.Trajectory.Backend)
	}
	return nil
}
