package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/conversation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, string(conversation.AuthorDriver), cfg.Session.FirstSpeaker)
	assert.Equal(t, 40, cfg.Session.MaxTotalTurns)
	assert.False(t, cfg.Session.ShowReasoningToOtherParticipant)
	assert.True(t, cfg.Session.ShowToolActionToNavigator)
	assert.True(t, cfg.Session.ShowToolResultToNavigator)
	assert.False(t, cfg.Session.AllowNavigatorExecution)

	assert.Equal(t, 1, cfg.Orchestrator.RetryLimit)
	assert.Equal(t, 30*time.Second, cfg.Orchestrator.ExecTimeout)

	assert.Equal(t, "file", cfg.Trajectory.Backend)
	assert.True(t, cfg.Trajectory.Validate)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := writeConfig(t, `
session:
  first_speaker: navigator
  max_total_turns: 8
  require_mutual_finish_agreement: true
orchestrator:
  retry_limit: 2
  exec_timeout: 5s
trajectory:
  backend: libsql
  database_path: /tmp/t.db
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "navigator", cfg.Session.FirstSpeaker)
	assert.Equal(t, 8, cfg.Session.MaxTotalTurns)
	assert.True(t, cfg.Session.RequireMutualFinishAgreement)
	assert.Equal(t, 2, cfg.Orchestrator.RetryLimit)
	assert.Equal(t, 5*time.Second, cfg.Orchestrator.ExecTimeout)
	assert.Equal(t, "libsql", cfg.Trajectory.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad first speaker", "session:\n  first_speaker: observer\n"},
		{"negative turn cap", "session:\n  max_total_turns: -1\n"},
		{"negative retry limit", "orchestrator:\n  retry_limit: -2\n"},
		{"unknown backend", "trajectory:\n  backend: s3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSessionConfig_FirstSpeakerAuthor(t *testing.T) {
	author, err := SessionConfig{}.FirstSpeakerAuthor()
	require.NoError(t, err)
	assert.Equal(t, conversation.AuthorDriver, author, "empty defaults to driver")

	author, err = SessionConfig{FirstSpeaker: " Navigator "}.FirstSpeakerAuthor()
	require.NoError(t, err)
	assert.Equal(t, conversation.AuthorNavigator, author)

	_, err = SessionConfig{FirstSpeaker: "referee"}.FirstSpeakerAuthor()
	assert.Error(t, err)
}

func TestSessionConfig_Visibility(t *testing.T) {
	cfg := SessionConfig{
		ShowReasoningToOtherParticipant: true,
		ShowToolResultToNavigator:       true,
	}
	vis := cfg.Visibility()
	assert.True(t, vis.ShowReasoningToOther)
	assert.False(t, vis.ShowToolActionToNavigator)
	assert.True(t, vis.ShowToolResultToNavigator)
}
