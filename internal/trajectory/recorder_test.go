package trajectory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tandem/internal/config"
	"tandem/internal/conversation"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		FirstSpeaker:              string(conversation.AuthorDriver),
		MaxTotalTurns:             20,
		ShowToolActionToNavigator: true,
		ShowToolResultToNavigator: true,
	}
}

func testMessages() []conversation.Message {
	log := conversation.NewLog()
	log.Append(conversation.NewInstruction("migrate the settings table"))
	log.Append(conversation.NewUtterance(conversation.AuthorDriver, `{"command": "cat schema.sql"}`, nil))
	log.Append(conversation.NewToolInvocation(conversation.AuthorDriver, "cat schema.sql"))
	log.Append(conversation.NewToolResult(conversation.AuthorDriver, "CREATE TABLE settings (...)\n[exit status 0]"))
	log.Append(conversation.NewUtterance(conversation.AuthorNavigator, "add the index before backfilling", nil))
	return log.Snapshot()
}

func TestRecorder_BuildsVersionedArtifact(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	r := &Recorder{now: func() time.Time { return fixed }}

	artifact := r.Record("sess-1", ReasonCompleted, 2,
		SessionStats{
			Driver:    ParticipantStats{Calls: 1, Cost: 0.03},
			Navigator: ParticipantStats{Calls: 1, Cost: 0.01},
		},
		testMessages(), testSessionConfig())

	assert.Equal(t, FormatVersion, artifact.FormatVersion)
	assert.Equal(t, "sess-1", artifact.SessionID)
	assert.Equal(t, fixed, artifact.RecordedAt)
	assert.Equal(t, ReasonCompleted, artifact.SessionInfo.TerminationReason)
	assert.Equal(t, 2, artifact.SessionInfo.TurnsUsed)
	assert.Equal(t, 20, artifact.SessionInfo.MaxTurns)
	assert.Equal(t, 1, artifact.SessionInfo.Stats.Driver.Calls)
	assert.Len(t, artifact.Messages, 5)
}

func TestRecorder_ArtifactPassesSchemaValidation(t *testing.T) {
	for _, reason := range []string{ReasonCompleted, ReasonMaxTurnsExceeded, ReasonFatalError} {
		artifact := NewRecorder().Record("sess-2", reason, 3,
			SessionStats{}, testMessages(), testSessionConfig())
		assert.NoError(t, ValidateArtifact(artifact), reason)
	}
}

func TestValidate_RejectsMalformedArtifacts(t *testing.T) {
	assert.Error(t, Validate([]byte("not json")))
	assert.Error(t, Validate([]byte(`{"format_version": "1.0"}`)), "missing required fields")

	artifact := NewRecorder().Record("sess-3", "wandered-off", 1,
		SessionStats{}, testMessages(), testSessionConfig())
	assert.Error(t, ValidateArtifact(artifact), "unknown termination reason")
}

func TestArtifact_ViewReproducesParticipantRedaction(t *testing.T) {
	cfg := testSessionConfig()
	cfg.ShowToolActionToNavigator = false
	cfg.ShowToolResultToNavigator = false

	artifact := NewRecorder().Record("sess-4", ReasonCompleted, 2,
		SessionStats{}, testMessages(), cfg)

	// The stored record itself is unredacted.
	assert.Len(t, artifact.Messages, 5)

	navView := artifact.View(conversation.AuthorNavigator)
	for _, msg := range navView {
		assert.NotEqual(t, conversation.KindToolInvocation, msg.Kind)
		assert.NotEqual(t, conversation.KindToolResult, msg.Kind)
	}
	assert.Len(t, navView, 3)

	// The driver sees its own tool traffic in full.
	driverView := artifact.View(conversation.AuthorDriver)
	assert.Len(t, driverView, 5)
}
