package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/config"
	"tandem/internal/conversation"
	"tandem/internal/trajectory"
)

func sampleArtifact(sessionID string) *trajectory.Artifact {
	log := conversation.NewLog()
	log.Append(conversation.NewInstruction("fix the flaky cache test"))
	log.Append(conversation.NewUtterance(conversation.AuthorDriver, "starting with the eviction path", nil))
	log.Append(conversation.NewUtterance(conversation.AuthorNavigator, "check the clock injection first", nil))

	return trajectory.NewRecorder().Record(
		sessionID,
		trajectory.ReasonCompleted,
		2,
		trajectory.SessionStats{
			Driver:    trajectory.ParticipantStats{Calls: 1, Cost: 0.01},
			Navigator: trajectory.ParticipantStats{Calls: 1, Cost: 0.01},
		},
		log.Snapshot(),
		config.SessionConfig{
			FirstSpeaker:              string(conversation.AuthorDriver),
			MaxTotalTurns:             10,
			ShowToolActionToNavigator: true,
			ShowToolResultToNavigator: true,
		},
	)
}

func TestFileTrajectoryStore_SaveLoadList(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileTrajectoryStore(dir, true)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleArtifact("session-b")))
	require.NoError(t, store.Save(ctx, sampleArtifact("session-a")))

	loaded, err := store.Load(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, "session-a", loaded.SessionID)
	assert.Equal(t, trajectory.ReasonCompleted, loaded.SessionInfo.TerminationReason)
	assert.Equal(t, 2, loaded.SessionInfo.TurnsUsed)
	require.Len(t, loaded.Messages, 3)
	assert.Equal(t, conversation.KindInstruction, loaded.Messages[0].Kind)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-a", "session-b"}, ids)

	// Atomic write leaves no temp files behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, ".json", filepath.Ext(entry.Name()))
	}
}

func TestFileTrajectoryStore_ValidationRejectsBadArtifact(t *testing.T) {
	store, err := NewFileTrajectoryStore(t.TempDir(), true)
	require.NoError(t, err)

	bad := sampleArtifact("session-bad")
	bad.SessionInfo.TerminationReason = "gave-up" // not in the schema enum

	err = store.Save(context.Background(), bad)
	require.Error(t, err)
	assert.ErrorContains(t, err, "validation")
}

func TestFileTrajectoryStore_LoadMissing(t *testing.T) {
	store, err := NewFileTrajectoryStore(t.TempDir(), false)
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "nope")
	assert.Error(t, err)
}
