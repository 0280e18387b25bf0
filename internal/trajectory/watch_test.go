package trajectory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReportsFinalizedArtifacts(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := Watch(ctx, dir, os.ReadFile)
	require.NoError(t, err)

	artifact := NewRecorder().Record("sess-watch", ReasonCompleted, 1,
		SessionStats{}, testMessages(), testSessionConfig())
	data, err := json.Marshal(artifact)
	require.NoError(t, err)

	// Temp write plus rename, the way the file store finalizes.
	tmp := filepath.Join(dir, "sess-watch.json.tmp")
	require.NoError(t, os.WriteFile(tmp, data, 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "sess-watch.json")))

	select {
	case ev := <-events:
		assert.NoError(t, ev.Err)
		assert.Equal(t, "sess-watch", ev.SessionID)
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received")
	}

	// An invalid artifact surfaces as an event error, not a dropped file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o644))
	select {
	case ev := <-events:
		assert.Error(t, ev.Err)
		assert.Equal(t, "broken", ev.SessionID)
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received for invalid artifact")
	}

	cancel()
}

func TestWatch_MissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "absent"), os.ReadFile)
	assert.Error(t, err)
}
