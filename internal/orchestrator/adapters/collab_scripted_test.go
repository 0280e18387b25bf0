package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tandem/internal/conversation"
)

func TestScriptedCollaborator_ReplaysInOrder(t *testing.T) {
	c := NewScriptedCollaborator(Script{
		Role: string(conversation.AuthorDriver),
		Steps: []ScriptedStep{
			{Content: "first"},
			{Content: "second", Auxiliary: "thinking about it", Cost: 0.5},
		},
	})

	reply, err := c.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "first", reply.Content)
	assert.Nil(t, reply.Auxiliary)
	assert.Nil(t, reply.Usage)

	reply, err = c.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", reply.Content)
	assert.JSONEq(t, `"thinking about it"`, string(reply.Auxiliary))
	require.NotNil(t, reply.Usage)
	assert.Equal(t, 0.5, reply.Usage.Cost)

	// Exhausted transcripts repeat the final step.
	reply, err = c.Query(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "second", reply.Content)
}

func TestScriptedCollaborator_CanceledContext(t *testing.T) {
	c := NewScriptedCollaborator(Script{Steps: []ScriptedStep{{Content: "x"}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Query(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driver.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
role: driver
steps:
  - content: 'let me look at the failing test'
    auxiliary: 'the stack trace points at the cache'
  - content: '{"command": "go test ./internal/cache"}'
    cost: 0.02
`), 0o644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "driver", script.Role)
	require.Len(t, script.Steps, 2)
	assert.Equal(t, "let me look at the failing test", script.Steps[0].Content)
	assert.Equal(t, 0.02, script.Steps[1].Cost)
}

func TestLoadScript_Errors(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("role: navigator\n"), 0o644))
	_, err = LoadScript(empty)
	assert.ErrorContains(t, err, "no steps")
}
