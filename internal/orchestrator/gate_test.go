package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tandem/internal/config"
	"tandem/internal/conversation"
)

func TestCanExecute(t *testing.T) {
	var cfg config.SessionConfig

	assert.True(t, CanExecute(conversation.AuthorDriver, cfg),
		"driver is always authorized")
	assert.False(t, CanExecute(conversation.AuthorNavigator, cfg))
	assert.False(t, CanExecute(conversation.AuthorNone, cfg))

	cfg.AllowNavigatorExecution = true
	assert.True(t, CanExecute(conversation.AuthorNavigator, cfg))
	assert.True(t, CanExecute(conversation.AuthorDriver, cfg))
}
