package orchestrator

import (
	"tandem/internal/config"
	"tandem/internal/conversation"
)

// CanExecute is the execution gate: it decides whether a participant is
// authorized to trigger tool execution this session. The driver always is;
// the navigator only when the session explicitly allows it. Denial is a
// signaled outcome, not an error: the scheduler converts it into a
// system-note and a bounded retry.
func CanExecute(role conversation.Author, cfg config.SessionConfig) bool {
	switch role {
	case conversation.AuthorDriver:
		return true
	case conversation.AuthorNavigator:
		return cfg.AllowNavigatorExecution
	default:
		return false
	}
}
