package ports

import (
	"context"
	"errors"
)

// ErrExecTimeout reports that a command exceeded its allotted time. It is a
// recoverable condition: the scheduler turns it into an observation for the
// active participant, not a session fault.
var ErrExecTimeout = errors.New("execution timed out")

// Action is a tool-execution request extracted from a collaborator reply.
type Action struct {
	// Command is the shell command to run in the sandboxed backend.
	Command string
}

// ExecResult is the backend's observation for one action.
type ExecResult struct {
	Output     string
	StatusCode int
}

// Executor is the sandboxed command-execution backend shared by the session.
// It must only be invoked after the execution gate has approved the caller.
type Executor interface {
	Execute(ctx context.Context, action Action) (ExecResult, error)
}
