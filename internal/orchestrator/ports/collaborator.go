// Package ports declares the external contracts the orchestrator depends on:
// model collaborators, the execution backend, trajectory persistence, and
// tracing. Adapters live one package over.
package ports

import (
	"context"
	"encoding/json"

	"tandem/internal/conversation"
)

// Usage captures token accounting for per-participant cost counters.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Cost             float64
}

// Reply is a collaborator's structured response to one filtered view.
// Auxiliary is an opaque reasoning trace carried verbatim into the log.
type Reply struct {
	Content   string
	Auxiliary json.RawMessage
	Usage     *Usage
}

// Collaborator is the model behind one participant. Implementations must be
// side-effect free with respect to the session log: the view is a copy and
// anything a collaborator does to it is discarded.
type Collaborator interface {
	// Query sends the participant's current view and returns its reply.
	Query(ctx context.Context, view []conversation.Message) (Reply, error)
}
