// Package trajectory defines the persisted session artifact: the full
// unredacted message sequence plus session metadata, versioned so downstream
// viewers can reconstruct any participant's redacted view after the fact.
package trajectory

import (
	"time"

	"tandem/internal/config"
	"tandem/internal/conversation"
)

// FormatVersion identifies the artifact schema revision.
const FormatVersion = "1.0"

// Termination reasons recorded in session_info.
const (
	ReasonCompleted        = "completed"
	ReasonMaxTurnsExceeded = "max-turns-exceeded"
	ReasonFatalError       = "fatal-error"
)

// ParticipantStats counts collaborator calls and accumulated cost for one
// participant.
type ParticipantStats struct {
	Calls int     `json:"calls"`
	Cost  float64 `json:"cost"`
}

// SessionStats keys per-participant counters by role.
type SessionStats struct {
	Driver    ParticipantStats `json:"driver"`
	Navigator ParticipantStats `json:"navigator"`
}

// SessionInfo summarizes how the session ended.
type SessionInfo struct {
	TerminationReason string       `json:"termination_reason"`
	TurnsUsed         int          `json:"turns_used"`
	MaxTurns          int          `json:"max_turns"`
	Stats             SessionStats `json:"stats"`
}

// Artifact is the immutable persisted record of one session. Messages are
// unredacted; each is tagged with author and turn_index so redaction can be
// reconstructed later by any viewer-specific projection.
type Artifact struct {
	FormatVersion string                 `json:"format_version"`
	SessionID     string                 `json:"session_id"`
	RecordedAt    time.Time              `json:"recorded_at"`
	SessionInfo   SessionInfo            `json:"session_info"`
	Messages      []conversation.Message `json:"messages"`
	Config        config.SessionConfig   `json:"config"`
}

// View applies the session's own visibility rules to the stored messages,
// reproducing what the given participant saw during the session.
func (a *Artifact) View(viewer conversation.Author) []conversation.Message {
	return conversation.Project(a.Messages, viewer, a.Config.Visibility())
}
