package trajectory

import (
	"time"

	"tandem/internal/config"
	"tandem/internal/conversation"
)

// Recorder assembles the immutable artifact for a finished session. It never
// filters: downstream consumers apply the visibility projection on read.
type Recorder struct {
	now func() time.Time
}

// NewRecorder returns a Recorder using wall-clock time.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record builds the versioned artifact from the terminal session state and
// the full unredacted log snapshot.
func (r *Recorder) Record(
	sessionID string,
	reason string,
	turnsUsed int,
	stats SessionStats,
	messages []conversation.Message,
	cfg config.SessionConfig,
) *Artifact {
	return &Artifact{
		FormatVersion: FormatVersion,
		SessionID:     sessionID,
		RecordedAt:    r.now().UTC(),
		SessionInfo: SessionInfo{
			TerminationReason: reason,
			TurnsUsed:         turnsUsed,
			MaxTurns:          cfg.MaxTotalTurns,
			Stats:             stats,
		},
		Messages: messages,
		Config:   cfg,
	}
}
