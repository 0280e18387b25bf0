package orchestrator

import "fmt"

// Outcome classifies how a scheduling step resolved. Recoverable outcomes
// are converted into log messages and bounded retries; fatal outcomes
// terminate the session. Nothing in this taxonomy escapes the scheduler as
// a raised error.
type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeFormatError       Outcome = "format-error"
	OutcomePermissionDenied  Outcome = "permission-denied"
	OutcomeExecutionTimeout  Outcome = "execution-timeout"
	OutcomeLimitsExceeded    Outcome = "limits-exceeded"
	OutcomeFatalCollaborator Outcome = "fatal-collaborator-error"
)

// Fatal reports whether the outcome forces session termination.
func (o Outcome) Fatal() bool {
	return o == OutcomeLimitsExceeded || o == OutcomeFatalCollaborator
}

// FormatError reports a collaborator reply that could not be parsed as a
// directive. It is recovered locally: reported back to the same participant
// and retried within a bounded ceiling.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s", e.Reason)
}
