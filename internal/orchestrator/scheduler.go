// Package orchestrator drives the two-party turn loop: it alternates control
// between the driver and navigator collaborators, owns the append-only
// session log, enforces the execution gate, and hands the terminal state to
// the trajectory recorder on every exit path.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tandem/internal/config"
	"tandem/internal/conversation"
	"tandem/internal/orchestrator/ports"
	"tandem/internal/trajectory"
)

// State is the scheduler's coarse lifecycle position.
type State int

const (
	StateAwaitingTurn State = iota
	StateExecuting
	StateAwaitingConfirmation
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingTurn:
		return "awaiting-turn"
	case StateExecuting:
		return "executing"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Participant binds one role to its model collaborator.
type Participant struct {
	Role         conversation.Author
	Collaborator ports.Collaborator
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	Reason    string
	TurnsUsed int
	Artifact  *trajectory.Artifact
}

// Scheduler owns session state: no other component writes the current
// speaker, the turn count, or the termination status. Each session runs
// strictly sequentially; the only suspension points are collaborator queries
// and command execution.
type Scheduler struct {
	session config.SessionConfig
	opts    config.OrchestratorConfig

	log           *conversation.Log
	collaborators map[conversation.Author]ports.Collaborator
	executor      ports.Executor
	recorder      *trajectory.Recorder
	store         ports.TrajectoryStore
	tracer        ports.Tracer
	parser        *ReplyParser

	sessionID string
	state     State
	current   conversation.Author
	turnCount int
	reason    string
	stats     map[conversation.Author]*trajectory.ParticipantStats

	// pendingFinish holds the participant whose completion signal awaits
	// the other party's confirmation.
	pendingFinish conversation.Author
}

// NewScheduler wires a scheduler for one session. The store may be nil when
// the caller persists the returned artifact itself.
func NewScheduler(
	session config.SessionConfig,
	opts config.OrchestratorConfig,
	driver ports.Collaborator,
	navigator ports.Collaborator,
	executor ports.Executor,
	store ports.TrajectoryStore,
	tracer ports.Tracer,
) (*Scheduler, error) {
	first, err := session.FirstSpeakerAuthor()
	if err != nil {
		return nil, err
	}
	if driver == nil || navigator == nil {
		return nil, errors.New("both collaborators are required")
	}
	if tracer == nil {
		tracer = ports.NopTracer{}
	}

	return &Scheduler{
		session: session,
		opts:    opts,
		log:     conversation.NewLog(),
		collaborators: map[conversation.Author]ports.Collaborator{
			conversation.AuthorDriver:    driver,
			conversation.AuthorNavigator: navigator,
		},
		executor:  executor,
		recorder:  trajectory.NewRecorder(),
		store:     store,
		tracer:    tracer,
		parser:    NewReplyParser(),
		sessionID: uuid.NewString(),
		state:     StateAwaitingTurn,
		current:   first,
		stats: map[conversation.Author]*trajectory.ParticipantStats{
			conversation.AuthorDriver:    {},
			conversation.AuthorNavigator: {},
		},
	}, nil
}

// SessionID returns the generated session identifier.
func (s *Scheduler) SessionID() string { return s.sessionID }

// Log exposes the canonical session log for read-only snapshotting.
func (s *Scheduler) Log() *conversation.Log { return s.log }

// Run executes the session to termination and persists the trajectory.
// Persist-on-exit is unconditional: fatal collaborator errors and exhausted
// budgets still produce a complete artifact with the partial log.
func (s *Scheduler) Run(ctx context.Context, task string) (*Result, error) {
	ctx, finish := s.tracer.StartSpan(ctx, "session", map[string]any{
		"session_id":    s.sessionID,
		"first_speaker": string(s.current),
	})

	s.log.Append(conversation.NewInstruction(task))

	var runErr error
	for s.state != StateTerminated {
		s.step(ctx)
	}
	if s.reason == trajectory.ReasonFatalError {
		runErr = fmt.Errorf("session %s terminated: %s", s.sessionID, s.reason)
	}
	finish(runErr)

	artifact := s.recorder.Record(
		s.sessionID,
		s.reason,
		s.turnCount,
		trajectory.SessionStats{
			Driver:    *s.stats[conversation.AuthorDriver],
			Navigator: *s.stats[conversation.AuthorNavigator],
		},
		s.log.Snapshot(),
		s.session,
	)

	if s.store != nil {
		if err := s.store.Save(ctx, artifact); err != nil {
			s.tracer.Event(ctx, "trajectory_save_failed", map[string]any{"error": err.Error()})
			if runErr == nil {
				runErr = fmt.Errorf("failed to persist trajectory: %w", err)
			}
		}
	}

	return &Result{
		SessionID: s.sessionID,
		Reason:    s.reason,
		TurnsUsed: s.turnCount,
		Artifact:  artifact,
	}, runErr
}

// step runs one scheduling step: a normal turn or a confirmation turn.
func (s *Scheduler) step(ctx context.Context) {
	if s.state == StateAwaitingConfirmation {
		s.confirmationTurn(ctx)
		return
	}
	s.normalTurn(ctx)
}

// normalTurn drives one complete query/response cycle for the current
// speaker. Recoverable conditions retry within the same scheduling step, so
// the alternation invariant holds no matter how many internal attempts a
// turn needs.
func (s *Scheduler) normalTurn(ctx context.Context) {
	role := s.current
	ctx, finish := s.tracer.StartSpan(ctx, "turn", map[string]any{
		"role": string(role),
		"turn": s.turnCount,
	})
	defer finish(nil)

	finished := false
	for attempt := 0; ; attempt++ {
		reply, ok := s.query(ctx, role)
		if !ok {
			return // fatal, already terminated
		}

		dir, err := s.parser.ParseReply(reply.Content)
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			s.report(ctx, role, OutcomeFormatError, formatErr.Error())
			if attempt < s.opts.RetryLimit {
				continue
			}
			// Retry ceiling reached: keep the raw reply as an utterance so
			// the trajectory shows what the collaborator actually said.
			s.log.Append(conversation.NewUtterance(role, reply.Content, reply.Auxiliary))
			break
		}

		if dir.Action != nil {
			if !CanExecute(role, s.session) {
				s.report(ctx, role, OutcomePermissionDenied,
					fmt.Sprintf("permission denied: %s is not authorized to execute commands", role))
				if attempt < s.opts.RetryLimit {
					continue
				}
				s.log.Append(conversation.NewUtterance(role, reply.Content, reply.Auxiliary))
				break
			}

			s.state = StateExecuting
			s.log.Append(conversation.NewUtterance(role, reply.Content, reply.Auxiliary))
			s.log.Append(conversation.NewToolInvocation(role, dir.Action.Command))
			s.execute(ctx, role, *dir.Action)
			s.state = StateAwaitingTurn
			finished = dir.Finish
			break
		}

		s.log.Append(conversation.NewUtterance(role, reply.Content, reply.Auxiliary))
		finished = dir.Finish
		break
	}

	s.advance(ctx, role, finished)
}

// execute runs an approved action against the backend and appends the
// observation. Timeouts and command failures are observations, not faults.
func (s *Scheduler) execute(ctx context.Context, role conversation.Author, action ports.Action) {
	execCtx := ctx
	if s.opts.ExecTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, s.opts.ExecTimeout)
		defer cancel()
	}

	res, err := s.executor.Execute(execCtx, action)
	switch {
	case errors.Is(err, ports.ErrExecTimeout) || errors.Is(err, context.DeadlineExceeded):
		s.tracer.Event(ctx, "exec_timeout", map[string]any{"command": action.Command})
		s.log.Append(conversation.NewToolResult(role,
			fmt.Sprintf("execution timed out after %s", s.opts.ExecTimeout)))
	case err != nil:
		s.log.Append(conversation.NewToolResult(role, fmt.Sprintf("execution error: %v", err)))
	default:
		s.log.Append(conversation.NewToolResult(role,
			fmt.Sprintf("%s\n[exit status %d]", res.Output, res.StatusCode)))
	}
}

// advance applies the end-of-turn bookkeeping: count the turn, enforce the
// cap, start the finish protocol, or hand control to the other participant.
func (s *Scheduler) advance(ctx context.Context, role conversation.Author, finished bool) {
	s.turnCount++

	if finished && !s.session.RequireMutualFinishAgreement {
		s.terminate(ctx, trajectory.ReasonCompleted)
		return
	}

	if s.capReached() {
		s.terminate(ctx, trajectory.ReasonMaxTurnsExceeded)
		return
	}

	if finished {
		s.pendingFinish = role
		s.state = StateAwaitingConfirmation
		s.log.Append(conversation.NewSystemNote(conversation.AuthorNone,
			fmt.Sprintf("%s has signaled task completion; reply with {\"confirm\": true} to agree or {\"confirm\": false} to continue", role)))
		s.current = role.Other()
		return
	}

	s.current = role.Other()
}

// confirmationTurn grants the non-finishing participant one turn with an
// explicit confirm/reject choice. A rejection counts as that participant's
// turn and normal alternation resumes with the finisher next.
func (s *Scheduler) confirmationTurn(ctx context.Context) {
	role := s.current
	ctx, finish := s.tracer.StartSpan(ctx, "confirmation_turn", map[string]any{
		"role":      string(role),
		"finishing": string(s.pendingFinish),
	})
	defer finish(nil)

	for attempt := 0; ; attempt++ {
		reply, ok := s.query(ctx, role)
		if !ok {
			return
		}

		confirmed, err := s.parser.ParseConfirmation(reply.Content)
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			s.report(ctx, role, OutcomeFormatError, formatErr.Error())
			if attempt < s.opts.RetryLimit {
				continue
			}
			// No explicit choice after retries: treat as rejection so the
			// session keeps going rather than silently completing.
			confirmed = false
			reply.Content = reply.Content + "\n[no explicit confirmation parsed]"
		}

		s.log.Append(conversation.NewUtterance(role, reply.Content, reply.Auxiliary))
		s.turnCount++

		if confirmed {
			s.terminate(ctx, trajectory.ReasonCompleted)
			return
		}

		s.log.Append(conversation.NewSystemNote(conversation.AuthorNone,
			fmt.Sprintf("%s rejected the finish request; the session continues", role)))

		if s.capReached() {
			s.terminate(ctx, trajectory.ReasonMaxTurnsExceeded)
			return
		}

		// The rejector has effectively taken this turn; the finisher speaks
		// next and alternation continues from there.
		s.current = s.pendingFinish
		s.pendingFinish = conversation.AuthorNone
		s.state = StateAwaitingTurn
		return
	}
}

// query calls one collaborator with its filtered view and applies stats and
// budget accounting. A false return means the session was terminated.
func (s *Scheduler) query(ctx context.Context, role conversation.Author) (ports.Reply, bool) {
	view := conversation.Project(s.log.Snapshot(), role, s.session.Visibility())

	reply, err := s.collaborators[role].Query(ctx, view)
	if err != nil {
		s.log.Append(conversation.NewSystemNote(conversation.AuthorNone,
			fmt.Sprintf("fatal collaborator error (%s): %v", role, err)))
		s.tracer.Event(ctx, "collaborator_error", map[string]any{"role": string(role), "error": err.Error()})
		s.terminate(ctx, trajectory.ReasonFatalError)
		return ports.Reply{}, false
	}

	stats := s.stats[role]
	stats.Calls++
	if reply.Usage != nil {
		stats.Cost += reply.Usage.Cost
	}

	if s.budgetExceeded(role) {
		s.log.Append(conversation.NewSystemNote(conversation.AuthorNone,
			fmt.Sprintf("%s for %s: calls=%d cost=%.4f", OutcomeLimitsExceeded, role, stats.Calls, stats.Cost)))
		s.terminate(ctx, trajectory.ReasonFatalError)
		return ports.Reply{}, false
	}

	return reply, true
}

// report appends a participant-scoped system-note for a recoverable outcome
// so it reaches that participant's next view.
func (s *Scheduler) report(ctx context.Context, role conversation.Author, outcome Outcome, detail string) {
	s.tracer.Event(ctx, string(outcome), map[string]any{"role": string(role)})
	s.log.Append(conversation.NewSystemNote(role, detail))
}

func (s *Scheduler) budgetExceeded(role conversation.Author) bool {
	stats := s.stats[role]
	if s.opts.MaxCallsPerParticipant > 0 && stats.Calls > s.opts.MaxCallsPerParticipant {
		return true
	}
	if s.opts.MaxCostPerParticipant > 0 && stats.Cost > s.opts.MaxCostPerParticipant {
		return true
	}
	return false
}

func (s *Scheduler) capReached() bool {
	return s.session.MaxTotalTurns > 0 && s.turnCount >= s.session.MaxTotalTurns
}

func (s *Scheduler) terminate(ctx context.Context, reason string) {
	s.state = StateTerminated
	s.reason = reason
	s.tracer.Event(ctx, "terminated", map[string]any{"reason": reason, "turns": s.turnCount})
}
