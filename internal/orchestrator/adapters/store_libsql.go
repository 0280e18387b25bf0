package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tandem/internal/orchestrator/ports"
	"tandem/internal/trajectory"
)

// LibSQLTrajectoryStore persists artifacts in the embedded libsql database.
// The full artifact is stored as a JSON payload alongside a few indexed
// summary columns.
type LibSQLTrajectoryStore struct {
	db       *sql.DB
	validate bool
}

// NewLibSQLTrajectoryStore wraps an already-migrated database handle.
func NewLibSQLTrajectoryStore(db *sql.DB, validate bool) *LibSQLTrajectoryStore {
	return &LibSQLTrajectoryStore{db: db, validate: validate}
}

// Save inserts the artifact. Session IDs are unique; saving the same session
// twice is an error, matching the artifact's immutability.
func (s *LibSQLTrajectoryStore) Save(ctx context.Context, artifact *trajectory.Artifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if s.validate {
		if err := trajectory.Validate(payload); err != nil {
			return fmt.Errorf("artifact %s failed validation: %w", artifact.SessionID, err)
		}
	}

	query := `
		INSERT INTO trajectories (session_id, format_version, termination_reason, turns_used, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		artifact.SessionID,
		artifact.FormatVersion,
		artifact.SessionInfo.TerminationReason,
		artifact.SessionInfo.TurnsUsed,
		string(payload),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save trajectory: %w", err)
	}
	return nil
}

// Load reads one artifact by session ID.
func (s *LibSQLTrajectoryStore) Load(ctx context.Context, sessionID string) (*trajectory.Artifact, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM trajectories WHERE session_id = ?`, sessionID,
	).Scan(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to load trajectory %s: %w", sessionID, err)
	}

	var artifact trajectory.Artifact
	if err := json.Unmarshal([]byte(payload), &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse trajectory %s: %w", sessionID, err)
	}
	return &artifact, nil
}

// List returns session IDs ordered by creation time.
func (s *LibSQLTrajectoryStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id FROM trajectories ORDER BY created_at, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list trajectories: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trajectory row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trajectories: %w", err)
	}
	return ids, nil
}

var _ ports.TrajectoryStore = (*LibSQLTrajectoryStore)(nil)
