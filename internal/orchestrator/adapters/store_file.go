package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tandem/internal/orchestrator/ports"
	"tandem/internal/trajectory"
)

// FileTrajectoryStore persists one pretty-printed JSON artifact per session
// under a directory.
type FileTrajectoryStore struct {
	dir      string
	validate bool
}

// NewFileTrajectoryStore creates the directory if needed.
func NewFileTrajectoryStore(dir string, validate bool) (*FileTrajectoryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create trajectory directory %s: %w", dir, err)
	}
	return &FileTrajectoryStore{dir: dir, validate: validate}, nil
}

// Save writes the artifact atomically (temp file + rename).
func (s *FileTrajectoryStore) Save(ctx context.Context, artifact *trajectory.Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	if s.validate {
		if err := trajectory.Validate(data); err != nil {
			return fmt.Errorf("artifact %s failed validation: %w", artifact.SessionID, err)
		}
	}

	final := s.path(artifact.SessionID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	return nil
}

// Load reads one artifact by session ID.
func (s *FileTrajectoryStore) Load(ctx context.Context, sessionID string) (*trajectory.Artifact, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", sessionID, err)
	}
	var artifact trajectory.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", sessionID, err)
	}
	return &artifact, nil
}

// List returns the stored session IDs in lexical order.
func (s *FileTrajectoryStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list trajectory directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileTrajectoryStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

var _ ports.TrajectoryStore = (*FileTrajectoryStore)(nil)
