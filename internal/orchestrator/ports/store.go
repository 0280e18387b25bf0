package ports

import (
	"context"

	"tandem/internal/trajectory"
)

// TrajectoryStore persists finished session artifacts. Stores never filter:
// they receive and return the full unredacted record.
type TrajectoryStore interface {
	Save(ctx context.Context, artifact *trajectory.Artifact) error
	Load(ctx context.Context, sessionID string) (*trajectory.Artifact, error)
	List(ctx context.Context) ([]string, error)
}
