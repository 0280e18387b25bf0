package orchestrator

import (
	"fmt"

	"github.com/rs/zerolog"

	"tandem/internal/config"
	"tandem/internal/db"
	"tandem/internal/orchestrator/adapters"
	"tandem/internal/orchestrator/ports"
)

// Factory creates and wires scheduler components from configuration.
type Factory struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// NewFactory creates a new scheduler factory.
func NewFactory(cfg *config.Config, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateTracer returns the zerolog tracer, or a no-op one when tracing is
// disabled.
func (f *Factory) CreateTracer() ports.Tracer {
	if !f.cfg.Orchestrator.EnableTracing {
		return ports.NopTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

// CreateStore builds the configured trajectory store. The returned closer
// releases the underlying database handle for the libsql backend and is a
// no-op for the file backend.
func (f *Factory) CreateStore() (ports.TrajectoryStore, func() error, error) {
	switch f.cfg.Trajectory.Backend {
	case "file":
		store, err := adapters.NewFileTrajectoryStore(f.cfg.Trajectory.Dir, f.cfg.Trajectory.Validate)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case "libsql":
		handle, err := db.Connect(f.cfg.Trajectory.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return adapters.NewLibSQLTrajectoryStore(handle, f.cfg.Trajectory.Validate), handle.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown trajectory backend %q", f.cfg.Trajectory.Backend)
	}
}

// CreateScheduler wires a fully configured scheduler for one session.
func (f *Factory) CreateScheduler(
	driver ports.Collaborator,
	navigator ports.Collaborator,
	executor ports.Executor,
	store ports.TrajectoryStore,
) (*Scheduler, error) {
	return NewScheduler(
		f.cfg.Session,
		f.cfg.Orchestrator,
		driver,
		navigator,
		executor,
		store,
		f.CreateTracer(),
	)
}
