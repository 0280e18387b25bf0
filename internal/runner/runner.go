// Package runner executes a batch of independent sessions with a bounded
// worker pool. Each session stays strictly sequential internally; only
// whole sessions run in parallel.
package runner

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gopkg.in/yaml.v3"

	"tandem/internal/orchestrator"
	"tandem/internal/orchestrator/adapters"
	"tandem/internal/orchestrator/ports"
)

// Task describes one session in a batch: the opening instruction plus the
// scripted transcripts for both participants.
type Task struct {
	Name            string `yaml:"name"`
	Instruction     string `yaml:"instruction"`
	DriverScript    string `yaml:"driver_script"`
	NavigatorScript string `yaml:"navigator_script"`
}

// TaskList is the YAML batch file format.
type TaskList struct {
	Tasks []Task `yaml:"tasks"`
}

// LoadTaskList reads a batch definition from disk.
func LoadTaskList(path string) (TaskList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TaskList{}, fmt.Errorf("failed to read task list: %w", err)
	}
	var list TaskList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return TaskList{}, fmt.Errorf("failed to parse task list: %w", err)
	}
	if len(list.Tasks) == 0 {
		return TaskList{}, fmt.Errorf("task list %s has no tasks", path)
	}
	return list, nil
}

// TaskResult pairs a task with its session outcome.
type TaskResult struct {
	Task      Task
	SessionID string
	Reason    string
	TurnsUsed int
	Err       error
}

// Runner fans a task list out over a bounded pool of workers.
type Runner struct {
	factory  *orchestrator.Factory
	executor ports.Executor
	store    ports.TrajectoryStore
	workers  int
}

// NewRunner creates a batch runner. workers below one defaults to one.
func NewRunner(factory *orchestrator.Factory, executor ports.Executor, store ports.TrajectoryStore, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{factory: factory, executor: executor, store: store, workers: workers}
}

// Run executes every task and returns one result per task, in task order.
func (r *Runner) Run(ctx context.Context, list TaskList) []TaskResult {
	results := make([]TaskResult, len(list.Tasks))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(r.workers)
	for i, task := range list.Tasks {
		p.Go(func() {
			result := r.runOne(ctx, task)
			mu.Lock()
			results[i] = result
			mu.Unlock()
		})
	}
	p.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, task Task) TaskResult {
	driver, err := loadCollaborator(task.DriverScript)
	if err != nil {
		return TaskResult{Task: task, Err: err}
	}
	navigator, err := loadCollaborator(task.NavigatorScript)
	if err != nil {
		return TaskResult{Task: task, Err: err}
	}

	scheduler, err := r.factory.CreateScheduler(driver, navigator, r.executor, r.store)
	if err != nil {
		return TaskResult{Task: task, Err: err}
	}

	result, err := scheduler.Run(ctx, task.Instruction)
	if err != nil {
		return TaskResult{Task: task, SessionID: scheduler.SessionID(), Err: err}
	}
	return TaskResult{
		Task:      task,
		SessionID: result.SessionID,
		Reason:    result.Reason,
		TurnsUsed: result.TurnsUsed,
	}
}

func loadCollaborator(path string) (ports.Collaborator, error) {
	script, err := adapters.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return adapters.NewScriptedCollaborator(script), nil
}
