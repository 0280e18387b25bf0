package adapters

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"tandem/internal/orchestrator/ports"
)

// LocalExecutor runs approved actions as shell commands on the local host.
// It honors the context deadline the scheduler sets and reports expiry as
// the recoverable timeout condition. An optional allowlist restricts what
// may run at all; the empty list allows everything.
type LocalExecutor struct {
	workDir         string
	allowedPrefixes []string
}

// NewLocalExecutor creates an executor rooted at workDir.
func NewLocalExecutor(workDir string, allowedPrefixes []string) *LocalExecutor {
	return &LocalExecutor{workDir: workDir, allowedPrefixes: allowedPrefixes}
}

// Execute runs the action's command through `sh -c` and captures combined
// output. A non-zero exit is a normal observation, not an error.
func (e *LocalExecutor) Execute(ctx context.Context, action ports.Action) (ports.ExecResult, error) {
	command := strings.TrimSpace(action.Command)
	if command == "" {
		return ports.ExecResult{}, errors.New("empty command")
	}
	if ok, reason := e.allowed(command); !ok {
		return ports.ExecResult{}, fmt.Errorf("command rejected: %s", reason)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = e.workDir

	output, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return ports.ExecResult{}, ports.ErrExecTimeout
	}

	status := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			status = exitErr.ExitCode()
		} else {
			return ports.ExecResult{}, fmt.Errorf("failed to run command: %w", err)
		}
	}

	return ports.ExecResult{Output: string(output), StatusCode: status}, nil
}

func (e *LocalExecutor) allowed(command string) (bool, string) {
	if len(e.allowedPrefixes) == 0 {
		return true, ""
	}
	normalized := strings.Join(strings.Fields(strings.ToLower(command)), " ")
	for _, p := range e.allowedPrefixes {
		if strings.HasPrefix(normalized, strings.ToLower(p)) {
			return true, ""
		}
	}
	return false, "command not in executor allowlist"
}

var _ ports.Executor = (*LocalExecutor)(nil)
