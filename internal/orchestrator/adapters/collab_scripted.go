package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"tandem/internal/conversation"
	"tandem/internal/orchestrator/ports"
)

// ScriptedStep is one canned reply in a collaborator transcript.
type ScriptedStep struct {
	Content   string  `yaml:"content"`
	Auxiliary string  `yaml:"auxiliary,omitempty"`
	Cost      float64 `yaml:"cost,omitempty"`
}

// Script is a YAML transcript for one participant: a sequence of replies
// returned in order, used for demos, batch runs, and deterministic tests.
type Script struct {
	Role  string         `yaml:"role"`
	Steps []ScriptedStep `yaml:"steps"`
}

// ScriptedCollaborator replays a fixed transcript. Once the transcript is
// exhausted it keeps returning the final step, so sessions end via the turn
// cap rather than a spurious collaborator fault.
type ScriptedCollaborator struct {
	mu     sync.Mutex
	script Script
	next   int
}

// NewScriptedCollaborator wraps a transcript in the Collaborator port.
func NewScriptedCollaborator(script Script) *ScriptedCollaborator {
	return &ScriptedCollaborator{script: script}
}

// LoadScript reads a YAML transcript from disk.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(script.Steps) == 0 {
		return Script{}, fmt.Errorf("script %s has no steps", path)
	}
	return script, nil
}

// Query returns the next scripted reply. The view is ignored beyond being
// received; scripted replies are position-based.
func (c *ScriptedCollaborator) Query(ctx context.Context, view []conversation.Message) (ports.Reply, error) {
	if err := ctx.Err(); err != nil {
		return ports.Reply{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.script.Steps[c.next]
	if c.next < len(c.script.Steps)-1 {
		c.next++
	}

	reply := ports.Reply{Content: step.Content}
	if step.Auxiliary != "" {
		encoded, err := json.Marshal(step.Auxiliary)
		if err != nil {
			return ports.Reply{}, fmt.Errorf("failed to encode auxiliary: %w", err)
		}
		reply.Auxiliary = encoded
	}
	if step.Cost > 0 {
		reply.Usage = &ports.Usage{Cost: step.Cost}
	}
	return reply, nil
}

var _ ports.Collaborator = (*ScriptedCollaborator)(nil)
