// Package pipeline defines the pipeline aggregate: an ordered sequence of
// prompt steps executed against a completion model within a workspace.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/writeit-dev/writeit/internal/domain"
)

// Pipeline is an ordered sequence of prompt steps owned by a workspace.
type Pipeline struct {
	ID          string
	WorkspaceID string
	Name        string
	Description string
	Steps       []Step
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Step is a single prompt stage. The Prompt template may reference the run
// input as {{input}} and earlier step outputs as {{steps.<name>}}. Model and
// MaxTokens override the workspace's effective settings when non-zero.
type Step struct {
	Name      string
	Prompt    string
	Model     string
	MaxTokens int
}

// Validate checks business rules for the Pipeline entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Pipeline) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if strings.TrimSpace(p.WorkspaceID) == "" {
		fields["workspace_id"] = domain.MsgRequired
	}
	if len(p.Steps) == 0 {
		fields["steps"] = "must contain at least one step"
	}

	seen := make(map[string]bool, len(p.Steps))
	for i, step := range p.Steps {
		loc := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(step.Name) == "" {
			fields[loc+".name"] = domain.MsgRequired
		} else if seen[step.Name] {
			fields[loc+".name"] = fmt.Sprintf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = true

		if strings.TrimSpace(step.Prompt) == "" {
			fields[loc+".prompt"] = domain.MsgRequired
		}
		if step.MaxTokens < 0 {
			fields[loc+".max_tokens"] = fmt.Sprintf("must be positive, got %d", step.MaxTokens)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Step returns the step with the given name and whether it exists.
func (p *Pipeline) Step(name string) (Step, bool) {
	for _, s := range p.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}
