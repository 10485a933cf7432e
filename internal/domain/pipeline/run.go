package pipeline

import "time"

// RunStatus represents the terminal state of a pipeline run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run records the outcome of executing a pipeline: per-step outputs in
// execution order, aggregate token usage, and timing.
type Run struct {
	ID          string
	PipelineID  string
	WorkspaceID string
	Status      RunStatus
	Input       string
	Steps       []StepResult
	TotalTokens int
	StartedAt   time.Time
	Duration    time.Duration
	Error       string
}

// StepResult holds a single step's rendered prompt outcome.
type StepResult struct {
	Name     string
	Model    string
	Output   string
	Tokens   int
	Duration time.Duration
}

// Output returns the final step's output, or "" for an empty run.
func (r *Run) Output() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[len(r.Steps)-1].Output
}
