package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/platform/telemetry"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time check that PipelineService implements ports.PipelineService.
var _ ports.PipelineService = (*PipelineService)(nil)

// runFilePerm is the mode for auto-saved run output files.
const runFilePerm = 0o644

// PipelineService implements ports.PipelineService. Run executes steps in
// order against the completion client, feeding earlier outputs into later
// prompts, and records the outcome whether or not the run succeeds.
type PipelineService struct {
	pipelines  ports.PipelineRepository
	workspaces ports.WorkspaceRepository
	config     ports.ConfigService
	completion ports.CompletionClient
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// NewPipelineService creates a PipelineService. metrics may be nil, in which
// case run instrumentation is skipped.
func NewPipelineService(
	pipelines ports.PipelineRepository,
	workspaces ports.WorkspaceRepository,
	config ports.ConfigService,
	completion ports.CompletionClient,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *PipelineService {
	return &PipelineService{
		pipelines:  pipelines,
		workspaces: workspaces,
		config:     config,
		completion: completion,
		metrics:    metrics,
		logger:     logger,
	}
}

// Create validates and persists a pipeline owned by a workspace.
func (s *PipelineService) Create(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	s.logger.InfoContext(ctx, "creating pipeline",
		slog.String("name", p.Name),
		slog.String("workspace_id", p.WorkspaceID),
	)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.workspaces.Get(ctx, p.WorkspaceID); err != nil {
		return nil, fmt.Errorf("verifying workspace: %w", err)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.pipelines.Create(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "failed to create pipeline",
			slog.String("operation", "Create"),
			slog.String("name", p.Name),
			slog.Any("error", err),
		)
		return nil, err
	}

	return p, nil
}

// Get returns a pipeline by ID.
func (s *PipelineService) Get(ctx context.Context, id string) (*pipeline.Pipeline, error) {
	p, err := s.pipelines.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch pipeline",
			slog.String("operation", "Get"),
			slog.String("pipeline_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return p, nil
}

// List returns all pipelines owned by a workspace.
func (s *PipelineService) List(ctx context.Context, workspaceID string) ([]*pipeline.Pipeline, error) {
	if _, err := s.workspaces.Get(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("verifying workspace: %w", err)
	}

	pipelines, err := s.pipelines.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list pipelines",
			slog.String("operation", "List"),
			slog.String("workspace_id", workspaceID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return pipelines, nil
}

// Update validates and persists changes to a pipeline. Name, description,
// and steps are replaced; ownership is immutable.
func (s *PipelineService) Update(ctx context.Context, id string, p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	s.logger.InfoContext(ctx, "updating pipeline", slog.String("pipeline_id", id))

	current, err := s.pipelines.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != "" {
		current.Name = p.Name
	}
	if p.Description != "" {
		current.Description = p.Description
	}
	if p.Steps != nil {
		current.Steps = p.Steps
	}

	if err := current.Validate(); err != nil {
		return nil, err
	}
	current.UpdatedAt = time.Now().UTC()

	if err := s.pipelines.Update(ctx, current); err != nil {
		s.logger.ErrorContext(ctx, "failed to update pipeline",
			slog.String("operation", "Update"),
			slog.String("pipeline_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return current, nil
}

// Delete removes a pipeline and its run history.
func (s *PipelineService) Delete(ctx context.Context, id string) error {
	s.logger.InfoContext(ctx, "deleting pipeline", slog.String("pipeline_id", id))

	if err := s.pipelines.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete pipeline",
			slog.String("operation", "Delete"),
			slog.String("pipeline_id", id),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// Run executes the pipeline's steps in order. Each step's prompt template is
// rendered against the run input and earlier step outputs, then sent to the
// completion client with the workspace's effective settings supplying
// per-step defaults. The run is recorded even when a step fails.
func (s *PipelineService) Run(ctx context.Context, pipelineID, input string) (*pipeline.Run, error) {
	p, err := s.pipelines.Get(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	ws, err := s.workspaces.Get(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("verifying workspace: %w", err)
	}
	effective, err := s.config.Resolve(ctx, p.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("resolving settings: %w", err)
	}

	s.logger.InfoContext(ctx, "running pipeline",
		slog.String("pipeline_id", pipelineID),
		slog.String("pipeline", p.Name),
		slog.Int("steps", len(p.Steps)),
	)

	run := &pipeline.Run{
		ID:          "run-" + uuid.NewString(),
		PipelineID:  p.ID,
		WorkspaceID: p.WorkspaceID,
		Status:      pipeline.RunSucceeded,
		Input:       input,
		StartedAt:   time.Now().UTC(),
	}

	outputs := map[string]string{}
	for _, step := range p.Steps {
		result, stepErr := s.runStep(ctx, step, input, outputs, effective)
		if stepErr != nil {
			run.Status = pipeline.RunFailed
			run.Error = fmt.Sprintf("step %q: %v", step.Name, stepErr)
			s.logger.ErrorContext(ctx, "pipeline step failed",
				slog.String("operation", "Run"),
				slog.String("pipeline_id", pipelineID),
				slog.String("step", step.Name),
				slog.Any("error", stepErr),
			)
			break
		}

		run.Steps = append(run.Steps, *result)
		run.TotalTokens += result.Tokens
		outputs[step.Name] = result.Output
	}
	run.Duration = time.Since(run.StartedAt)

	s.recordRunMetrics(ctx, p, run)

	if err := s.pipelines.RecordRun(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "failed to record run",
			slog.String("operation", "Run"),
			slog.String("pipeline_id", pipelineID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if run.Status == pipeline.RunSucceeded {
		s.autoSave(ctx, ws.Root, effective, run)
	}

	if run.Status == pipeline.RunFailed {
		return run, fmt.Errorf("pipeline %q failed: %s", p.Name, run.Error)
	}
	return run, nil
}

// Runs returns a pipeline's run history, most recent first.
func (s *PipelineService) Runs(ctx context.Context, pipelineID string, limit int) ([]*pipeline.Run, error) {
	if _, err := s.pipelines.Get(ctx, pipelineID); err != nil {
		return nil, err
	}

	runs, err := s.pipelines.ListRuns(ctx, pipelineID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list runs",
			slog.String("operation", "Runs"),
			slog.String("pipeline_id", pipelineID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return runs, nil
}

// runStep renders one step's prompt and executes it against the completion
// client, applying effective settings for model, token budget, and
// temperature where the step does not override them.
func (s *PipelineService) runStep(
	ctx context.Context,
	step pipeline.Step,
	input string,
	outputs map[string]string,
	effective configset.Settings,
) (*pipeline.StepResult, error) {
	prompt, err := RenderPrompt(step.Prompt, input, outputs)
	if err != nil {
		return nil, err
	}

	model := step.Model
	if model == "" {
		if v, ok := effective.Get("model"); ok {
			model = v.AsString()
		}
	}
	maxTokens := step.MaxTokens
	if maxTokens == 0 {
		if v, ok := effective.Get("max_tokens"); ok {
			maxTokens = int(v.AsInt())
		}
	}
	var temperature float64
	if v, ok := effective.Get("temperature"); ok {
		temperature = v.AsFloat()
	}

	start := time.Now()
	resp, err := s.completion.Complete(ctx, ports.CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	s.recordStepMetrics(ctx, step.Name, model, resp)

	return &pipeline.StepResult{
		Name:     step.Name,
		Model:    model,
		Output:   resp.Text,
		Tokens:   resp.PromptTokens + resp.OutputTokens,
		Duration: time.Since(start),
	}, nil
}

// recordRunMetrics records duration and outcome for a completed run.
// Safe to call with nil metrics.
func (s *PipelineService) recordRunMetrics(ctx context.Context, p *pipeline.Pipeline, run *pipeline.Run) {
	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		telemetry.AttrPipeline.String(p.Name),
		telemetry.AttrResult.String(string(run.Status)),
	)
	s.metrics.PipelineRunDuration.Record(ctx, run.Duration.Seconds(), attrs)
	s.metrics.PipelineRunTotal.Add(ctx, 1, attrs)
}

// recordStepMetrics records per-step and token counters.
// Safe to call with nil metrics.
func (s *PipelineService) recordStepMetrics(ctx context.Context, stepName, model string, resp *ports.CompletionResponse) {
	if s.metrics == nil {
		return
	}

	s.metrics.PipelineStepTotal.Add(ctx, 1, metric.WithAttributes(
		telemetry.AttrStep.String(stepName),
		telemetry.AttrModel.String(model),
	))
	s.metrics.CompletionTokens.Add(ctx, int64(resp.PromptTokens), metric.WithAttributes(
		telemetry.AttrModel.String(model),
		telemetry.AttrTokenKind.String("prompt"),
	))
	s.metrics.CompletionTokens.Add(ctx, int64(resp.OutputTokens), metric.WithAttributes(
		telemetry.AttrModel.String(model),
		telemetry.AttrTokenKind.String("output"),
	))
}

// autoSave writes the run's final output under the workspace root when the
// auto_save setting is enabled. Save failures are logged, not returned; the
// run itself already succeeded.
func (s *PipelineService) autoSave(ctx context.Context, root string, effective configset.Settings, run *pipeline.Run) {
	v, ok := effective.Get("auto_save")
	if !ok || !v.AsBool() {
		return
	}

	dir := filepath.Join(root, "runs")
	if err := os.MkdirAll(dir, workspaceDirPerm); err != nil {
		s.logger.WarnContext(ctx, "failed to create runs directory",
			slog.String("dir", dir),
			slog.Any("error", err),
		)
		return
	}

	path := filepath.Join(dir, run.ID+".md")
	if err := os.WriteFile(path, []byte(run.Output()), runFilePerm); err != nil {
		s.logger.WarnContext(ctx, "failed to save run output",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}
