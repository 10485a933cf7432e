// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// WorkspaceResponse represents a single workspace in HTTP responses.
// Settings holds the workspace's own layer, not the effective merge.
type WorkspaceResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Root        string            `json:"root"`
	Description string            `json:"description,omitempty"`
	Active      bool              `json:"active"`
	Settings    []SettingResponse `json:"settings,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"created_at"`
	UpdatedAt   string            `json:"updated_at"`
}

// WorkspaceListResponse represents a list of workspaces in HTTP responses.
type WorkspaceListResponse struct {
	Workspaces []WorkspaceResponse `json:"workspaces"`
	Count      int                 `json:"count"`
}

// ToWorkspaceResponse converts a domain Workspace entity to an HTTP response DTO.
func ToWorkspaceResponse(ws *workspace.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Root:        ws.Root,
		Description: ws.Description,
		Active:      ws.Active,
		Settings:    ToSettingsResponse(ws.Settings),
		Metadata:    ws.Metadata,
		CreatedAt:   ws.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   ws.UpdatedAt.Format(time.RFC3339),
	}
}

// ToWorkspaceListResponse converts domain Workspace entities to an HTTP list
// response DTO.
func ToWorkspaceListResponse(workspaces []*workspace.Workspace) WorkspaceListResponse {
	items := make([]WorkspaceResponse, len(workspaces))
	for i, ws := range workspaces {
		items[i] = ToWorkspaceResponse(ws)
	}
	return WorkspaceListResponse{
		Workspaces: items,
		Count:      len(items),
	}
}

// SettingResponse represents one typed setting in HTTP responses.
type SettingResponse struct {
	Key   string `json:"key"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// SettingsListResponse represents a settings layer in HTTP responses.
type SettingsListResponse struct {
	Settings []SettingResponse `json:"settings"`
	Count    int               `json:"count"`
}

// ToSettingsResponse converts a settings layer to response DTOs in sorted
// key order. Returns nil for an empty layer.
func ToSettingsResponse(settings configset.Settings) []SettingResponse {
	if len(settings) == 0 {
		return nil
	}
	out := make([]SettingResponse, 0, len(settings))
	for _, key := range settings.Keys() {
		v := settings[key]
		out = append(out, SettingResponse{
			Key:   key,
			Kind:  v.Kind().String(),
			Value: v.Interface(),
		})
	}
	return out
}

// ToSettingsListResponse wraps a settings layer in a list envelope.
func ToSettingsListResponse(settings configset.Settings) SettingsListResponse {
	items := ToSettingsResponse(settings)
	if items == nil {
		items = []SettingResponse{}
	}
	return SettingsListResponse{
		Settings: items,
		Count:    len(items),
	}
}

// SchemaFieldResponse represents one schema field in HTTP responses.
type SchemaFieldResponse struct {
	Key         string   `json:"key"`
	Kind        string   `json:"kind"`
	Default     any      `json:"default,omitempty"`
	Description string   `json:"description,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// SchemaResponse represents the full setting schema in HTTP responses.
type SchemaResponse struct {
	Fields []SchemaFieldResponse `json:"fields"`
}

// ToSchemaResponse converts schema fields to an HTTP response DTO,
// preserving definition order.
func ToSchemaResponse(fields []configset.Field) SchemaResponse {
	items := make([]SchemaFieldResponse, len(fields))
	for i, f := range fields {
		item := SchemaFieldResponse{
			Key:         f.Key,
			Kind:        f.Kind.String(),
			Description: f.Description,
			Min:         f.Min,
			Max:         f.Max,
			Enum:        f.Enum,
		}
		if !f.Default.IsZero() {
			item.Default = f.Default.Interface()
		}
		items[i] = item
	}
	return SchemaResponse{Fields: items}
}

// StepResponse represents one pipeline step in HTTP responses.
type StepResponse struct {
	Name      string `json:"name"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// PipelineResponse represents a single pipeline in HTTP responses.
type PipelineResponse struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspace_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Steps       []StepResponse `json:"steps"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

// PipelineListResponse represents a list of pipelines in HTTP responses.
type PipelineListResponse struct {
	Pipelines []PipelineResponse `json:"pipelines"`
	Count     int                `json:"count"`
}

// ToPipelineResponse converts a domain Pipeline entity to an HTTP response DTO.
func ToPipelineResponse(p *pipeline.Pipeline) PipelineResponse {
	steps := make([]StepResponse, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = StepResponse{
			Name:      s.Name,
			Prompt:    s.Prompt,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
		}
	}
	return PipelineResponse{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: p.Description,
		Steps:       steps,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

// ToPipelineListResponse converts domain Pipeline entities to an HTTP list
// response DTO.
func ToPipelineListResponse(pipelines []*pipeline.Pipeline) PipelineListResponse {
	items := make([]PipelineResponse, len(pipelines))
	for i, p := range pipelines {
		items[i] = ToPipelineResponse(p)
	}
	return PipelineListResponse{
		Pipelines: items,
		Count:     len(items),
	}
}

// StepResultResponse represents one executed step in HTTP responses.
type StepResultResponse struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Output     string `json:"output"`
	Tokens     int    `json:"tokens"`
	DurationMS int64  `json:"duration_ms"`
}

// RunResponse represents a pipeline run in HTTP responses. Output is the
// final step's output.
type RunResponse struct {
	ID          string               `json:"id"`
	PipelineID  string               `json:"pipeline_id"`
	Status      string               `json:"status"`
	Input       string               `json:"input,omitempty"`
	Output      string               `json:"output,omitempty"`
	Steps       []StepResultResponse `json:"steps"`
	TotalTokens int                  `json:"total_tokens"`
	StartedAt   string               `json:"started_at"`
	DurationMS  int64                `json:"duration_ms"`
	Error       string               `json:"error,omitempty"`
}

// RunListResponse represents a run history in HTTP responses.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// ToRunResponse converts a domain Run to an HTTP response DTO.
func ToRunResponse(run *pipeline.Run) RunResponse {
	steps := make([]StepResultResponse, len(run.Steps))
	for i, s := range run.Steps {
		steps[i] = StepResultResponse{
			Name:       s.Name,
			Model:      s.Model,
			Output:     s.Output,
			Tokens:     s.Tokens,
			DurationMS: s.Duration.Milliseconds(),
		}
	}
	return RunResponse{
		ID:          run.ID,
		PipelineID:  run.PipelineID,
		Status:      string(run.Status),
		Input:       run.Input,
		Output:      run.Output(),
		Steps:       steps,
		TotalTokens: run.TotalTokens,
		StartedAt:   run.StartedAt.Format(time.RFC3339),
		DurationMS:  run.Duration.Milliseconds(),
		Error:       run.Error,
	}
}

// ToRunListResponse converts domain Runs to an HTTP list response DTO.
func ToRunListResponse(runs []*pipeline.Run) RunListResponse {
	items := make([]RunResponse, len(runs))
	for i, run := range runs {
		items[i] = ToRunResponse(run)
	}
	return RunListResponse{
		Runs:  items,
		Count: len(items),
	}
}

// OverviewItemResponse summarizes one workspace in the analytics response.
type OverviewItemResponse struct {
	Workspace      WorkspaceResponse `json:"workspace"`
	PipelineCount  int               `json:"pipeline_count"`
	RunCount       int               `json:"run_count"`
	LastRunAt      string            `json:"last_run_at,omitempty"`
	OverriddenKeys []string          `json:"overridden_keys,omitempty"`
}

// OverviewResponse represents the analytics overview in HTTP responses.
type OverviewResponse struct {
	Workspaces []OverviewItemResponse `json:"workspaces"`
	Count      int                    `json:"count"`
}

// ToOverviewItemResponse converts one workspace overview to its HTTP DTO.
func ToOverviewItemResponse(o ports.WorkspaceOverview) OverviewItemResponse {
	item := OverviewItemResponse{
		Workspace:      ToWorkspaceResponse(o.Workspace),
		PipelineCount:  o.PipelineCount,
		RunCount:       o.RunCount,
		OverriddenKeys: o.OverriddenKeys,
	}
	if !o.LastRunAt.IsZero() {
		item.LastRunAt = o.LastRunAt.Format(time.RFC3339)
	}
	return item
}

// ToOverviewResponse converts workspace overviews to an HTTP response DTO.
func ToOverviewResponse(overviews []ports.WorkspaceOverview) OverviewResponse {
	items := make([]OverviewItemResponse, len(overviews))
	for i, o := range overviews {
		items[i] = ToOverviewItemResponse(o)
	}
	return OverviewResponse{
		Workspaces: items,
		Count:      len(items),
	}
}
