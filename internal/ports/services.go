package ports

import (
	"context"
	"time"

	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
)

// WorkspaceService defines the service port for workspace lifecycle
// operations. Implemented by the application layer; called by inbound
// adapters (HTTP handlers, CLI commands).
type WorkspaceService interface {
	// Create validates the workspace, ensures its root directory exists,
	// and persists it. Returns domain.ErrValidation on rule violations
	// and domain.ErrConflict if the name is taken.
	Create(ctx context.Context, ws *workspace.Workspace) (*workspace.Workspace, error)

	// Get returns a workspace by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*workspace.Workspace, error)

	// GetByName returns a workspace by its unique name.
	GetByName(ctx context.Context, name string) (*workspace.Workspace, error)

	// List returns workspaces matching the filter.
	List(ctx context.Context, filter workspace.Filter) ([]*workspace.Workspace, error)

	// Update applies metadata changes (name, description, metadata map)
	// to an existing workspace and returns the updated entity.
	Update(ctx context.Context, id string, ws *workspace.Workspace) (*workspace.Workspace, error)

	// Delete removes a workspace. The active workspace is refused unless
	// force is set (domain.ErrForbidden).
	Delete(ctx context.Context, id string, force bool) error

	// Activate marks the workspace active, deactivating all others.
	Activate(ctx context.Context, id string) (*workspace.Workspace, error)

	// Active returns the currently active workspace.
	// Returns domain.ErrNotFound if no workspace is active.
	Active(ctx context.Context) (*workspace.Workspace, error)
}

// ConfigService defines the service port for typed configuration across the
// global and workspace scopes. All writes are schema-coerced and validated.
type ConfigService interface {
	// Describe returns the setting schema.
	Describe(ctx context.Context) []configset.Field

	// Resolve returns the effective settings for a workspace: schema
	// defaults, overlaid with global settings, overlaid with the
	// workspace's own settings.
	Resolve(ctx context.Context, workspaceID string) (configset.Settings, error)

	// Get returns a single setting from a workspace's own layer.
	// Returns domain.ErrNotFound if the workspace does not set the key.
	Get(ctx context.Context, workspaceID, key string) (configset.Value, error)

	// Set coerces raw input against the schema and stores it in the
	// workspace's layer. Returns domain.ErrValidation for unknown keys or
	// constraint violations.
	Set(ctx context.Context, workspaceID, key string, raw any) (configset.Value, error)

	// Unset removes a key from the workspace's layer.
	Unset(ctx context.Context, workspaceID, key string) error

	// Global returns the global settings layer.
	Global(ctx context.Context) (configset.Settings, error)

	// SetGlobal coerces raw input against the schema and stores it in the
	// global layer.
	SetGlobal(ctx context.Context, key string, raw any) (configset.Value, error)

	// UnsetGlobal removes a key from the global layer.
	UnsetGlobal(ctx context.Context, key string) error
}

// PipelineService defines the service port for pipeline authoring and
// execution.
type PipelineService interface {
	// Create validates and persists a pipeline owned by a workspace.
	Create(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Pipeline, error)

	// Get returns a pipeline by ID.
	Get(ctx context.Context, id string) (*pipeline.Pipeline, error)

	// List returns all pipelines owned by a workspace.
	List(ctx context.Context, workspaceID string) ([]*pipeline.Pipeline, error)

	// Update validates and persists changes to a pipeline.
	Update(ctx context.Context, id string, p *pipeline.Pipeline) (*pipeline.Pipeline, error)

	// Delete removes a pipeline and its run history.
	Delete(ctx context.Context, id string) error

	// Run executes the pipeline's steps in order against the completion
	// client, using the workspace's effective settings for per-step
	// defaults. The returned Run is recorded in the repository even when
	// a step fails (Status RunFailed).
	Run(ctx context.Context, pipelineID, input string) (*pipeline.Run, error)

	// Runs returns a pipeline's run history, most recent first.
	Runs(ctx context.Context, pipelineID string, limit int) ([]*pipeline.Run, error)
}

// WorkspaceOverview summarizes one workspace for the analytics surface.
type WorkspaceOverview struct {
	Workspace      *workspace.Workspace
	PipelineCount  int
	RunCount       int
	LastRunAt      time.Time
	OverriddenKeys []string
}

// AnalyticsService aggregates per-workspace statistics.
type AnalyticsService interface {
	// Overview summarizes all workspaces. Per-workspace failures are
	// reflected as zero-valued summaries rather than failing the call;
	// only listing workspaces can fail outright.
	Overview(ctx context.Context) ([]WorkspaceOverview, error)

	// Stats summarizes a single workspace.
	// Returns domain.ErrNotFound if the workspace does not exist.
	Stats(ctx context.Context, workspaceID string) (WorkspaceOverview, error)
}
