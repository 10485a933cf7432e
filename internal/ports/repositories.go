package ports

import (
	"context"

	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
)

// WorkspaceRepository defines the persistence port for workspaces.
// Implementations enforce name uniqueness (domain.ErrConflict) and the
// single-active invariant (Activate).
type WorkspaceRepository interface {
	// Create persists a new workspace. An empty ID is assigned by the
	// repository. Returns domain.ErrConflict if the name is taken.
	Create(ctx context.Context, ws *workspace.Workspace) error

	// Get returns a workspace by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*workspace.Workspace, error)

	// GetByName returns a workspace by its unique name.
	// Returns domain.ErrNotFound if it does not exist.
	GetByName(ctx context.Context, name string) (*workspace.Workspace, error)

	// List returns workspaces matching the filter, ordered by creation time.
	List(ctx context.Context, filter workspace.Filter) ([]*workspace.Workspace, error)

	// Update persists changes to an existing workspace.
	// Returns domain.ErrNotFound if it does not exist and
	// domain.ErrConflict if a rename collides with another workspace.
	Update(ctx context.Context, ws *workspace.Workspace) error

	// Delete removes a workspace by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// Activate marks the given workspace active and deactivates all
	// others atomically. Returns domain.ErrNotFound if it does not exist.
	Activate(ctx context.Context, id string) error
}

// PipelineRepository defines the persistence port for pipelines and their
// run history.
type PipelineRepository interface {
	// Create persists a new pipeline. An empty ID is assigned by the
	// repository. Returns domain.ErrConflict if the workspace already has
	// a pipeline with the same name.
	Create(ctx context.Context, p *pipeline.Pipeline) error

	// Get returns a pipeline by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*pipeline.Pipeline, error)

	// GetByName returns a workspace's pipeline by name.
	// Returns domain.ErrNotFound if it does not exist.
	GetByName(ctx context.Context, workspaceID, name string) (*pipeline.Pipeline, error)

	// ListByWorkspace returns all pipelines owned by a workspace, ordered
	// by creation time.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*pipeline.Pipeline, error)

	// Update persists changes to an existing pipeline.
	// Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, p *pipeline.Pipeline) error

	// Delete removes a pipeline and its run history by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	// RecordRun appends a run to the pipeline's history.
	RecordRun(ctx context.Context, run *pipeline.Run) error

	// ListRuns returns a pipeline's runs, most recent first, capped at
	// limit (0 means no cap).
	ListRuns(ctx context.Context, pipelineID string, limit int) ([]*pipeline.Run, error)
}

// SettingsRepository defines the persistence port for the global settings
// layer. Workspace-scoped settings live on the workspace entity itself.
type SettingsRepository interface {
	// Global returns all global settings. An empty layer is not an error.
	Global(ctx context.Context) (configset.Settings, error)

	// SetGlobal stores one global setting, replacing any existing value.
	SetGlobal(ctx context.Context, key string, value configset.Value) error

	// UnsetGlobal removes a global setting.
	// Returns domain.ErrNotFound if the key is not set.
	UnsetGlobal(ctx context.Context, key string) error
}
