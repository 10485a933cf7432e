// Package inmem provides thread-safe in-memory repository implementations.
// Used by tests and by the "inmem:" store URL for ephemeral runs.
package inmem

import (
	"github.com/writeit-dev/writeit/internal/ports"
)

// Store bundles all in-memory repositories behind one constructor.
type Store struct {
	Workspaces *WorkspaceRepository
	Pipelines  *PipelineRepository
	Settings   *SettingsRepository
}

// NewStore creates a new in-memory store with all repositories.
func NewStore() *Store {
	return &Store{
		Workspaces: NewWorkspaceRepository(),
		Pipelines:  NewPipelineRepository(),
		Settings:   NewSettingsRepository(),
	}
}

// Compile-time assertions.
var (
	_ ports.WorkspaceRepository = (*WorkspaceRepository)(nil)
	_ ports.PipelineRepository  = (*PipelineRepository)(nil)
	_ ports.SettingsRepository  = (*SettingsRepository)(nil)
)
