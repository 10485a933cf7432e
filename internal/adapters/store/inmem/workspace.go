package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
)

// WorkspaceRepository is a thread-safe in-memory implementation of
// ports.WorkspaceRepository.
type WorkspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[string]*workspace.Workspace
}

func NewWorkspaceRepository() *WorkspaceRepository {
	return &WorkspaceRepository{
		workspaces: make(map[string]*workspace.Workspace),
	}
}

func (r *WorkspaceRepository) Create(_ context.Context, ws *workspace.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.workspaces {
		if existing.Name == ws.Name {
			return fmt.Errorf("workspace name %q: %w", ws.Name, domain.ErrConflict)
		}
	}

	if ws.ID == "" {
		ws.ID = "ws-" + uuid.NewString()
	}
	r.workspaces[ws.ID] = ws.Clone()
	return nil
}

func (r *WorkspaceRepository) Get(_ context.Context, id string) (*workspace.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	return ws.Clone(), nil
}

func (r *WorkspaceRepository) GetByName(_ context.Context, name string) (*workspace.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ws := range r.workspaces {
		if ws.Name == name {
			return ws.Clone(), nil
		}
	}
	return nil, fmt.Errorf("workspace %q: %w", name, domain.ErrNotFound)
}

func (r *WorkspaceRepository) List(_ context.Context, filter workspace.Filter) ([]*workspace.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*workspace.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		if filter.Matches(ws) {
			out = append(out, ws.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *WorkspaceRepository) Update(_ context.Context, ws *workspace.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.workspaces[ws.ID]
	if !ok {
		return fmt.Errorf("workspace %s: %w", ws.ID, domain.ErrNotFound)
	}

	for id, other := range r.workspaces {
		if id != ws.ID && other.Name == ws.Name {
			return fmt.Errorf("workspace name %q: %w", ws.Name, domain.ErrConflict)
		}
	}

	cp := ws.Clone()
	cp.CreatedAt = existing.CreatedAt
	r.workspaces[ws.ID] = cp
	return nil
}

func (r *WorkspaceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[id]; !ok {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	delete(r.workspaces, id)
	return nil
}

func (r *WorkspaceRepository) Activate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.workspaces[id]
	if !ok {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}

	for _, ws := range r.workspaces {
		ws.Active = false
	}
	target.Active = true
	return nil
}
