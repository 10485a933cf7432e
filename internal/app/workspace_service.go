// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port
// interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time check that WorkspaceService implements ports.WorkspaceService.
var _ ports.WorkspaceService = (*WorkspaceService)(nil)

// workspaceDirPerm is the mode for created workspace root directories.
const workspaceDirPerm = 0o755

// WorkspaceService implements ports.WorkspaceService. It validates workspace
// entities, materializes root directories on disk, and delegates persistence
// and the single-active invariant to the repository.
type WorkspaceService struct {
	repo    ports.WorkspaceRepository
	baseDir string
	logger  *slog.Logger
}

// NewWorkspaceService creates a WorkspaceService. baseDir is the parent
// directory used to derive roots for create requests that do not name one;
// empty means the current working directory.
func NewWorkspaceService(repo ports.WorkspaceRepository, baseDir string, logger *slog.Logger) *WorkspaceService {
	return &WorkspaceService{
		repo:    repo,
		baseDir: baseDir,
		logger:  logger,
	}
}

// Create validates the workspace, ensures its root directory exists on disk,
// and persists it. A missing root is derived from the base directory and the
// workspace name. The first workspace ever created becomes active.
func (s *WorkspaceService) Create(ctx context.Context, ws *workspace.Workspace) (*workspace.Workspace, error) {
	s.logger.InfoContext(ctx, "creating workspace", slog.String("name", ws.Name))

	name, err := workspace.ParseName(ws.Name)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": err.Error()}}
	}
	ws.Name = name

	if ws.Root == "" {
		derived, err := filepath.Abs(filepath.Join(s.resolveBaseDir(), name))
		if err != nil {
			return nil, fmt.Errorf("deriving workspace root: %w", err)
		}
		ws.Root = derived
	}
	root, err := workspace.NormalizeRoot(ws.Root)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"root": err.Error()}}
	}
	ws.Root = root

	if err := ws.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.List(ctx, workspace.Filter{})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list workspaces",
			slog.String("operation", "Create"),
			slog.Any("error", err),
		)
		return nil, err
	}
	// The very first workspace becomes active so that CLI commands have a
	// usable default scope immediately.
	ws.Active = len(existing) == 0

	if err := os.MkdirAll(ws.Root, workspaceDirPerm); err != nil {
		return nil, fmt.Errorf("creating workspace root %s: %w", ws.Root, err)
	}

	now := time.Now().UTC()
	ws.CreatedAt = now
	ws.UpdatedAt = now

	if err := s.repo.Create(ctx, ws); err != nil {
		s.logger.ErrorContext(ctx, "failed to create workspace",
			slog.String("operation", "Create"),
			slog.String("name", ws.Name),
			slog.Any("error", err),
		)
		return nil, err
	}

	return ws, nil
}

// Get returns a workspace by ID.
func (s *WorkspaceService) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	ws, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch workspace",
			slog.String("operation", "Get"),
			slog.String("workspace_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return ws, nil
}

// GetByName returns a workspace by its unique name.
func (s *WorkspaceService) GetByName(ctx context.Context, name string) (*workspace.Workspace, error) {
	ws, err := s.repo.GetByName(ctx, name)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch workspace",
			slog.String("operation", "GetByName"),
			slog.String("name", name),
			slog.Any("error", err),
		)
		return nil, err
	}
	return ws, nil
}

// List returns workspaces matching the filter.
func (s *WorkspaceService) List(ctx context.Context, filter workspace.Filter) ([]*workspace.Workspace, error) {
	workspaces, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list workspaces",
			slog.String("operation", "List"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return workspaces, nil
}

// Update applies metadata changes (name, description, metadata map) to an
// existing workspace. The root, activation state, and settings layer are not
// touched here; settings change through the config service and activation
// through Activate.
func (s *WorkspaceService) Update(ctx context.Context, id string, ws *workspace.Workspace) (*workspace.Workspace, error) {
	s.logger.InfoContext(ctx, "updating workspace", slog.String("workspace_id", id))

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if ws.Name != "" {
		name, err := workspace.ParseName(ws.Name)
		if err != nil {
			return nil, &domain.ValidationError{Fields: map[string]string{"name": err.Error()}}
		}
		current.Name = name
	}
	if ws.Description != "" {
		current.Description = ws.Description
	}
	if ws.Metadata != nil {
		current.Metadata = ws.Metadata
	}

	if err := current.Validate(); err != nil {
		return nil, err
	}
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, current); err != nil {
		s.logger.ErrorContext(ctx, "failed to update workspace",
			slog.String("operation", "Update"),
			slog.String("workspace_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return current, nil
}

// Delete removes a workspace. The active workspace is refused unless force
// is set. Files under the workspace root are left on disk.
func (s *WorkspaceService) Delete(ctx context.Context, id string, force bool) error {
	s.logger.InfoContext(ctx, "deleting workspace",
		slog.String("workspace_id", id),
		slog.Bool("force", force),
	)

	ws, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if ws.Active && !force {
		return fmt.Errorf("workspace %q is active: %w", ws.Name, domain.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete workspace",
			slog.String("operation", "Delete"),
			slog.String("workspace_id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// Activate marks the workspace active, deactivating all others, and returns
// the updated entity.
func (s *WorkspaceService) Activate(ctx context.Context, id string) (*workspace.Workspace, error) {
	s.logger.InfoContext(ctx, "activating workspace", slog.String("workspace_id", id))

	if err := s.repo.Activate(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to activate workspace",
			slog.String("operation", "Activate"),
			slog.String("workspace_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Active returns the currently active workspace, or domain.ErrNotFound when
// none is active.
func (s *WorkspaceService) Active(ctx context.Context) (*workspace.Workspace, error) {
	active, err := s.repo.List(ctx, workspace.Filter{ActiveOnly: true})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve active workspace",
			slog.String("operation", "Active"),
			slog.Any("error", err),
		)
		return nil, err
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("no active workspace: %w", domain.ErrNotFound)
	}
	return active[0], nil
}

func (s *WorkspaceService) resolveBaseDir() string {
	if s.baseDir != "" {
		return s.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
