package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time check that ConfigService implements ports.ConfigService.
var _ ports.ConfigService = (*ConfigService)(nil)

// ConfigService implements ports.ConfigService. Every write is coerced and
// validated against the schema before it reaches a settings layer, so stored
// layers only ever contain schema-conformant values.
type ConfigService struct {
	schema     *configset.Schema
	workspaces ports.WorkspaceRepository
	settings   ports.SettingsRepository
	logger     *slog.Logger
}

// NewConfigService creates a ConfigService over the given schema and stores.
func NewConfigService(
	schema *configset.Schema,
	workspaces ports.WorkspaceRepository,
	settings ports.SettingsRepository,
	logger *slog.Logger,
) *ConfigService {
	return &ConfigService{
		schema:     schema,
		workspaces: workspaces,
		settings:   settings,
		logger:     logger,
	}
}

// Describe returns the setting schema in definition order.
func (s *ConfigService) Describe(_ context.Context) []configset.Field {
	return s.schema.Fields()
}

// Resolve returns the effective settings for a workspace: schema defaults
// overlaid with the global layer, overlaid with the workspace's own layer.
func (s *ConfigService) Resolve(ctx context.Context, workspaceID string) (configset.Settings, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	global, err := s.settings.Global(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load global settings",
			slog.String("operation", "Resolve"),
			slog.String("workspace_id", workspaceID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return configset.Merge(s.schema.Defaults(), global, ws.Settings), nil
}

// Get returns a single setting from a workspace's own layer.
func (s *ConfigService) Get(ctx context.Context, workspaceID, key string) (configset.Value, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return configset.Value{}, err
	}

	v, ok := ws.Settings.Get(key)
	if !ok {
		return configset.Value{}, fmt.Errorf("setting %q in workspace %s: %w", key, workspaceID, domain.ErrNotFound)
	}
	return v, nil
}

// Set coerces raw input against the schema and stores it in the workspace's
// layer, returning the stored value.
func (s *ConfigService) Set(ctx context.Context, workspaceID, key string, raw any) (configset.Value, error) {
	s.logger.InfoContext(ctx, "setting workspace config",
		slog.String("workspace_id", workspaceID),
		slog.String("key", key),
	)

	v, err := s.schema.Coerce(key, raw)
	if err != nil {
		return configset.Value{}, err
	}

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return configset.Value{}, err
	}

	if ws.Settings == nil {
		ws.Settings = make(configset.Settings)
	}
	ws.Settings[key] = v
	ws.UpdatedAt = time.Now().UTC()

	if err := s.workspaces.Update(ctx, ws); err != nil {
		s.logger.ErrorContext(ctx, "failed to store workspace setting",
			slog.String("operation", "Set"),
			slog.String("workspace_id", workspaceID),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return configset.Value{}, err
	}

	return v, nil
}

// Unset removes a key from the workspace's layer. Removing a key that is not
// set returns domain.ErrNotFound.
func (s *ConfigService) Unset(ctx context.Context, workspaceID, key string) error {
	s.logger.InfoContext(ctx, "unsetting workspace config",
		slog.String("workspace_id", workspaceID),
		slog.String("key", key),
	)

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return err
	}

	if _, ok := ws.Settings.Get(key); !ok {
		return fmt.Errorf("setting %q in workspace %s: %w", key, workspaceID, domain.ErrNotFound)
	}
	delete(ws.Settings, key)
	ws.UpdatedAt = time.Now().UTC()

	if err := s.workspaces.Update(ctx, ws); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove workspace setting",
			slog.String("operation", "Unset"),
			slog.String("workspace_id", workspaceID),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// Global returns the global settings layer.
func (s *ConfigService) Global(ctx context.Context) (configset.Settings, error) {
	global, err := s.settings.Global(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load global settings",
			slog.String("operation", "Global"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return global, nil
}

// SetGlobal coerces raw input against the schema and stores it in the global
// layer, returning the stored value.
func (s *ConfigService) SetGlobal(ctx context.Context, key string, raw any) (configset.Value, error) {
	s.logger.InfoContext(ctx, "setting global config", slog.String("key", key))

	v, err := s.schema.Coerce(key, raw)
	if err != nil {
		return configset.Value{}, err
	}

	if err := s.settings.SetGlobal(ctx, key, v); err != nil {
		s.logger.ErrorContext(ctx, "failed to store global setting",
			slog.String("operation", "SetGlobal"),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return configset.Value{}, err
	}

	return v, nil
}

// UnsetGlobal removes a key from the global layer.
func (s *ConfigService) UnsetGlobal(ctx context.Context, key string) error {
	s.logger.InfoContext(ctx, "unsetting global config", slog.String("key", key))

	if err := s.settings.UnsetGlobal(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "failed to remove global setting",
			slog.String("operation", "UnsetGlobal"),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
