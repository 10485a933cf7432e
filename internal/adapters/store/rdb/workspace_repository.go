package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time interface check.
var _ ports.WorkspaceRepository = (*WorkspaceRepository)(nil)

// WorkspaceRepository is a GORM-backed implementation of
// ports.WorkspaceRepository.
type WorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a workspace repository over the given DB.
func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

func workspaceToRecord(ws *workspace.Workspace) (*WorkspaceRecord, error) {
	settings, err := encodeJSON(ws.Settings)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	metadata, err := encodeJSON(ws.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encoding metadata: %w", err)
	}

	return &WorkspaceRecord{
		ID:          ws.ID,
		Name:        ws.Name,
		Root:        ws.Root,
		Description: ws.Description,
		Active:      ws.Active,
		Settings:    settings,
		Metadata:    metadata,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}, nil
}

func workspaceToModel(rec *WorkspaceRecord) (*workspace.Workspace, error) {
	var settings configset.Settings
	if err := decodeJSON(rec.Settings, &settings); err != nil {
		return nil, fmt.Errorf("decoding settings for workspace %s: %w", rec.ID, err)
	}
	var metadata map[string]string
	if err := decodeJSON(rec.Metadata, &metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata for workspace %s: %w", rec.ID, err)
	}

	return &workspace.Workspace{
		ID:          rec.ID,
		Name:        rec.Name,
		Root:        rec.Root,
		Description: rec.Description,
		Active:      rec.Active,
		Settings:    settings,
		Metadata:    metadata,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

// Create persists a new workspace, assigning an ID when empty.
func (r *WorkspaceRepository) Create(ctx context.Context, ws *workspace.Workspace) error {
	rec, err := workspaceToRecord(ws)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = "ws-" + uuid.NewString()
		ws.ID = rec.ID
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("workspace name %q: %w", ws.Name, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// Get returns a workspace by ID.
func (r *WorkspaceRepository) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	var rec WorkspaceRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return workspaceToModel(&rec)
}

// GetByName returns a workspace by its unique name.
func (r *WorkspaceRepository) GetByName(ctx context.Context, name string) (*workspace.Workspace, error) {
	var rec WorkspaceRecord
	if err := r.db.WithContext(ctx).First(&rec, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("workspace %q: %w", name, domain.ErrNotFound)
		}
		return nil, err
	}
	return workspaceToModel(&rec)
}

// List returns workspaces matching the filter, ordered by creation time.
func (r *WorkspaceRepository) List(ctx context.Context, filter workspace.Filter) ([]*workspace.Workspace, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.NamePrefix != "" {
		q = q.Where("name LIKE ?", filter.NamePrefix+"%")
	}

	var recs []WorkspaceRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]*workspace.Workspace, 0, len(recs))
	for i := range recs {
		ws, err := workspaceToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, nil
}

// Update persists changes to an existing workspace. Select("*") ensures
// zero-valued fields (cleared description, deactivation) are written too.
func (r *WorkspaceRepository) Update(ctx context.Context, ws *workspace.Workspace) error {
	rec, err := workspaceToRecord(ws)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&WorkspaceRecord{}).
		Where("id = ?", rec.ID).
		Select("*").Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("workspace name %q: %w", ws.Name, domain.ErrConflict)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("workspace %s: %w", ws.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a workspace by ID.
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&WorkspaceRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Activate marks the given workspace active and deactivates all others in a
// single transaction, preserving the at-most-one-active invariant.
func (r *WorkspaceRepository) Activate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&WorkspaceRecord{}).Where("id = ?", id).Update("active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}

		return tx.Model(&WorkspaceRecord{}).
			Where("id <> ? AND active = ?", id, true).
			Update("active", false).Error
	})
}

// encodeJSON marshals v to a JSON string, returning "" for nil maps so that
// empty structures stay out of the storage column.
func encodeJSON(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeJSON unmarshals a JSON column into dst. Empty columns leave dst at
// its zero value.
func decodeJSON(s string, dst any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}
