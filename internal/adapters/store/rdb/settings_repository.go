package rdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time interface check.
var _ ports.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository is a GORM-backed implementation of
// ports.SettingsRepository for the global settings layer.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a settings repository over the given DB.
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Global returns all global settings.
func (r *SettingsRepository) Global(ctx context.Context) (configset.Settings, error) {
	var recs []GlobalSettingRecord
	if err := r.db.WithContext(ctx).Find(&recs).Error; err != nil {
		return nil, err
	}

	settings := make(configset.Settings, len(recs))
	for _, rec := range recs {
		var v configset.Value
		if err := json.Unmarshal([]byte(rec.Value), &v); err != nil {
			return nil, fmt.Errorf("decoding global setting %q: %w", rec.Key, err)
		}
		settings[rec.Key] = v
	}
	return settings, nil
}

// SetGlobal upserts one global setting.
func (r *SettingsRepository) SetGlobal(ctx context.Context, key string, value configset.Value) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding global setting %q: %w", key, err)
	}

	rec := GlobalSettingRecord{
		Key:       key,
		Value:     string(encoded),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rec).Error
}

// UnsetGlobal removes a global setting.
func (r *SettingsRepository) UnsetGlobal(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Delete(&GlobalSettingRecord{}, "key = ?", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("global setting %q: %w", key, domain.ErrNotFound)
	}
	return nil
}
