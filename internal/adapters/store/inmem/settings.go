package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
)

// SettingsRepository is a thread-safe in-memory implementation of
// ports.SettingsRepository.
type SettingsRepository struct {
	mu     sync.RWMutex
	global configset.Settings
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{
		global: make(configset.Settings),
	}
}

func (r *SettingsRepository) Global(_ context.Context) (configset.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.global.Clone(), nil
}

func (r *SettingsRepository) SetGlobal(_ context.Context, key string, value configset.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global[key] = value
	return nil
}

func (r *SettingsRepository) UnsetGlobal(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.global[key]; !ok {
		return fmt.Errorf("global setting %q: %w", key, domain.ErrNotFound)
	}
	delete(r.global, key)
	return nil
}
