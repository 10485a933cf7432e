// Package rdb provides GORM-backed repository implementations over SQLite.
// Domain entities are mapped to flat records with JSON-encoded columns for
// nested structures (settings, metadata, steps).
package rdb

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenFromURL opens a GORM DB based on a simple store-url string.
// Supported:
//   - sqlite:<dsn>  e.g., sqlite:./writeit.db or sqlite::memory:
//
// TranslateError is enabled so unique constraint violations surface as
// gorm.ErrDuplicatedKey, which the repositories map to domain.ErrConflict.
func OpenFromURL(storeURL string) (*gorm.DB, error) {
	if !strings.HasPrefix(storeURL, "sqlite:") {
		return nil, fmt.Errorf("unsupported store scheme: %s", storeURL)
	}

	dsn := strings.TrimPrefix(storeURL, "sqlite:")
	if dsn == "" {
		dsn = "./writeit.db"
	}

	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

// AutoMigrate applies schema migrations for all RDB models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&WorkspaceRecord{},
		&PipelineRecord{},
		&RunRecord{},
		&GlobalSettingRecord{},
	)
}
