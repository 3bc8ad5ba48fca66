package database

import (
	"context"

	"github.com/yourusername/betting-tracker/internal/config"
)

// Initialize creates a database connection pool and, when auto_migrate is
// set, ensures the schema exists
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := NewDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
