package app

import (
	"context"
	"fmt"

	"skillscatalog.shikanime.studio/internal/config"
	"skillscatalog.shikanime.studio/internal/database"
)

// NewMigrator opens the configured database for schema migrations.
func NewMigrator(ctx context.Context, cfg *config.Config) (*database.Migrator, error) {
	if !cfg.DatabaseEnabled() {
		return nil, fmt.Errorf("no database configured: set --dsn, DSN or PGHOST")
	}
	return database.NewMigratorForConfig(ctx, cfg)
}
