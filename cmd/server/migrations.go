package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/platform/postgres"
)

// handleMigrations runs a single goose command against the configured
// PostgreSQL database. It's called from main() when -migrate is given.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, configured driver is %q", cfg.Database.Driver)
	}

	db, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	slog.Info("Executing migrations", "command", command)
	return postgres.Migrate(ctx, db, command, logger)
}
