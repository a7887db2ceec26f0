package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/teolgogo/quote-engine/internal/config"
	"github.com/teolgogo/quote-engine/internal/platform/memory"
	"github.com/teolgogo/quote-engine/internal/platform/postgres"
	"github.com/teolgogo/quote-engine/internal/store"
)

// storage is the backend the services run against.
type storage interface {
	store.Transactor
	Stores() store.Stores
}

// setupAppDatabase establishes a connection to PostgreSQL and configures the
// connection pool. Returns the connection if it answers a ping.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns)
	return db, nil
}

// setupStorage opens the configured backend. The returned *sql.DB is nil for
// the memory driver.
func setupStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (storage, *sql.DB, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.New(), nil, nil
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return postgres.NewDB(db, logger), db, nil
}
