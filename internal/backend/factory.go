// Package backend opens the record store selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"moneta/internal/storage"
	"moneta/internal/storage/memory"
	"moneta/internal/storage/postgres"
	"moneta/internal/storage/sqlite"
)

// Open returns the configured store. The caller owns it and must Close it.
func Open(ctx context.Context, cfg Config) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLiteBackend:
		store, err := sqlite.New(ctx, cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		slog.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return store, nil

	case PostgresBackend:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		slog.InfoContext(ctx, "Initialized Postgres backend")
		return store, nil

	case MemoryBackend:
		slog.InfoContext(ctx, "Initialized memory backend")
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
