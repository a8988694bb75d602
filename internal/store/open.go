package store

import (
	"context"
	"errors"
	"strings"
)

// Config selects and configures the storage driver.
type Config struct {
	Driver string // sqlite | postgres | memory
	Path   string // sqlite file path
	DSN    string // postgres connection string
}

// Open initializes the configured store.
func Open(ctx context.Context, cfg Config) (Repo, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("sqlite path is required")
		}
		repo, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "postgres", "postgresql":
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		repo, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
