package config

import (
	"context"
	"fmt"
	"os"

	"taskdeck/internal/repository/legacy"
	"taskdeck/internal/repository/sqlite"
)

// Environment selects where local storage lives.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads TD_ENV, defaulting to production.
func GetEnvironment() Environment {
	switch Environment(os.Getenv("TD_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// CreateKVStore opens the key-value database for the configured environment.
// Production and development create the database directory if needed;
// testing uses an in-memory database.
func CreateKVStore(ctx context.Context, config *Config, env Environment) (*sqlite.KVStore, error) {
	opts := sqlite.Options{
		QueryTimeout: config.Database.QueryTimeout,
		WriteTimeout: config.Database.WriteTimeout,
	}

	var dbPath string
	switch env {
	case Testing:
		dbPath = ":memory:"
	case Development:
		dbPath = config.Database.Filename
	default:
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = config.GetDatabasePath()
	}

	store, err := sqlite.NewWithOptions(ctx, dbPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

// OpenLegacyStore opens the pre-migration flat storage file. A missing file
// yields an empty store.
func OpenLegacyStore(config *Config) (*legacy.FlatStore, error) {
	store, err := legacy.Open(config.Legacy.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy storage: %w", err)
	}
	return store, nil
}
