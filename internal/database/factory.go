package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"iqdbtag/internal/config"
	"iqdbtag/internal/tagger"
)

// NewDatabaseFromConfig opens the cache database described by cfg.
// A database that does not exist yet is created and migrated; an existing one
// must already be at the latest schema version. Every failure is returned as a
// *tagger.ConfigurationError.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, clock tagger.Clock) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, &tagger.ConfigurationError{Err: fmt.Errorf("path required for sqlite database")}
		}
		return openFileDatabase(cfg.Path, clock)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:", clock)
		if err != nil {
			return nil, &tagger.ConfigurationError{Err: err}
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, &tagger.ConfigurationError{Err: err}
		}
		return db, nil
	default:
		return nil, &tagger.ConfigurationError{Err: fmt.Errorf("unknown database type: %s", cfg.Type)}
	}
}

func openFileDatabase(path string, clock tagger.Clock) (*SQLiteDatabase, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &tagger.ConfigurationError{Err: fmt.Errorf("creating database directory: %w", err)}
	}

	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	db, err := NewSQLiteDatabase(path, clock)
	if err != nil {
		return nil, &tagger.ConfigurationError{Err: err}
	}

	if isNew {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, &tagger.ConfigurationError{Err: fmt.Errorf("initializing %s: %w", path, err)}
		}
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, &tagger.ConfigurationError{Err: fmt.Errorf("database %s: %w", path, err)}
	}
	return db, nil
}
