// Package db persists the topology cache and known gateways in SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database, used by tests and the
// CLI when no persistence is wanted.
const MemoryPath = ":memory:"

// ErrOpen wraps every failure to reach the cache database.
var ErrOpen = errors.New("topology cache unavailable")

// Writers wait this long on a locked database before failing.
const busyTimeoutMillis = 5000

// DB is the topology cache. All access goes through a single connection so
// snapshot writes never race each other.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the cache at path. An empty path selects
// yeehome/yeehome.db under the user config directory; "~" is expanded.
func Open(path string) (*DB, error) {
	if path == MemoryPath {
		return connect(MemoryPath, MemoryPath)
	}

	path, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: create directory for %s: %w", ErrOpen, path, err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		path, busyTimeoutMillis)
	return connect(dsn, path)
}

func connect(dsn, path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}

	log.Debug().Str("path", path).Msg("Topology cache opened")
	return &DB{DB: sqlDB, path: path}, nil
}

func resolvePath(path string) (string, error) {
	switch {
	case path == "":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config directory: %w", err)
		}
		return filepath.Join(dir, "yeehome", "yeehome.db"), nil
	case strings.HasPrefix(path, "~"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	default:
		return path, nil
	}
}

// Path returns the resolved database location, or MemoryPath.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Tx runs fn in a transaction, committing when fn returns nil.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
