package db

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations[i] brings the schema from version i to i+1.
var migrations = []string{
	schemaV1,
}

// Schema SQL for version 1
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version     INTEGER PRIMARY KEY,
    applied_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Cached gateway topology (devices, groups, scenes, rooms)
CREATE TABLE IF NOT EXISTS nodes (
    id               INTEGER PRIMARY KEY,
    type             INTEGER NOT NULL,
    type_description TEXT NOT NULL DEFAULT '',
    name             TEXT NOT NULL,
    device_type      TEXT NOT NULL DEFAULT '',
    write_seq        INTEGER NOT NULL DEFAULT 0,
    updated_at       TEXT NOT NULL DEFAULT (datetime('now'))
);

-- Gateways seen by discovery or connected to directly
CREATE TABLE IF NOT EXISTS gateways (
    ip          TEXT PRIMARY KEY,
    info        TEXT NOT NULL DEFAULT '{}',
    last_seen   INTEGER NOT NULL,
    created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_nodes_write_seq ON nodes(write_seq);
CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
CREATE INDEX IF NOT EXISTS idx_gateways_last_seen ON gateways(last_seen);
`

// Migrate runs database migrations to bring the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	version, err := db.getSchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if err := db.applyMigration(ctx, v+1, migrations[v]); err != nil {
			return fmt.Errorf("failed to apply schema v%d: %w", v+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if no schema exists.
func (db *DB) getSchemaVersion(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&count)
	if err != nil {
		return 0, err
	}

	if count == 0 {
		return 0, nil
	}

	var version int
	err = db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (db *DB) applyMigration(ctx context.Context, version int, stmt string) error {
	return db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}

		return nil
	})
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	return db.getSchemaVersion(ctx)
}
