package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// SchemaVersion is the current catalog schema version.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created TEXT NOT NULL,
    preset TEXT,
    integrator TEXT NOT NULL,
    dt REAL NOT NULL,
    steps INTEGER NOT NULL,
    params TEXT NOT NULL,      -- JSON
    init_state TEXT NOT NULL,  -- JSON array
    initial_energy REAL,
    max_drift REAL,
    crossings INTEGER,
    metrics TEXT               -- JSON object
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the catalog tables or migrates an existing catalog.
func InitSchema(ctx context.Context, db *sql.DB, log logrus.FieldLogger) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		log.WithField("version", SchemaVersion).Debug("creating run catalog")
		return createSchema(ctx, db)
	}

	if current < SchemaVersion {
		log.WithFields(logrus.Fields{"from": current, "to": SchemaVersion}).Info("migrating run catalog")
		return migrateSchema(ctx, db, current)
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

func migrateSchema(ctx context.Context, db *sql.DB, current int) error {
	// Only v1 exists so far.
	_ = current
	return nil
}
