package store

import (
	"database/sql"
	"fmt"
)

type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations are applied in order; append new ones with the next version.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    config TEXT NOT NULL,
    started_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS article_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    total_pairs INTEGER NOT NULL,
    aligned_pairs INTEGER NOT NULL,
    path_found INTEGER NOT NULL,
    cross_sentence_pairs INTEGER NOT NULL,
    cross_sentence_path_found INTEGER NOT NULL,
    enable_cross_sentence INTEGER NOT NULL,
    cross_sentence_strategy TEXT,
    created_at TEXT DEFAULT (datetime('now')),
    UNIQUE (run_id, title)
);

CREATE TABLE IF NOT EXISTS path_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id INTEGER NOT NULL REFERENCES article_results(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    subject TEXT NOT NULL,
    object TEXT NOT NULL,
    relation TEXT,
    subject_type TEXT,
    object_type TEXT,
    path_type TEXT NOT NULL,
    sentence_index INTEGER,
    sentence_indexes TEXT,
    path TEXT,
    path_positions TEXT,
    note TEXT
);`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index path records by article and type",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_path_records_article ON path_records(article_id, position);
CREATE INDEX IF NOT EXISTS idx_path_records_type ON path_records(path_type);`)
			return err
		},
	},
}

func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

func schemaVersion(conn *sql.DB) (int, error) {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// migrate brings the schema to the latest version, tracked in PRAGMA
// user_version.
func migrate(conn *sql.DB) error {
	current, err := schemaVersion(conn)
	if err != nil {
		return err
	}
	if current >= latestVersion() {
		return nil
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		storeLogger.Info().Int("version", m.Version).Str("description", m.Description).Msg("Applying migration")

		tx, err := conn.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if err := m.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}

		// modernc/sqlite does not accept user_version inside the transaction
		if _, err := conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			return fmt.Errorf("setting version %d: %w", m.Version, err)
		}
	}
	return nil
}
