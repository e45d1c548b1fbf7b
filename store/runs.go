package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"scirel.ai/deppath/types"
)

var ErrNoRuns = errors.New("no extraction runs stored")

type Run struct {
	ID        string
	Config    types.Configuration
	StartedAt string
}

// NewRun registers an extraction run and returns its generated id.
func (db *DB) NewRun(cfg types.Configuration) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generating run id: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if _, err := db.conn.Exec("INSERT INTO runs (id, config) VALUES (?, ?)", id, string(data)); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// Runs returns all runs, most recent first.
func (db *DB) Runs() ([]Run, error) {
	rows, err := db.conn.Query("SELECT id, config, started_at FROM runs ORDER BY started_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var cfg string
		if err := rows.Scan(&run.ID, &cfg, &run.StartedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cfg), &run.Config); err != nil {
			return nil, fmt.Errorf("decoding config of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the id of the most recent run.
func (db *DB) LatestRun() (string, error) {
	var id string
	err := db.conn.QueryRow("SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	return id, err
}
