// Package db persists batch-run outcomes to a SQLite ledger so a cohort of
// pipeline runs can be audited and reported on after the fact.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aricept094/casiapipe/internal/batch"
)

// DB wraps the ledger connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the ledger at path and applies any
// pending schema migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	// Avoid transient lock errors when several stage binaries share one
	// ledger file.
	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one recorded stage execution.
type Run struct {
	ID         string
	Stage      string
	StartedAt  time.Time
	DurationMs int64
	Processed  int
	Failed     int
}

// RecordRun inserts the run row and its rejections in one transaction.
func (db *DB) RecordRun(run Run, rejections []batch.Rejection) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO pipeline_runs (run_id, stage, started_at, duration_ms, processed, failed)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Stage, run.StartedAt.UTC().Format(time.RFC3339), run.DurationMs,
		run.Processed, run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range rejections {
		_, err = tx.Exec(`
			INSERT INTO pipeline_rejections (run_id, path, kind, message)
			VALUES (?, ?, ?, ?)`,
			run.ID, r.Path, r.Kind.String(), r.Message,
		)
		if err != nil {
			return fmt.Errorf("insert rejection: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns all recorded runs, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	rows, err := db.Query(`
		SELECT run_id, stage, started_at, duration_ms, processed, failed
		FROM pipeline_runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Stage, &started, &r.DurationMs, &r.Processed, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// KindCount is a per-rejection-kind tally across all recorded runs.
type KindCount struct {
	Kind  string
	Count int
}

// RejectionCounts tallies rejections by kind, highest first.
func (db *DB) RejectionCounts() ([]KindCount, error) {
	rows, err := db.Query(`
		SELECT kind, COUNT(*) FROM pipeline_rejections
		GROUP BY kind ORDER BY COUNT(*) DESC, kind`)
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	defer rows.Close()

	var counts []KindCount
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan rejection count: %w", err)
		}
		counts = append(counts, kc)
	}
	return counts, rows.Err()
}

// StageCount is a per-stage processed/failed tally.
type StageCount struct {
	Stage     string
	Processed int
	Failed    int
}

// StageCounts sums unit outcomes per stage across all recorded runs.
func (db *DB) StageCounts() ([]StageCount, error) {
	rows, err := db.Query(`
		SELECT stage, SUM(processed), SUM(failed) FROM pipeline_runs
		GROUP BY stage ORDER BY stage`)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var counts []StageCount
	for rows.Next() {
		var sc StageCount
		if err := rows.Scan(&sc.Stage, &sc.Processed, &sc.Failed); err != nil {
			return nil, fmt.Errorf("scan stage count: %w", err)
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
