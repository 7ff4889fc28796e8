package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists export history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *logrus.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *logrus.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the history endpoint read while an export is being recorded.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if logger != nil {
		logger.WithField("path", dbPath).Info("sqlite recorder opened")
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exports (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			end_date   TEXT NOT NULL,
			filename   TEXT NOT NULL,
			row_count  INTEGER,
			col_count  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exports_ts ON exports(timestamp)`,

		`CREATE TABLE IF NOT EXISTS fetch_outcomes (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			export_id TEXT NOT NULL REFERENCES exports(id),
			position  INTEGER NOT NULL,
			name      TEXT,
			code      TEXT,
			status    TEXT,
			row_count INTEGER,
			message   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_export ON fetch_outcomes(export_id)`,

		`CREATE TABLE IF NOT EXISTS cleanups (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			deleted   INTEGER,
			failed    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cleanups_ts ON cleanups(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordExport(evt *ExportEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO exports
		(id, timestamp, start_date, end_date, filename, row_count, col_count)
		VALUES (?,?,?,?,?,?,?)`,
		evt.ID, ts.UnixMilli(), evt.StartDate, evt.EndDate, evt.Filename, evt.Rows, evt.Columns,
	); err != nil {
		return fmt.Errorf("insert export: %w", err)
	}
	for i, o := range evt.Outcomes {
		if _, err := tx.Exec(`INSERT INTO fetch_outcomes
			(export_id, position, name, code, status, row_count, message)
			VALUES (?,?,?,?,?,?,?)`,
			evt.ID, i, o.Name, o.Code, o.Status, o.Rows, o.Message,
		); err != nil {
			return fmt.Errorf("insert outcome: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordCleanup(evt *CleanupEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO cleanups
		(timestamp, source, deleted, failed)
		VALUES (?,?,?,?)`,
		ts.UnixMilli(), evt.Source, evt.Deleted, evt.Failed,
	)
	return err
}

func (r *SQLiteRecorder) RecentExports(limit int) ([]ExportEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`SELECT id, timestamp, start_date, end_date, filename, row_count, col_count
		FROM exports ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exports: %w", err)
	}
	events := []ExportEvent{}
	for rows.Next() {
		var (
			e  ExportEvent
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.StartDate, &e.EndDate, &e.Filename, &e.Rows, &e.Columns); err != nil {
			rows.Close()
			return nil, err
		}
		e.RecordedAt = time.UnixMilli(ts)
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range events {
		outcomes, err := r.outcomes(events[i].ID)
		if err != nil {
			return nil, err
		}
		events[i].Outcomes = outcomes
	}
	return events, nil
}

func (r *SQLiteRecorder) outcomes(exportID string) ([]FetchOutcome, error) {
	rows, err := r.db.Query(`SELECT name, code, status, row_count, message
		FROM fetch_outcomes WHERE export_id = ? ORDER BY position`, exportID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	out := []FetchOutcome{}
	for rows.Next() {
		var o FetchOutcome
		if err := rows.Scan(&o.Name, &o.Code, &o.Status, &o.Rows, &o.Message); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	if r.logger != nil {
		r.logger.Info("closing sqlite recorder")
	}
	return r.db.Close()
}
