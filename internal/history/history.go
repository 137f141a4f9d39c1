// Package history keeps a local SQLite ledger of past runs: what was
// rendered, how the frames grouped, and how much time deduplication saved.
// The ledger is write-mostly; nothing in a run reads it to skip work.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusDryRun = "dry-run"
)

// Run is one ledger row.
type Run struct {
	ID        string
	StartedAt time.Time
	Engine    string
	Source    string
	Output    string
	Start     int
	End       int
	CloneMode string

	Frames  int
	Sets    int
	Renders int
	Clones  int

	ProxyTime  time.Duration
	HashTime   time.Duration
	RenderTime time.Duration
	CloneTime  time.Duration
	Saved      time.Duration

	Status string
	Error  string
}

// NewID returns a fresh run identifier.
func NewID() string { return uuid.NewString() }

// Store is an open ledger.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	s := &Store{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		engine TEXT NOT NULL,
		source TEXT NOT NULL,
		output TEXT NOT NULL,
		frame_start INTEGER NOT NULL,
		frame_end INTEGER NOT NULL,
		clone_mode TEXT NOT NULL,
		frames INTEGER NOT NULL,
		sets INTEGER NOT NULL,
		renders INTEGER NOT NULL,
		clones INTEGER NOT NULL,
		proxy_ms INTEGER NOT NULL,
		hash_ms INTEGER NOT NULL,
		render_ms INTEGER NOT NULL,
		clone_ms INTEGER NOT NULL,
		saved_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
	`
	_, err := s.conn.Exec(query)
	return err
}

// Close closes the ledger.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record inserts r, assigning an ID when r has none. It returns the ID.
func (s *Store) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	query := `
		INSERT OR REPLACE INTO runs (
			id, started_at, engine, source, output, frame_start, frame_end,
			clone_mode, frames, sets, renders, clones,
			proxy_ms, hash_ms, render_ms, clone_ms, saved_ms, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.conn.ExecContext(ctx, query,
		r.ID, r.StartedAt.UTC(), r.Engine, r.Source, r.Output, r.Start, r.End,
		r.CloneMode, r.Frames, r.Sets, r.Renders, r.Clones,
		r.ProxyTime.Milliseconds(), r.HashTime.Milliseconds(),
		r.RenderTime.Milliseconds(), r.CloneTime.Milliseconds(), r.Saved.Milliseconds(),
		r.Status, r.Error,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, engine, source, output, frame_start, frame_end,
			clone_mode, frames, sets, renders, clones,
			proxy_ms, hash_ms, render_ms, clone_ms, saved_ms, status, COALESCE(error, '')
		FROM runs ORDER BY started_at DESC, id LIMIT ?`

	rows, err := s.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                                           Run
			proxyMs, hashMs, renderMs, cloneMs, savedMs int64
		)
		if err := rows.Scan(
			&r.ID, &r.StartedAt, &r.Engine, &r.Source, &r.Output, &r.Start, &r.End,
			&r.CloneMode, &r.Frames, &r.Sets, &r.Renders, &r.Clones,
			&proxyMs, &hashMs, &renderMs, &cloneMs, &savedMs, &r.Status, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.ProxyTime = time.Duration(proxyMs) * time.Millisecond
		r.HashTime = time.Duration(hashMs) * time.Millisecond
		r.RenderTime = time.Duration(renderMs) * time.Millisecond
		r.CloneTime = time.Duration(cloneMs) * time.Millisecond
		r.Saved = time.Duration(savedMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
