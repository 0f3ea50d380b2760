// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite history of processed papers so earlier
// runs can be listed and failures revisited.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperdrop/pkg/types"
)

// DefaultFile is the catalog's file name under the output directory.
const DefaultFile = "catalog.db"

const defaultLimit = 50

// Store manages the run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the catalog at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			short_id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			status TEXT NOT NULL,
			stage TEXT NOT NULL,
			error TEXT,
			epub_path TEXT,
			dest_path TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_short_id ON runs(short_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends a run and returns its row ID.
func (s *Store) Record(ctx context.Context, r types.RunRecord) (int64, error) {
	authors, err := json.Marshal(r.Authors)
	if err != nil {
		return 0, fmt.Errorf("encoding authors: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (query, paper_id, short_id, title, authors, status, stage, error,
			epub_path, dest_path, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Query, r.PaperID, r.ShortID, r.Title, string(authors),
		string(r.Status), string(r.Stage), r.Error,
		r.EPUBPath, r.DestPath,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run for %s: %w", r.ShortID, err)
	}
	return res.LastInsertId()
}

// ListOptions filters List.
type ListOptions struct {
	// ShortID restricts results to one paper.
	ShortID string

	// Status restricts results to one outcome.
	Status types.RunStatus

	// Limit caps the number of rows (default 50).
	Limit int
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.RunRecord, error) {
	query := `SELECT id, query, paper_id, short_id, title, authors, status, stage, error,
		epub_path, dest_path, started_at, finished_at FROM runs WHERE 1=1`
	var args []any

	if opts.ShortID != "" {
		query += ` AND short_id = ?`
		args = append(args, opts.ShortID)
	}
	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanRun(rows *sql.Rows) (types.RunRecord, error) {
	var (
		r                  types.RunRecord
		title, authors     sql.NullString
		errMsg, epub, dest sql.NullString
		status, stage      string
		started, finished  string
	)
	if err := rows.Scan(&r.ID, &r.Query, &r.PaperID, &r.ShortID, &title, &authors,
		&status, &stage, &errMsg, &epub, &dest, &started, &finished); err != nil {
		return r, fmt.Errorf("scanning run: %w", err)
	}

	r.Title = title.String
	r.Status = types.RunStatus(status)
	r.Stage = types.Stage(stage)
	r.Error = errMsg.String
	r.EPUBPath = epub.String
	r.DestPath = dest.String

	if authors.String != "" {
		if err := json.Unmarshal([]byte(authors.String), &r.Authors); err != nil {
			return r, fmt.Errorf("decoding authors of run %d: %w", r.ID, err)
		}
	}

	var err error
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return r, fmt.Errorf("parsing start time of run %d: %w", r.ID, err)
	}
	if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return r, fmt.Errorf("parsing finish time of run %d: %w", r.ID, err)
	}
	return r, nil
}
