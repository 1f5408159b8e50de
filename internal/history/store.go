// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps completed ranking runs in a SQLite database so
// earlier results can be listed, inspected, and exported.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/license-ranker/pkg/types"
)

const (
	// DefaultDir is used when HistoryConfig.Dir is empty.
	DefaultDir = ".license-ranker"
	dbFile     = "history.db"

	// DefaultListLimit caps ListRuns when limit is not positive.
	DefaultListLimit = 20
)

// ErrNotFound is returned by GetRun for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Store manages the history database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			locator TEXT NOT NULL,
			marker TEXT NOT NULL,
			top_n INTEGER NOT NULL,
			candidates INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			started_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			score REAL NOT NULL,
			extraction_index INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_name ON records(name)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores run and its ranked records in one transaction and
// returns the assigned ID. run.ID is ignored.
func (s *Store) SaveRun(ctx context.Context, run types.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (locator, marker, top_n, candidates, skipped, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Locator, run.Marker, run.TopN, run.Candidates, run.Skipped,
		startedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, position, name, score, extraction_index) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Records {
		if _, err := stmt.ExecContext(ctx, id, i, r.Name, r.Score, r.Index); err != nil {
			return 0, fmt.Errorf("inserting record %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	log.Debug().Int64("id", id).Int("records", len(run.Records)).Str("db", s.path).Msg("run saved")
	return id, nil
}

// ListRuns returns up to limit runs, newest first, without their records.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, locator, marker, top_n, candidates, skipped, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its records in ranked order.
func (s *Store) GetRun(ctx context.Context, id int64) (types.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, locator, marker, top_n, candidates, skipped, started_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Run{}, err
	}

	run.Records, err = s.records(ctx, id)
	if err != nil {
		return types.Run{}, err
	}
	return run, nil
}

// DeleteRun removes a run and its records.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	return nil
}

// Appearance is one ranked placement of a name in a stored run.
type Appearance struct {
	RunID     int64     `json:"run_id" yaml:"run_id"`
	Locator   string    `json:"locator" yaml:"locator"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Position  int       `json:"position" yaml:"position"`
	Score     float64   `json:"score" yaml:"score"`
}

// FindName returns every stored placement of name, newest run first.
func (s *Store) FindName(ctx context.Context, name string) ([]Appearance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.locator, r.started_at, rec.position, rec.score
		 FROM records rec JOIN runs r ON r.id = rec.run_id
		 WHERE rec.name = ?
		 ORDER BY r.id DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("querying name %q: %w", name, err)
	}
	defer rows.Close()

	var out []Appearance
	for rows.Next() {
		var a Appearance
		var started string
		if err := rows.Scan(&a.RunID, &a.Locator, &started, &a.Position, &a.Score); err != nil {
			return nil, fmt.Errorf("scanning appearance: %w", err)
		}
		a.StartedAt = parseTime(started)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) records(ctx context.Context, runID int64) (types.RankedList, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, score, extraction_index FROM records WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	list := types.RankedList{}
	for rows.Next() {
		var r types.ScoredRecord
		if err := rows.Scan(&r.Name, &r.Score, &r.Index); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var run types.Run
	var started string
	err := sc.Scan(&run.ID, &run.Locator, &run.Marker, &run.TopN, &run.Candidates, &run.Skipped, &started)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("scanning run: %w", err)
	}
	run.StartedAt = parseTime(started)
	return run, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
