// Package history persists build reports in a local SQLite database so past
// runs can be inspected with the history command.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/redirgen/internal/emit"
)

// Store is a SQLite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		redirects INTEGER NOT NULL,
		pages_emitted INTEGER NOT NULL,
		map_emitted INTEGER NOT NULL,
		map_checksum TEXT,
		content_commit TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Append records one finished build.
func (s *Store) Append(ctx context.Context, r *emit.BuildReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds
		 (build_id, started_at, finished_at, pages, redirects, pages_emitted, map_emitted, map_checksum, content_commit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.BuildID, r.StartedAt.Unix(), r.FinishedAt.Unix(),
		r.Pages, r.Redirects, r.PagesEmitted,
		boolToInt(r.MapEmitted), r.MapChecksum, r.ContentCommit,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]emit.BuildReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, finished_at, pages, redirects, pages_emitted, map_emitted, map_checksum, content_commit
		 FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var reports []emit.BuildReport
	for rows.Next() {
		var r emit.BuildReport
		var started, finished int64
		var mapEmitted int
		var checksum, commit sql.NullString

		if err := rows.Scan(&r.BuildID, &started, &finished, &r.Pages, &r.Redirects,
			&r.PagesEmitted, &mapEmitted, &checksum, &commit); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		r.StartedAt = time.Unix(started, 0).UTC()
		r.FinishedAt = time.Unix(finished, 0).UTC()
		r.MapEmitted = mapEmitted != 0
		r.MapChecksum = checksum.String
		r.ContentCommit = commit.String
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// LastChecksum returns the map checksum of the most recent build that
// emitted a map, or "" when there is none.
func (s *Store) LastChecksum(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var checksum string
	err := s.db.QueryRowContext(ctx,
		`SELECT map_checksum FROM builds WHERE map_emitted = 1 ORDER BY started_at DESC, id DESC LIMIT 1`,
	).Scan(&checksum)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query last checksum: %w", err)
	}
	return checksum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
