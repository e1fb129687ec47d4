// Package docstore persists parsed judgments in SQLite. Judgments are
// keyed by case title and carry their full parsed form as JSON, with an
// FTS5 table over facts, issues, and holding for case-level keyword
// lookup independent of the chunk indexes.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure Go SQLite driver, no CGO

	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/judgment"
)

// Store is a SQLite-backed judgment store. Safe for concurrent use; a
// single connection serializes writes, WAL mode keeps readers unblocked.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// CaseSummary is the projection returned by keyword search.
type CaseSummary struct {
	Title   string `json:"title"`
	Court   string `json:"court"`
	Date    string `json:"date,omitempty"`
	Holding string `json:"holding,omitempty"`
}

// Open opens or creates a judgment store at path. An empty path opens
// an in-memory store for tests.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create docstore directory: %w", err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to open docstore", err)
	}

	// Single writer prevents lock contention under the pure Go driver.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Pragmas must go through statements; modernc.org/sqlite ignores
	// most DSN parameters.
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to set pragma", err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS judgments (
			title    TEXT PRIMARY KEY,
			court    TEXT NOT NULL DEFAULT '',
			date     TEXT NOT NULL DEFAULT '',
			holding  TEXT NOT NULL DEFAULT '',
			document TEXT NOT NULL
		)`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS judgments_fts USING fts5(
			title UNINDEXED,
			facts,
			issues,
			holding
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to initialize docstore schema", err)
		}
	}
	return nil
}

// Upsert inserts or replaces a judgment keyed by its title.
func (s *Store) Upsert(ctx context.Context, j *judgment.Judgment) error {
	if j == nil || strings.TrimSpace(j.Title) == "" {
		return caseerr.ValidationError("judgment title is required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return caseerr.InternalError("docstore is closed", nil)
	}

	doc, err := json.Marshal(j)
	if err != nil {
		return caseerr.InternalError("failed to marshal judgment", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO judgments (title, court, date, holding, document)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(title) DO UPDATE SET
			court = excluded.court,
			date = excluded.date,
			holding = excluded.holding,
			document = excluded.document`,
		j.Title, j.Court, j.Date, j.Holding, string(doc))
	if err != nil {
		return caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to upsert judgment", err)
	}

	// FTS5 has no upsert; replace the row for this title.
	if _, err := tx.ExecContext(ctx, `DELETE FROM judgments_fts WHERE title = ?`, j.Title); err != nil {
		return caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to clear search row", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO judgments_fts (title, facts, issues, holding) VALUES (?, ?, ?, ?)`,
		j.Title, j.Facts, strings.Join(j.Issues, "\n"), j.Holding)
	if err != nil {
		return caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to index search row", err)
	}

	return tx.Commit()
}

// Load returns the judgment stored under a title, or a not-found error.
func (s *Store) Load(ctx context.Context, title string) (*judgment.Judgment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, caseerr.InternalError("docstore is closed", nil)
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM judgments WHERE title = ?`, title).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, caseerr.New(caseerr.ErrCodeFileNotFound, fmt.Sprintf("no judgment stored for %q", title), nil)
	}
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to load judgment", err)
	}

	var j judgment.Judgment
	if err := json.Unmarshal([]byte(doc), &j); err != nil {
		return nil, caseerr.New(caseerr.ErrCodeFileCorrupt, fmt.Sprintf("stored judgment %q is corrupt", title), err)
	}
	return &j, nil
}

// ListTitles returns all stored case titles in alphabetical order.
func (s *Store) ListTitles(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, caseerr.InternalError("docstore is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT title FROM judgments ORDER BY title`)
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to list judgments", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to scan title", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// All loads every stored judgment in title order.
func (s *Store) All(ctx context.Context) ([]*judgment.Judgment, error) {
	titles, err := s.ListTitles(ctx)
	if err != nil {
		return nil, err
	}
	judgments := make([]*judgment.Judgment, 0, len(titles))
	for _, title := range titles {
		j, err := s.Load(ctx, title)
		if err != nil {
			return nil, err
		}
		judgments = append(judgments, j)
	}
	return judgments, nil
}

// SearchCases runs FTS5 keyword search over facts, issues, and holding.
// Distinct from chunk retrieval: this answers "which cases mention X"
// at the case level.
func (s *Store) SearchCases(ctx context.Context, query string, limit int) ([]CaseSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, caseerr.InternalError("docstore is closed", nil)
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT j.title, j.court, j.date, j.holding
		 FROM judgments_fts f
		 JOIN judgments j ON j.title = f.title
		 WHERE judgments_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		ftsQuery(query), limit)
	if err != nil {
		return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "case search failed", err)
	}
	defer rows.Close()

	var results []CaseSummary
	for rows.Next() {
		var c CaseSummary
		if err := rows.Scan(&c.Title, &c.Court, &c.Date, &c.Holding); err != nil {
			return nil, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to scan case row", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// Count returns the number of stored judgments.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, caseerr.InternalError("docstore is closed", nil)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM judgments`).Scan(&n); err != nil {
		return 0, caseerr.New(caseerr.ErrCodeBackendUnavailable, "failed to count judgments", err)
	}
	return n, nil
}

// ftsQuery quotes each term so user input cannot inject FTS5 syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, ``)+`"`)
	}
	return strings.Join(quoted, " ")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
