// Package store keeps generated reports in a SQLite catalog.
//
// Only the immutable report summary is stored. View state (checked columns, selected
// cells...) lives with the client and is never written here.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/datareport/internal/summary"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

var errNotOpened = errors.New("database not opened")

// Record is one stored report.
type Record struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Source    string           `json:"source"`
	NRows     int              `json:"n_rows"`
	NColumns  int              `json:"n_columns"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   *summary.Summary `json:"summary,omitempty"`
}

// Store is the report catalog.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a store. Call Open before use.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger, now: time.Now}
}

// Open opens the database at path and migrates it. Use ":memory:" for an in-memory catalog.
func (s *Store) Open(ctx context.Context, path string) error {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database exists per connection.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}
	s.logger.Debug("report catalog opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path passed to Open.
func (s *Store) Path() string {
	return s.path
}

// Save inserts or replaces a report. CreatedAt is set when zero.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if s.db == nil {
		return errNotOpened
	}
	if rec.ID == "" {
		return errors.New("report id is required")
	}
	if rec.Summary == nil {
		return fmt.Errorf("report %s: summary is required", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}
	rec.NRows = rec.Summary.NRows
	rec.NColumns = rec.Summary.NColumns

	body, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, title, source, n_rows, n_columns, created_at, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			source = excluded.source,
			n_rows = excluded.n_rows,
			n_columns = excluded.n_columns,
			summary = excluded.summary
	`, rec.ID, rec.Title, rec.Source, rec.NRows, rec.NColumns, rec.CreatedAt, string(body))
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", rec.ID, err)
	}
	s.logger.Debug("report saved", "id", rec.ID, "rows", rec.NRows, "columns", rec.NColumns)
	return nil
}

// Get returns a report with its summary.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, source, n_rows, n_columns, created_at, summary
		FROM reports WHERE id = ?
	`, id)

	var rec Record
	var body string
	err := row.Scan(&rec.ID, &rec.Title, &rec.Source, &rec.NRows, &rec.NColumns, &rec.CreatedAt, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}

	rec.Summary = &summary.Summary{}
	if err := json.Unmarshal([]byte(body), rec.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary of report %s: %w", id, err)
	}
	return &rec, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of records; 0 means no limit.
	Limit int
	// Search matches title or source, case-insensitively.
	Search string
}

// List returns reports without their summaries, newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	query := `SELECT id, title, source, n_rows, n_columns, created_at FROM reports`
	var args []any
	if q := strings.TrimSpace(opts.Search); q != "" {
		query += ` WHERE lower(title) LIKE ? OR lower(source) LIKE ?`
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Source, &rec.NRows, &rec.NColumns, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a report.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.db == nil {
		return errNotOpened
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
