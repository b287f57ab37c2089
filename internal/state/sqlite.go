// Package state persists validation history in SQLite.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/structview/structview/pkg/core"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var errNotOpen = errors.New("database not opened")

// timeLayout is the stored form of checked_at. Fixed width keeps
// lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

var _ core.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an already opened database. The caller owns migrations.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// dsn builds a SQLite URI for path. The path is percent-encoded so that
// '?', '#' and '%' in directory names are not read as URI syntax.
func dsn(path string) string {
	escaped := strings.ReplaceAll(url.PathEscape(path), "%2F", "/")
	q := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		q += "&_pragma=journal_mode(WAL)"
	}
	return "file:" + escaped + "?" + q
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened state database", "path", path)
	return nil
}

// OpenStore opens path and applies migrations.
func OpenStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	s := NewSQLiteStore(logger)
	if err := s.Open(path); err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordValidation stores a report and its diagnostics in one transaction.
func (s *SQLiteStore) RecordValidation(ctx context.Context, r *core.Report) (err error) {
	if s.db == nil {
		return errNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO validations (id, project, source, valid, error_count, checked_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Project, r.Source, r.Valid, len(r.Diagnostics), r.CheckedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert validation: %w", err)
	}

	for i, d := range r.Diagnostics {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO validation_diagnostics (validation_id, seq, path, message) VALUES (?, ?, ?, ?)`,
			r.ID, i, d.Path, d.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to insert diagnostic %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit validation: %w", err)
	}

	s.logger.Debug("recorded validation", "id", r.ID, "errors", len(r.Diagnostics))
	return nil
}

// GetValidation retrieves a report by ID with its diagnostics in emission order.
func (s *SQLiteStore) GetValidation(ctx context.Context, id string) (*core.Report, error) {
	if s.db == nil {
		return nil, errNotOpen
	}

	r := &core.Report{}
	var checkedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, project, source, valid, checked_at FROM validations WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Project, &r.Source, &r.Valid, &checkedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("validation %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation: %w", err)
	}

	if r.CheckedAt, err = parseTime(checkedAt); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, message FROM validation_diagnostics WHERE validation_id = ? ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnostics: %w", err)
	}
	defer rows.Close()

	r.Diagnostics = []core.Diagnostic{}
	for rows.Next() {
		var d core.Diagnostic
		if err := rows.Scan(&d.Path, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		r.Diagnostics = append(r.Diagnostics, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read diagnostics: %w", err)
	}

	return r, nil
}

// ListValidations returns up to limit reports, most recent first.
// A non-positive limit returns every report.
func (s *SQLiteStore) ListValidations(ctx context.Context, limit int) ([]*core.ReportSummary, error) {
	if s.db == nil {
		return nil, errNotOpen
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, source, valid, error_count, checked_at
		 FROM validations
		 ORDER BY checked_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}
	defer rows.Close()

	summaries := []*core.ReportSummary{}
	for rows.Next() {
		sum := &core.ReportSummary{}
		var checkedAt string
		if err := rows.Scan(&sum.ID, &sum.Project, &sum.Source, &sum.Valid, &sum.ErrorCount, &checkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}
		if sum.CheckedAt, err = parseTime(checkedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read validations: %w", err)
	}

	return summaries, nil
}

// PruneValidations deletes reports checked before cutoff and returns how
// many were removed. Diagnostics go with them through the foreign key.
func (s *SQLiteStore) PruneValidations(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, errNotOpen
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM validations WHERE checked_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune validations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned validations: %w", err)
	}

	s.logger.Debug("pruned validations", "count", n, "cutoff", cutoff)
	return n, nil
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid checked_at %q: %w", v, err)
	}
	return t, nil
}
