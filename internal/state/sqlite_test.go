package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/structview/structview/internal/testutil"
	"github.com/structview/structview/pkg/core"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenStore(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func report(id string, at time.Time, diags ...core.Diagnostic) *core.Report {
	if diags == nil {
		diags = []core.Diagnostic{}
	}
	return &core.Report{
		ID:          id,
		Project:     "Frame " + id,
		Source:      "frame.json",
		Valid:       len(diags) == 0,
		Diagnostics: diags,
		CheckedAt:   at,
	}
}

var t0 = time.Date(2026, 5, 4, 10, 30, 0, 123456789, time.UTC)

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Close())
}

func TestSQLiteStore_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := OpenStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordValidation(context.Background(), report("a", t0)))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetValidation(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Frame a", got.Project)
}

func TestSQLiteStore_PathWithURISyntax(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs?v=1#a%20b")
	require.NoError(t, os.MkdirAll(dir, 0750))
	path := filepath.Join(dir, "history.db")

	store, err := OpenStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordValidation(context.Background(), report("a", t0)))
	require.NoError(t, store.Close())

	_, err = os.Stat(path)
	require.NoError(t, err, "database is created at the literal path")
}

func TestDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{":memory:", "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"/data/h.db", "file:/data/h.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
		{"/a?b/c#d%e.db", "file:/a%3Fb/c%23d%25e.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, dsn(tt.path))
		})
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// idempotent
	require.NoError(t, store.Migrate())

	for _, table := range []string{"validations", "validation_diagnostics"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		require.NoError(t, err, "table %s", table)
		rows.Close()
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, store.Migrate(), errNotOpen)
	assert.ErrorIs(t, store.RecordValidation(ctx, report("a", t0)), errNotOpen)
	_, err := store.GetValidation(ctx, "a")
	assert.ErrorIs(t, err, errNotOpen)
	_, err = store.ListValidations(ctx, 1)
	assert.ErrorIs(t, err, errNotOpen)
	_, err = store.PruneValidations(ctx, t0)
	assert.ErrorIs(t, err, errNotOpen)
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	diags := []core.Diagnostic{
		{Path: "nodes", Message: `Duplicate node ID: "n1"`},
		{Path: "members.m1.start_node", Message: `Member "m1" references non-existent start_node "missing"`},
		{Path: "loads.L1.case", Message: `Load "L1" references non-existent load case "Live"`},
	}
	want := report("r1", t0, diags...)
	require.NoError(t, store.RecordValidation(ctx, want))

	got, err := store.GetValidation(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Project, got.Project)
	assert.Equal(t, want.Source, got.Source)
	assert.False(t, got.Valid)
	assert.Equal(t, diags, got.Diagnostics, "diagnostics keep emission order")
	assert.True(t, t0.Equal(got.CheckedAt))
}

func TestSQLiteStore_GetValidEmptyDiagnostics(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordValidation(ctx, report("ok", t0)))

	got, err := store.GetValidation(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, got.Valid)
	assert.NotNil(t, got.Diagnostics)
	assert.Empty(t, got.Diagnostics)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetValidation(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordValidation(ctx, report("dup", t0)))
	err := store.RecordValidation(ctx, report("dup", t0, core.Diagnostic{Path: "nodes", Message: "x"}))
	require.Error(t, err)

	// the failed insert leaves nothing behind
	got, err := store.GetValidation(ctx, "dup")
	require.NoError(t, err)
	assert.Empty(t, got.Diagnostics)
}

func TestSQLiteStore_ListValidations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordValidation(ctx, report("old", t0)))
	require.NoError(t, store.RecordValidation(ctx, report("new", t0.Add(time.Hour), core.Diagnostic{Path: "loads", Message: "dup"})))
	require.NoError(t, store.RecordValidation(ctx, report("mid", t0.Add(time.Minute))))

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{"new", "mid", "old"}},
		{name: "limited", limit: 2, want: []string{"new", "mid"}},
		{name: "limit above count", limit: 10, want: []string{"new", "mid", "old"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListValidations(ctx, tt.limit)
			require.NoError(t, err)

			ids := make([]string, len(got))
			for i, s := range got {
				ids[i] = s.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	got, err := store.ListValidations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ErrorCount)
	assert.False(t, got[0].Valid)
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.ListValidations(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSQLiteStore_PruneValidations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordValidation(ctx, report("old", t0, core.Diagnostic{Path: "nodes", Message: "x"})))
	require.NoError(t, store.RecordValidation(ctx, report("new", t0.Add(24*time.Hour))))

	n, err := store.PruneValidations(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetValidation(ctx, "old")
	assert.ErrorIs(t, err, core.ErrNotFound)

	var orphans int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM validation_diagnostics`).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestSQLiteStore_ErrorPaths(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *SQLiteStore) error
		errMsg    string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				return s.RecordValidation(context.Background(), report("a", t0))
			},
			errMsg: "failed to begin transaction",
		},
		{
			name: "diagnostic insert fails and rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO validations").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO validation_diagnostics").WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			run: func(s *SQLiteStore) error {
				return s.RecordValidation(context.Background(), report("a", t0, core.Diagnostic{Path: "nodes", Message: "x"}))
			},
			errMsg: "failed to insert diagnostic 0",
		},
		{
			name: "commit fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO validations").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				return s.RecordValidation(context.Background(), report("a", t0))
			},
			errMsg: "failed to commit validation",
		},
		{
			name: "list query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM validations").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.ListValidations(context.Background(), 5)
				return err
			},
			errMsg: "failed to list validations",
		},
		{
			name: "corrupt timestamp",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM validations").WillReturnRows(
					sqlmock.NewRows([]string{"id", "project", "source", "valid", "checked_at"}).
						AddRow("a", "p", "", true, "yesterday"))
			},
			run: func(s *SQLiteStore) error {
				_, err := s.GetValidation(context.Background(), "a")
				return err
			},
			errMsg: "invalid checked_at",
		},
		{
			name: "diagnostics query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM validations").WillReturnRows(
					sqlmock.NewRows([]string{"id", "project", "source", "valid", "checked_at"}).
						AddRow("a", "p", "", true, t0.Format(timeLayout)))
				mock.ExpectQuery("SELECT (.+) FROM validation_diagnostics").WillReturnError(assert.AnError)
			},
			run: func(s *SQLiteStore) error {
				_, err := s.GetValidation(context.Background(), "a")
				return err
			},
			errMsg: "failed to get diagnostics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setupMock(mock)
			store := NewWithDB(db, testutil.NewTestLogger(t))

			err = tt.run(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
