package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/testutil"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(context.Background(), ":memory:"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(id, title string, created time.Time) *Record {
	n := 2
	return &Record{
		ID:        id,
		Title:     title,
		Source:    title + ".csv",
		CreatedAt: created,
		Summary: &summary.Summary{
			Title:    title,
			NRows:    3,
			NColumns: 1,
			Columns: []summary.ColumnSummary{{
				Name:    "a",
				DType:   "Int64",
				NUnique: &n,
				SampleValues: []summary.Value{
					summary.NewValue(int64(1)), summary.NewValue(nil),
				},
			}},
		},
	}
}

func TestStore_Migrate(t *testing.T) {
	s := setupTestStore(t)
	v, err := s.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	// Running again is a no-op.
	require.NoError(t, s.Migrate())
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, testRecord("report_0000000a", "sales", created)))

	got, err := s.Get(ctx, "report_0000000a")
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Title)
	assert.Equal(t, "sales.csv", got.Source)
	assert.Equal(t, 3, got.NRows)
	assert.Equal(t, 1, got.NColumns)
	assert.True(t, created.Equal(got.CreatedAt), got.CreatedAt)
	require.NotNil(t, got.Summary)
	require.Len(t, got.Summary.Columns, 1)
	assert.Equal(t, 2, *got.Summary.Columns[0].NUnique)
	assert.Equal(t, []summary.Value{
		{Str: "1", Repr: "1"},
		{Str: "None", Repr: "None", Null: true},
	}, got.Summary.Columns[0].SampleValues)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, testRecord("r1", "first", created)))
	rec := testRecord("r1", "second", time.Time{})
	rec.Summary.NRows = 10
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
	assert.Equal(t, 10, got.NRows)
	assert.True(t, created.Equal(got.CreatedAt), "creation time is kept")
}

func TestStore_SaveValidation(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	tests := []struct {
		name string
		rec  *Record
	}{
		{"missing id", &Record{Summary: &summary.Summary{}}},
		{"missing summary", &Record{ID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, s.Save(ctx, tt.rec))
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, testRecord("r1", "sales", base)))
	require.NoError(t, s.Save(ctx, testRecord("r2", "Customers", base.Add(time.Hour))))
	require.NoError(t, s.Save(ctx, testRecord("r3", "orders", base.Add(2*time.Hour))))

	tests := []struct {
		name string
		opts ListOptions
		want []string
	}{
		{"all newest first", ListOptions{}, []string{"r3", "r2", "r1"}},
		{"limit", ListOptions{Limit: 2}, []string{"r3", "r2"}},
		{"search is case insensitive", ListOptions{Search: "customers"}, []string{"r2"}},
		{"search matches source", ListOptions{Search: "sales.csv"}, []string{"r1"}},
		{"no match", ListOptions{Search: "nothing"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := s.List(ctx, tt.opts)
			require.NoError(t, err)
			var ids []string
			for _, r := range recs {
				assert.Nil(t, r.Summary)
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	require.NoError(t, s.Save(ctx, testRecord("r1", "sales", time.Time{})))

	require.NoError(t, s.Delete(ctx, "r1"))
	_, err := s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "r1"), ErrNotFound)
}

func TestStore_NotOpened(t *testing.T) {
	s := New(nil)
	_, err := s.Get(context.Background(), "x")
	assert.Error(t, err)
	assert.NoError(t, s.Close())
}

func TestStore_FilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reports.db")

	s := New(nil)
	require.NoError(t, s.Open(ctx, path))
	require.NoError(t, s.Save(ctx, testRecord("r1", "sales", time.Time{})))
	require.NoError(t, s.Close())

	s = New(nil)
	require.NoError(t, s.Open(ctx, path))
	defer func() { _ = s.Close() }()
	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "sales", got.Title)
	assert.Equal(t, path, s.Path())
}
