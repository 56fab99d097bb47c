package dataset

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadColumnTypes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := mock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		sqlmock.NewColumn("active").OfType("BOOLEAN", false),
		sqlmock.NewColumn("seen_at").OfType("TIMESTAMP", time.Time{}),
		sqlmock.NewColumn("blob").OfType("", ""),
	).
		AddRow(int64(1), []byte("Alice"), true, ts, []byte("x")).
		AddRow(int64(2), nil, false, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM people")).WillReturnRows(rows)

	frame, err := Load(context.Background(), db, "SELECT * FROM people")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 2, frame.NRows())
	assert.Equal(t, 5, frame.NColumns())

	kinds := make([]Kind, frame.NColumns())
	for i, c := range frame.Columns {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []Kind{KindNumeric, KindString, KindBoolean, KindDatetime, KindString}, kinds)

	name, ok := frame.Column("name")
	require.True(t, ok)
	assert.Equal(t, []any{"Alice", nil}, name.Values, "text bytes become strings")
	assert.Equal(t, []any{int64(1), "Alice", true, ts, "x"}, frame.Row(0))
}

func TestLoadDecimalStrings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := mock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("price").OfType("NUMERIC", ""),
		sqlmock.NewColumn("span").OfType("INTERVAL", ""),
	).
		AddRow("12.50", "1 day").
		AddRow([]byte("-3"), "02:00:00").
		AddRow(nil, nil)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	frame, err := Load(context.Background(), db, "SELECT price, span FROM orders")
	require.NoError(t, err)

	price, ok := frame.Column("price")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, price.Kind)
	assert.Equal(t, []any{12.5, -3.0, nil}, price.Values)

	span, ok := frame.Column("span")
	require.True(t, ok)
	assert.Equal(t, KindOther, span.Kind)
	assert.Equal(t, []any{"1 day", "02:00:00", nil}, span.Values)
}

func TestLoadQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("relation does not exist"))

	_, err = Load(context.Background(), db, "SELECT * FROM missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestLoadScanError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rows := sqlmock.NewRows([]string{"a"}).AddRow(1).RowError(0, errors.New("connection reset"))
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	_, err = Load(context.Background(), db, "SELECT a FROM t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestLoadSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE t (id INTEGER, label TEXT, score REAL);
		INSERT INTO t VALUES (3, 'c', 1.5), (1, 'a', NULL), (2, NULL, 0.25);
	`)
	require.NoError(t, err)

	frame, err := Load(context.Background(), db, "SELECT id, label, score FROM t")
	require.NoError(t, err)
	assert.Equal(t, 3, frame.NRows())
	assert.Equal(t, KindNumeric, frame.Columns[0].Kind)
	assert.Equal(t, KindString, frame.Columns[1].Kind)
	assert.Equal(t, KindNumeric, frame.Columns[2].Kind)

	sorted, err := frame.SortBy("score")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(3), int64(1)}, sorted.Columns[0].Values, "nulls last")
	assert.Equal(t, []any{int64(3), int64(1), int64(2)}, frame.Columns[0].Values, "original untouched")

	_, err = frame.SortBy("nope")
	assert.Error(t, err)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		dbType string
		values []any
		want   Kind
	}{
		{"INTEGER", nil, KindNumeric},
		{"DECIMAL(10,2)", nil, KindNumeric},
		{"DOUBLE", nil, KindNumeric},
		{"ENUM('A','B')", nil, KindCategorical},
		{"BOOLEAN", nil, KindBoolean},
		{"DATE", nil, KindDatetime},
		{"TIMESTAMP WITH TIME ZONE", nil, KindDatetime},
		{"VARCHAR", nil, KindString},
		{"BLOB", []any{[]byte("x")}, KindOther},
		{"", []any{nil, 1.5}, KindNumeric},
		{"", []any{nil, "x"}, KindString},
		{"", []any{nil}, KindOther},
		{"MAP", []any{map[string]any{}}, KindOther},
		{"INTERVAL", []any{"1 day"}, KindOther},
		{"POINT", []any{"(1,2)"}, KindString},
		{"NUMERIC", []any{"1.50"}, KindNumeric},
		{"BIGINT UNSIGNED", nil, KindNumeric},
		{"TIMESTAMPTZ", nil, KindDatetime},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			assert.Equal(t, tt.want, inferKind(tt.dbType, tt.values))
		})
	}
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, -1, CompareValues(int64(1), 1.5))
	assert.Equal(t, 1, CompareValues(nil, "a"))
	assert.Equal(t, -1, CompareValues("a", nil))
	assert.Equal(t, 0, CompareValues(nil, nil))
	assert.Equal(t, -1, CompareValues("a", "b"))
	assert.Equal(t, -1, CompareValues(false, true))
	assert.Equal(t, -1, CompareValues(time.Unix(1, 0), time.Unix(2, 0)))
}

func TestFileQuery(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"data/people.csv", "SELECT * FROM read_csv_auto('data/people.csv')", false},
		{"o'brien.parquet", "SELECT * FROM read_parquet('o''brien.parquet')", false},
		{"events.ndjson", "SELECT * FROM read_json_auto('events.ndjson')", false},
		{"sheet.xlsx", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FileQuery(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenValidation(t *testing.T) {
	_, err := Open(context.Background(), Source{Type: "oracle", Query: "SELECT 1"}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Open(context.Background(), Source{Type: SourceSQLite}, nil)
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	path := t.TempDir() + "/data.db"
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE t (x INTEGER); INSERT INTO t VALUES (1), (2);`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	frame, err := Open(context.Background(), Source{Type: SourceSQLite, DSN: path, Query: "SELECT x FROM t ORDER BY x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, frame.Columns[0].Values)
}
