package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"  // postgres driver, registered as "pgx"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver
)

// ErrUnsupportedSource is returned for file extensions and source types that cannot be read.
var ErrUnsupportedSource = errors.New("unsupported data source")

// Source types.
const (
	SourceDuckDB   = "duckdb"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// Source describes a database query to summarize.
type Source struct {
	Type  string `koanf:"type" json:"type"`
	DSN   string `koanf:"dsn" json:"dsn"`
	Query string `koanf:"query" json:"query"`
}

// IsZero reports whether no source was configured.
func (s Source) IsZero() bool {
	return s.Type == "" && s.DSN == "" && s.Query == ""
}

// String describes the source without credentials.
func (s Source) String() string {
	return fmt.Sprintf("%s: %s", s.Type, s.Query)
}

func driverName(sourceType string) (string, error) {
	switch strings.ToLower(sourceType) {
	case SourceDuckDB, "":
		return "duckdb", nil
	case SourcePostgres, "postgresql", "pgx":
		return "pgx", nil
	case SourceSQLite, "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("%w: source type %q", ErrUnsupportedSource, sourceType)
	}
}

// Open runs the source query and loads its result.
func Open(ctx context.Context, src Source, logger *slog.Logger) (*Frame, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(src.Query) == "" {
		return nil, fmt.Errorf("source %s: query is required", src.Type)
	}
	driver, err := driverName(src.Type)
	if err != nil {
		return nil, err
	}

	logger.Debug("opening data source", slog.String("driver", driver))
	db, err := sql.Open(driver, src.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	return Load(ctx, db, src.Query)
}

// FileQuery returns the DuckDB query that reads a data file, chosen by extension.
func FileQuery(path string) (string, error) {
	quoted := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return "SELECT * FROM read_csv_auto(" + quoted + ")", nil
	case ".parquet", ".pq":
		return "SELECT * FROM read_parquet(" + quoted + ")", nil
	case ".json", ".jsonl", ".ndjson":
		return "SELECT * FROM read_json_auto(" + quoted + ")", nil
	default:
		return "", fmt.Errorf("%w: %s (expected .csv, .tsv, .parquet or .json)", ErrUnsupportedSource, filepath.Base(path))
	}
}

// OpenFile loads a CSV, Parquet or JSON file through an in-memory DuckDB.
func OpenFile(ctx context.Context, path string, logger *slog.Logger) (*Frame, error) {
	query, err := FileQuery(path)
	if err != nil {
		return nil, err
	}
	return Open(ctx, Source{Type: SourceDuckDB, Query: query}, logger)
}
