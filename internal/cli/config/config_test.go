package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/snippet"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.StringP("output", "o", "", "")
	flags.String("dialect", "", "")
	flags.String("store", "", "")
	flags.String("title", "", "")
	flags.String("order-by", "", "")
	flags.Int("port", 0, "")
	flags.Bool("no-browser", false, "")
	flags.String("out", "", "")
	return flags
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultStoreFile, cfg.StorePath)
	assert.Equal(t, DefaultPort, cfg.UI.Port)
	assert.True(t, cfg.UI.AutoOpen)
	assert.Equal(t, 200*time.Millisecond, cfg.UI.CopyFlagDuration)
	assert.Equal(t, snippet.Pandas, cfg.SnippetDialect())
	assert.Equal(t, DefaultCacheTTL, cfg.UI.CacheTTL)
	assert.True(t, cfg.SummaryOptions().WithPlots)
	assert.Empty(t, cfg.File)
	assert.True(t, cfg.Source.IsZero())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
dialect: polars
title: Cities
order_by: id
sample_size: 3
plots: false
store_path: reports.db
filters:
  ids: [id, city_id]
filter_scripts:
  wide: "col.kind == 'string'"
source:
  type: sqlite
  dsn: data.db
  query: SELECT * FROM cities
ui:
  port: 9000
  auto_open: false
  copy_flag_duration: 250ms
`)
	t.Chdir(t.TempDir())

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, snippet.Polars, cfg.SnippetDialect())
	assert.Equal(t, "Cities", cfg.Title)
	assert.Equal(t, 3, cfg.SummaryOptions().SampleSize)
	assert.Equal(t, "id", cfg.SummaryOptions().OrderBy)
	assert.False(t, cfg.SummaryOptions().WithPlots)
	assert.Equal(t, filepath.Join(dir, "reports.db"), cfg.StorePath)
	assert.Equal(t, []string{"id", "city_id"}, cfg.FilterConfig().Lists["ids"])
	assert.Equal(t, "col.kind == 'string'", cfg.FilterConfig().Scripts["wide"])
	assert.Equal(t, "sqlite", cfg.Source.Type)
	assert.Equal(t, "SELECT * FROM cities", cfg.Source.Query)
	assert.Equal(t, 9000, cfg.UI.Port)
	assert.False(t, cfg.UI.AutoOpen)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.CopyFlagDuration)
}

func TestLoadSearchesUpward(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "dialect: polars\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(cfg.File)
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
	assert.Equal(t, "polars", cfg.Dialect)
}

func TestLoadPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantPort int
		wantOut  string
		wantOpen bool
		wantDial string
	}{
		{
			name:     "file only",
			wantPort: 9000,
			wantOut:  "json",
			wantOpen: true,
			wantDial: "pandas",
		},
		{
			name:     "env overrides file",
			env:      map[string]string{"DATAREPORT_UI_PORT": "9100", "DATAREPORT_OUTPUT": "yaml"},
			wantPort: 9100,
			wantOut:  "yaml",
			wantOpen: true,
			wantDial: "pandas",
		},
		{
			name:     "flags override env",
			env:      map[string]string{"DATAREPORT_UI_PORT": "9100", "DATAREPORT_DIALECT": "polars"},
			args:     []string{"--port", "9200", "-o", "html", "--no-browser"},
			wantPort: 9200,
			wantOut:  "html",
			wantOpen: false,
			wantDial: "polars",
		},
		{
			name:     "unchanged flags are ignored",
			args:     []string{"--out", "report.html"},
			wantPort: 9000,
			wantOut:  "json",
			wantOpen: true,
			wantDial: "pandas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, "output: json\nui:\n  port: 9000\n")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			flags := testFlags()
			require.NoError(t, flags.Parse(tt.args))

			cfg, err := Load(path, flags)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPort, cfg.UI.Port)
			assert.Equal(t, tt.wantOut, cfg.Output)
			assert.Equal(t, tt.wantOpen, cfg.UI.AutoOpen)
			assert.Equal(t, tt.wantDial, cfg.Dialect)
		})
	}
}

func TestLoadStoreFlagIsNotRebased(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "title: x\n")
	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--store", "local.db"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "local.db", cfg.StorePath)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad yaml", body: "dialect: [", wantErr: "error reading config file"},
		{name: "unknown dialect", body: "dialect: spark\n", wantErr: "unknown dataframe library"},
		{name: "unknown output", body: "output: pdf\n", wantErr: "unknown output format"},
		{name: "negative sample", body: "sample_size: -1\n", wantErr: "sample_size"},
		{name: "bad duration", body: "ui:\n  copy_flag_duration: soon\n", wantErr: "unable to decode config"},
		{name: "source without query", body: "source:\n  type: sqlite\n  dsn: x.db\n", wantErr: "source.query is required"},
		{name: "empty script", body: "filter_scripts:\n  none: \"  \"\n", wantErr: "expression is empty"},
		{
			name:    "duplicate filter",
			body:    "filters:\n  ids: [id]\nfilter_scripts:\n  ids: \"True\"\n",
			wantErr: "both as a list and a script",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DATAREPORT_DIALECT":            "dialect",
		"DATAREPORT_ORDER_BY":           "order_by",
		"DATAREPORT_UI_PORT":            "ui.port",
		"DATAREPORT_UI_AUTO_OPEN":       "ui.auto_open",
		"DATAREPORT_SOURCE_DSN":         "source.dsn",
		"DATAREPORT_FILTERS_IDS":        "filters.ids",
		"DATAREPORT_FILTER_SCRIPTS_BIG": "filter_scripts.big",
		"DATAREPORT_STORE_PATH":         "store_path",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestEnvListFilter(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATAREPORT_FILTERS_IDS", "id,city_id")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "city_id"}, cfg.Filters["ids"])
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Dialect: "polars"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))

	logger := NewLogger(os.Stderr, true)
	ctx = context.WithValue(ctx, LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}
