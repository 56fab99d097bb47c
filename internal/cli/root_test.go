package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/cli/testutil"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
)

var reportIDPattern = regexp.MustCompile(`report_[0-9a-f]{8}`)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return testutil.RunCommand(t, NewRootCmd(), args...)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCmd()

	assert.Equal(t, "datareport", cmd.Use)
	for _, flag := range []string{"config", "verbose", "output", "dialect", "store"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"report", "serve", "explore", "history", "delete", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestReportFormats(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, out string)
	}{
		{
			name: "json",
			args: []string{"-o", "json"},
			check: func(t *testing.T, out string) {
				var s summary.Summary
				require.NoError(t, json.Unmarshal([]byte(out), &s))
				assert.Equal(t, testutil.TestTitle, s.Title)
				assert.Equal(t, 3, s.NRows)
				assert.Equal(t, 3, s.NColumns)
				assert.Contains(t, s.Source, "SELECT * FROM cities")
			},
		},
		{
			name: "auto is markdown off a terminal",
			args: nil,
			check: func(t *testing.T, out string) {
				assert.True(t, strings.HasPrefix(out, "# "+testutil.TestTitle), out)
				testutil.AssertValidMarkdown(t, out)
				testutil.AssertNoANSI(t, out)
			},
		},
		{
			name: "text has no colors off a terminal",
			args: []string{"-o", "text"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, testutil.TestTitle)
				testutil.AssertNoANSI(t, out)
			},
		},
		{
			name: "yaml",
			args: []string{"-o", "yaml", "--title", "Overridden"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "title: Overridden")
				assert.Contains(t, out, "n_rows: 3")
			},
		},
		{
			name: "html fragment",
			args: []string{"-o", "html", "--fragment"},
			check: func(t *testing.T, out string) {
				assert.NotContains(t, out, "<!doctype html>")
				assert.Contains(t, out, "_col_0")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"report", "--config", cfg}, tt.args...)
			out, _, err := run(t, args...)
			require.NoError(t, err)
			tt.check(t, out)
		})
	}
}

func TestReportToFile(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	path := filepath.Join(t.TempDir(), "cities.html")

	out, _, err := run(t, "report", "--config", cfg, "-o", "html", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<!doctype html>")
	assert.Contains(t, string(body), testutil.TestTitle)
}

func TestCatalogLifecycle(t *testing.T) {
	cfg := testutil.SetupTestProject(t)

	_, stderr, err := run(t, "report", "--config", cfg, "--save", "-o", "json")
	require.NoError(t, err)
	id := reportIDPattern.FindString(stderr)
	require.NotEmpty(t, id, stderr)
	assert.Contains(t, stderr, "Saved report "+id)

	out, _, err := run(t, "history", "--config", cfg, "-o", "json")
	require.NoError(t, err)
	var records []store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, testutil.TestTitle, records[0].Title)
	assert.Equal(t, 3, records[0].NRows)

	out, _, err = run(t, "history", "--config", cfg, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "(1 reports)")

	// A stored report renders without touching the source.
	out, _, err = run(t, "report", "--config", cfg, "--id", id, "-o", "yaml", "--dialect", "polars")
	require.NoError(t, err)
	assert.Contains(t, out, "title: "+testutil.TestTitle)

	out, _, err = run(t, "delete", "--config", cfg, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, _, err = run(t, "delete", "--config", cfg, id)
	require.ErrorIs(t, err, store.ErrNotFound)

	out, _, err = run(t, "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "(0 reports)")

	_, _, err = run(t, "report", "--config", cfg, "--id", id)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCommandErrors(t *testing.T) {
	cfg := testutil.SetupTestProject(t)
	bare := filepath.Join(t.TempDir(), "datareport.yaml")
	require.NoError(t, os.WriteFile(bare, []byte("store_path: reports.db\n"), 0o600))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no input", args: []string{"report", "--config", bare}, wantErr: "no input"},
		{name: "unknown dialect", args: []string{"report", "--config", cfg, "--dialect", "spark"}, wantErr: "unknown dataframe library"},
		{name: "unknown output", args: []string{"report", "--config", cfg, "-o", "pdf"}, wantErr: "unknown output format"},
		{name: "unsupported file", args: []string{"report", "--config", cfg, "notes.docx"}, wantErr: "unsupported data source"},
		{name: "missing config", args: []string{"report", "--config", filepath.Join(t.TempDir(), "nope.yaml")}, wantErr: "error reading config file"},
		{name: "delete needs an id", args: []string{"delete", "--config", cfg}, wantErr: "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, _, err := run(t, "completion", shell)
			require.NoError(t, err)
			assert.Contains(t, out, "datareport")
		})
	}

	_, _, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	out, _, err := run(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "datareport "+Version+"\n", out)
}
