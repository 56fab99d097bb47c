// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // sqlite driver
)

// TestTitle is the report title configured by SetupTestProject.
const TestTitle = "Cities"

// SetupTestProject creates a temporary project: a SQLite database holding a cities
// table and a datareport.yaml whose source queries it. The catalog lives in the project.
// It returns the path of the config file.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cities.db")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, stmt := range []string{
		`CREATE TABLE cities (id INTEGER, city TEXT, country TEXT)`,
		`INSERT INTO cities VALUES (1, 'Paris', 'FR'), (2, NULL, 'FR'), (3, 'Oslo', 'FR')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	cfg := `title: ` + TestTitle + `
store_path: reports.db
filters:
  ids: [id]
source:
  type: sqlite
  dsn: ` + dbPath + `
  query: SELECT * FROM cities ORDER BY id
ui:
  auto_open: false
`
	path := filepath.Join(dir, "datareport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

// RunCommand executes cmd with args and returns what it wrote to stdout and stderr.
func RunCommand(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
