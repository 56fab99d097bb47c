package explore

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/testutil"
	"github.com/leapstack-labs/datareport/internal/view"
)

const rid = "report_e0e0e0e0"

type testSession struct {
	*Session
	out   *bytes.Buffer
	clip  *view.MemoryClipboard
	clock time.Time
}

func (ts *testSession) advance(d time.Duration) { ts.clock = ts.clock.Add(d) }

// run executes lines and returns the output of the last one.
func (ts *testSession) run(t *testing.T, lines ...string) string {
	t.Helper()
	for _, line := range lines {
		ts.out.Reset()
		_, err := ts.Exec(line)
		require.NoError(t, err, line)
	}
	return ts.out.String()
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	frame := &dataset.Frame{Columns: []dataset.Column{
		{Name: "name", Kind: dataset.KindString, Values: []any{"Ann", "Bob", nil}},
		{Name: "age", Kind: dataset.KindNumeric, Values: []any{int64(30), int64(40), int64(50)}},
		{Name: "city", Kind: dataset.KindString, Values: []any{"Oslo", "Oslo", "Oslo"}},
	}}
	sum, err := summary.Summarize(frame, summary.Options{Title: "people"})
	require.NoError(t, err)
	in, err := report.NewInput(rid, sum, summary.FilterConfig{}, snippet.Polars)
	require.NoError(t, err)

	ts := &testSession{out: &bytes.Buffer{}, clip: &view.MemoryClipboard{}, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s, err := NewSession(in, Options{
		Out:        ts.out,
		Clipboards: []view.Clipboard{ts.clip},
		Now:        func() time.Time { return ts.clock },
		Logger:     testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	ts.Session = s
	return ts
}

func TestSession_Selection(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"check by name", []string{"check name age"}, "['name', 'age']"},
		{"check by index", []string{"check 2"}, "['city']"},
		{"uncheck", []string{"check name age", "uncheck name"}, "['age']"},
		{"all", []string{"all"}, "['name', 'age', 'city']"},
		{"none", []string{"all", "none"}, "[]"},
		{"all respects the filter", []string{"filter numeric()", "all"}, "['age']"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSession(t)
			out := ts.run(t, tt.lines...)
			assert.Contains(t, out, "Selected:")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestSession_CellAndModes(t *testing.T) {
	ts := newTestSession(t)

	out := ts.run(t, "cell head 1 name")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "Highlighted column: name")

	out = ts.run(t, "mode table-cell-filter")
	assert.Contains(t, out, `df.filter(pl.col('name') == 'Bob')`)

	out = ts.run(t, "cell head 2 name")
	assert.Contains(t, out, `df.filter(pl.col('name').is_null())`)

	out = ts.run(t, "modes")
	assert.Contains(t, out, "* table-cell-filter")

	card, ok := ts.Engine().HighlightedColumn(rid)
	require.True(t, ok)
	assert.Equal(t, "name", card.Name)
}

func TestSession_Filters(t *testing.T) {
	ts := newTestSession(t)

	out := ts.run(t, "filter string()")
	assert.Contains(t, out, "hidden")
	assert.Contains(t, out, "2 columns shown")

	out = ts.run(t, "filters")
	assert.Contains(t, out, "* string()")
	assert.Contains(t, out, "all()")
}

func TestSession_Copy(t *testing.T) {
	ts := newTestSession(t)

	out := ts.run(t, "copy")
	assert.Contains(t, out, "Nothing copied")
	assert.Equal(t, 0, ts.clip.Writes)

	out = ts.run(t, "cell head 0 age", "copy bar")
	assert.Contains(t, out, "Copied:")
	assert.Equal(t, "30", ts.clip.Text)

	bar, ok := view.Lookup[view.Bar](ts.Engine().Document(), report.PowerbarID(rid))
	require.True(t, ok)
	assert.True(t, bar.BeingCopied)

	ts.advance(view.DefaultCopyFlagDuration)
	assert.Equal(t, 1, ts.Scheduler().RunDue())
	assert.False(t, bar.BeingCopied)

	ts.run(t, "check city", "copy selection")
	assert.Equal(t, "['city']", ts.clip.Text)
}

func TestSession_TabsAndStatus(t *testing.T) {
	ts := newTestSession(t)

	out := ts.run(t, "status")
	assert.Contains(t, out, "people")
	assert.Contains(t, out, "Unseen warnings")

	out = ts.run(t, "tab warnings")
	assert.Contains(t, out, "name:")
	assert.Contains(t, out, "constant value 'Oslo'")

	out = ts.run(t, "status")
	assert.Contains(t, out, "Warnings")
	assert.NotContains(t, out, "Unseen warnings")

	out = ts.run(t, "tab sample")
	assert.Contains(t, out, "head: 3 rows")
}

func TestSession_Errors(t *testing.T) {
	tests := []struct {
		line    string
		wantErr error
	}{
		{"explode", ErrUnknownCommand},
		{"mode sideways", view.ErrUnknownMode},
		{"filter nope()", view.ErrUnknownFilter},
		{"cell tail 0 name", view.ErrNodeNotFound},
		{"tab settings", view.ErrNodeNotFound},
		{"check", nil},
		{"check nobody", nil},
		{"cell middle 0 0", nil},
		{"copy everything", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			ts := newTestSession(t)
			_, err := ts.Exec(tt.line)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), err)
			}
		})
	}
}

func TestSession_Quit(t *testing.T) {
	ts := newTestSession(t)
	for _, line := range []string{"quit", "exit", "  QUIT  "} {
		done, err := ts.Exec(line)
		require.NoError(t, err)
		assert.True(t, done, line)
	}
	done, err := ts.Exec("   ")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestSession_Help(t *testing.T) {
	ts := newTestSession(t)
	out := ts.run(t, "help")
	for _, name := range ts.Commands() {
		assert.Contains(t, out, name)
	}
	assert.Len(t, ts.Completer().GetChildren(), len(ts.Commands()))
}

func TestCommandClipboard_Available(t *testing.T) {
	found := CommandClipboard{Name: "pbcopy", lookPath: func(string) (string, error) { return "/usr/bin/pbcopy", nil }}
	missing := CommandClipboard{Name: "pbcopy", lookPath: func(string) (string, error) { return "", errors.New("not found") }}
	assert.True(t, found.Available())
	assert.False(t, missing.Available())
	assert.Len(t, DefaultClipboards(), 4)
}
