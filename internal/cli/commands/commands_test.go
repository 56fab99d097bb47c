package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/cli/config"
	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/explore"
	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/testutil"
	"github.com/leapstack-labs/datareport/internal/view"
)

func testInput(t *testing.T) *report.Input {
	t.Helper()
	frame := &dataset.Frame{Columns: []dataset.Column{
		{Name: "id", Kind: dataset.KindNumeric, Values: []any{int64(1), int64(2), int64(3)}},
		{Name: "city", Kind: dataset.KindString, Values: []any{"Paris", nil, "Oslo"}},
	}}
	s, err := summary.Summarize(frame, summary.Options{Title: "cities"})
	require.NoError(t, err)
	in, err := report.NewInput("report_0badcafe", s, summary.FilterConfig{}, "")
	require.NoError(t, err)
	return in
}

type fakeClipboard struct{ text string }

func (c *fakeClipboard) Available() bool { return true }

func (c *fakeClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

// lines feeds a fixed script to exploreLoop, then reports end of input.
func lines(script ...any) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(script) {
			return "", io.EOF
		}
		item := script[i]
		i++
		if err, ok := item.(error); ok {
			return "", err
		}
		return item.(string), nil
	}
}

func TestCommandsMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewReportCommand(), "report [file]", []string{"out", "fragment", "title", "order-by", "sample-size", "save", "id"}},
		{NewServeCommand(), "serve [file]", []string{"port", "no-browser", "title", "order-by", "id"}},
		{NewExploreCommand(), "explore [file]", []string{"id", "title", "order-by"}},
		{NewHistoryCommand(), "history", []string{"limit", "search"}},
		{NewDeleteCommand(), "delete <id>...", nil},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestExploreLoop(t *testing.T) {
	clip := &fakeClipboard{}
	var out, errOut bytes.Buffer
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sess, err := explore.NewSession(testInput(t), explore.Options{
		Out:              &out,
		Clipboards:       []view.Clipboard{clip},
		Now:              func() time.Time { return now },
		CopyFlagDuration: time.Second,
	})
	require.NoError(t, err)

	script := lines(
		"check city",
		readline.ErrInterrupt,
		"bogus",
		"copy selection",
		"",
		"quit",
		"check id",
	)
	require.NoError(t, exploreLoop(sess, script, &errOut))

	assert.Equal(t, "['city']", clip.text)
	assert.Contains(t, out.String(), "Copied:")
	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "unknown command")

	// The loop stopped at quit: id was never checked.
	selected := sess.Engine().SelectedColumns("report_0badcafe")
	require.Len(t, selected, 1)
	assert.Equal(t, "city", selected[0].Name)

	// The copy flag clears once the loop runs due work after the delay.
	require.Positive(t, sess.Scheduler().Pending())
	now = now.Add(2 * time.Second)
	require.NoError(t, exploreLoop(sess, lines(), &errOut))
	assert.Zero(t, sess.Scheduler().Pending())
}

func TestExploreLoopStopsOnReadError(t *testing.T) {
	sess, err := explore.NewSession(testInput(t), explore.Options{})
	require.NoError(t, err)

	boom := errors.New("terminal gone")
	err = exploreLoop(sess, lines("cols", boom), io.Discard)
	assert.ErrorIs(t, err, boom)
}

func TestRenderHistory(t *testing.T) {
	records := []store.Record{{
		ID:        "report_0badcafe",
		Title:     "cities",
		Source:    "cities.csv",
		NRows:     1234,
		NColumns:  3,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	var buf bytes.Buffer
	require.NoError(t, renderHistoryTable(&buf, records, false))
	assert.Contains(t, buf.String(), "report_0badcafe")
	assert.Contains(t, buf.String(), "1,234")
	assert.Contains(t, buf.String(), "(1 reports)")

	buf.Reset()
	require.NoError(t, renderHistoryTable(&buf, records, true))
	assert.Contains(t, buf.String(), "| report_0badcafe |")

	buf.Reset()
	require.NoError(t, renderHistoryJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestLoadSummary(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.StorePath = t.TempDir() + "/reports.db"
	cc := &CommandContext{Cfg: cfg, Logger: testutil.NewTestLogger(t)}

	_, err := cc.LoadSummary(ctx, InputOptions{})
	require.ErrorIs(t, err, errNoInput)

	_, err = cc.LoadSummary(ctx, InputOptions{Path: "data.xlsx"})
	require.ErrorIs(t, err, dataset.ErrUnsupportedSource)

	s, err := cc.OpenStore(ctx)
	require.NoError(t, err)
	in := testInput(t)
	rec, err := cc.SaveInput(ctx, s, in)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, "cities", rec.Title)

	got, err := cc.LoadInput(ctx, InputOptions{ID: in.ID})
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, 3, got.Summary.NRows)

	_, err = cc.LoadSummary(ctx, InputOptions{ID: "report_deadbeef"})
	require.ErrorIs(t, err, store.ErrNotFound)
}
