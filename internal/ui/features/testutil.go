// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/testutil"
	"github.com/leapstack-labs/datareport/internal/ui/notifier"
)

// TestReportID is the ID of the report saved by SetupTestFixture.
const TestReportID = "report_0badcafe"

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store    *store.Store
	Notifier *notifier.Notifier
	Record   *store.Record
}

// TestFrame returns a small frame with a numeric, a string and a constant column.
func TestFrame() *dataset.Frame {
	return &dataset.Frame{Columns: []dataset.Column{
		{Name: "id", Kind: dataset.KindNumeric, Values: []any{int64(1), int64(2), int64(3)}},
		{Name: "city", Kind: dataset.KindString, Values: []any{"Paris", nil, "Oslo"}},
		{Name: "country", Kind: dataset.KindString, Values: []any{"x", "x", "x"}},
	}}
}

// SetupTestFixture opens an in-memory catalog holding one report built from TestFrame.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()
	ctx := context.Background()

	s := store.New(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(ctx, ":memory:"))
	t.Cleanup(func() { _ = s.Close() })

	sum, err := summary.Summarize(TestFrame(), summary.Options{Title: "cities", WithPlots: true})
	require.NoError(t, err)

	rec := &store.Record{
		ID:        TestReportID,
		Title:     "cities",
		Source:    "cities.csv",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Summary:   sum,
	}
	require.NoError(t, s.Save(ctx, rec))

	return &TestFixture{Store: s, Notifier: notifier.New(), Record: rec}
}
