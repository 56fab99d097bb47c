package view

import (
	"fmt"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/testutil"
)

// testingT is satisfied by *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
	Log(args ...any)
}

var fixtureColumns = []struct {
	name       string
	filterable bool
	values     []any
}{
	{"name", true, []any{"Alice", "Bob", "Carol"}},
	{"age", true, []any{int64(31), nil, int64(7)}},
	{"city", true, []any{"Paris", "it's", "Oslo"}},
	{"score", false, []any{1.5, 2.0, nil}},
}

var fixtureOptions = []ModeOption{
	{Mode: ModeTableCellValue, Label: "Value", Placeholder: "Click a table cell"},
	{Mode: ModeTableCellRepr, Label: "Repr", Placeholder: "Click a table cell"},
	{Mode: ModeTableCellFilter, Label: "Filter", Placeholder: "Click a table cell"},
	{Mode: ModeTableColumnName, Label: "Column name", Placeholder: "Click a table cell"},
	{Mode: ModeTableColumnNameRepr, Label: "Column name repr", Placeholder: "Click a table cell"},
	{Mode: ModeSelectedColumns, Label: "Selected columns", Placeholder: "Select columns"},
}

func fixtureFilters() FilterSet {
	return FilterSet{
		{Name: "all()", Columns: []string{"name", "age", "city", "score"}},
		{Name: "numeric()", Columns: []string{"age", "score"}},
		{Name: "string()", Columns: []string{"name", "city", "name"}},
		{Name: "none", Columns: nil},
	}
}

// buildFixture registers one report per ID with the same layout the report
// generator produces.
func buildFixture(t testingT, reportIDs ...string) *Document {
	t.Helper()
	doc := NewDocument()
	add := func(nodes ...Node) {
		require.NoError(t, doc.Add(nodes...))
	}

	for _, rid := range reportIDs {
		add(&Report{ID: rid, Title: "people"})

		for i, col := range fixtureColumns {
			cardID := CardID(rid, i)
			add(
				&ColumnCard{
					ID: cardID, ReportID: rid, Index: i, Name: col.name,
					NameRepr: snippet.Repr(col.name), CheckboxID: CheckboxID(cardID), Filterable: col.filterable,
				},
				&Checkbox{ID: CheckboxID(cardID), ReportID: rid, CardID: cardID},
			)
		}

		selectorID := rid + "_mode"
		add(&Selector{ID: selectorID, ReportID: rid, Options: fixtureOptions, Value: ModeTableCellValue})
		for _, barID := range []string{rid + "_powerbar", rid + "_columns_bar"} {
			add(
				&Bar{
					ID: barID, ReportID: rid, SelectorID: selectorID, Content: map[Mode]string{},
					Text: "Click a table cell", ShowsPlaceholder: true,
				},
				&CopyButton{ID: barID + "_copy", ReportID: rid, SourceID: barID},
			)
		}

		for _, tbl := range []struct {
			suffix string
			rows   []int
		}{{"_head", []int{0, 1}}, {"_tail", []int{2}}} {
			tableID := rid + tbl.suffix
			add(&Table{ID: tableID, ReportID: rid, BarID: rid + "_powerbar"})
			for _, row := range tbl.rows {
				for ci, col := range fixtureColumns {
					v := col.values[row]
					add(&TableCell{
						ID: CellID(tableID, row, ci), TableID: tableID, ReportID: rid,
						Row: row, ColumnIndex: ci, ColumnName: col.name, ColumnNameRepr: snippet.Repr(col.name),
						ValueStr: snippet.Str(v), ValueRepr: snippet.Repr(v), ValueIsNone: v == nil,
						Dialect: snippet.Polars,
					})
				}
			}
		}

		add(
			&Text{ID: rid + "_selected_columns", ReportID: rid, Role: TextSelectedColumns, Value: "[]"},
			&CopyButton{ID: rid + "_selected_columns_copy", ReportID: rid, SourceID: rid + "_selected_columns", Enabled: true},
			&FilterControl{ID: rid + "_filter", ReportID: rid, CountID: rid + "_filter_count"},
			&Text{ID: rid + "_filter_count", ReportID: rid, Role: TextColumnCount, Value: fmt.Sprint(len(fixtureColumns))},
		)

		for i, tab := range []struct {
			name    string
			warning bool
		}{{"sample", false}, {"columns", false}, {"warnings", true}} {
			panelID := rid + "_panel_" + tab.name
			add(
				&TabButton{
					ID: rid + "_tab_" + tab.name, ReportID: rid, Group: "main", PanelID: panelID, Label: tab.name,
					Warning: tab.warning, Selected: i == 0, UnseenWarning: tab.warning,
				},
				&TabPanel{ID: panelID, ReportID: rid, Group: "main", Displayed: i == 0},
			)
		}
	}
	return doc
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	doc   *Document
	eng   *Engine
	clip  *MemoryClipboard
	clock *fakeClock
	sched *QueueScheduler
}

func newFixture(t testingT, reportIDs ...string) *fixture {
	t.Helper()
	if len(reportIDs) == 0 {
		reportIDs = []string{"r"}
	}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	sched := NewQueueScheduler(clock.Now)
	clip := &MemoryClipboard{}
	filters := make(map[string]FilterSet, len(reportIDs))
	for _, rid := range reportIDs {
		filters[rid] = fixtureFilters()
	}
	doc := buildFixture(t, reportIDs...)
	eng := New(doc, Config{
		Filters:    filters,
		Clipboards: []Clipboard{clip},
		Scheduler:  sched,
		Logger:     testutil.NewTestLogger(t),
	})
	return &fixture{doc: doc, eng: eng, clip: clip, clock: clock, sched: sched}
}

func mustNode[T any](t testingT, doc *Document, id string) *T {
	t.Helper()
	n, ok := Lookup[T](doc, id)
	require.True(t, ok, "node %s", id)
	return n
}
