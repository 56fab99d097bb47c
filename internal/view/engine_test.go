package view

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkbox(rid string, col int) string { return CheckboxID(CardID(rid, col)) }

func TestColumnSelection(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 2), true))
	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 0), true))

	text := mustNode[Text](t, f.doc, "r_selected_columns")
	assert.Equal(t, "['name', 'city']", text.Value, "selection follows document order")

	assert.Equal(t, ModeSelectedColumns, mustNode[Selector](t, f.doc, "r_mode").Value)
	for _, id := range []string{"r_powerbar", "r_columns_bar"} {
		bar := mustNode[Bar](t, f.doc, id)
		assert.Equal(t, "['name', 'city']", bar.Text, id)
		assert.False(t, bar.ShowsPlaceholder, id)
		assert.True(t, mustNode[CopyButton](t, f.doc, id+"_copy").Enabled, id)
	}

	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 0), false))
	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 2), false))
	assert.Equal(t, "[]", text.Value)
	assert.Equal(t, "[]", mustNode[Bar](t, f.doc, "r_powerbar").Text)
	assert.Empty(t, f.eng.SelectedColumns("r"))
}

func TestColumnSelectionIsScopedToReport(t *testing.T) {
	f := newFixture(t, "a", "b")

	require.NoError(t, f.eng.SetColumnChecked(checkbox("a", 1), true))

	assert.Equal(t, "['age']", mustNode[Text](t, f.doc, "a_selected_columns").Value)
	assert.Equal(t, "[]", mustNode[Text](t, f.doc, "b_selected_columns").Value)
	assert.Equal(t, ModeTableCellValue, mustNode[Selector](t, f.doc, "b_mode").Value)
	assert.True(t, mustNode[Bar](t, f.doc, "b_powerbar").ShowsPlaceholder)
}

func TestSelectAllAndClearColumns(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "string()"))
	require.NoError(t, f.eng.SelectAllColumns("r"))

	// score is not filterable, so the string filter never excludes it.
	assert.Equal(t, "['name', 'city', 'score']", mustNode[Text](t, f.doc, "r_selected_columns").Value)
	assert.False(t, mustNode[Checkbox](t, f.doc, checkbox("r", 1)).Checked)

	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 1), true))
	require.NoError(t, f.eng.ClearColumns("r"))
	for i := range fixtureColumns {
		assert.False(t, mustNode[Checkbox](t, f.doc, checkbox("r", i)).Checked, "column %d", i)
	}
	assert.Equal(t, "[]", mustNode[Text](t, f.doc, "r_selected_columns").Value)

	assert.ErrorIs(t, f.eng.SelectAllColumns("missing"), ErrNodeNotFound)
	assert.ErrorIs(t, f.eng.ClearColumns("missing"), ErrNodeNotFound)
	assert.ErrorIs(t, f.eng.SetColumnChecked("missing", true), ErrNodeNotFound)
}

func TestActivateCell(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 1, 1)))

	bar := mustNode[Bar](t, f.doc, "r_powerbar")
	assert.Equal(t, "None", bar.Text)
	assert.False(t, bar.ShowsPlaceholder)
	assert.Equal(t, "df.filter(pl.col('age').is_null())", bar.Content[ModeTableCellFilter])
	assert.Equal(t, "age", bar.Content[ModeTableColumnName])
	assert.Equal(t, "'age'", bar.Content[ModeTableColumnNameRepr])
	assert.True(t, mustNode[CopyButton](t, f.doc, "r_powerbar_copy").Enabled)

	// The sibling bar shares the selector but has no cell content.
	sibling := mustNode[Bar](t, f.doc, "r_columns_bar")
	assert.True(t, sibling.ShowsPlaceholder)
	assert.Equal(t, "Click a table cell", sibling.Text)
	assert.False(t, mustNode[CopyButton](t, f.doc, "r_columns_bar_copy").Enabled)

	selected := Nodes(f.doc, func(c *TableCell) bool { return c.Selected })
	require.Len(t, selected, 1)
	assert.Equal(t, CellID("r_head", 1, 1), selected[0].ID)

	card, ok := f.eng.HighlightedColumn("r")
	require.True(t, ok)
	assert.Equal(t, CardID("r", 1), card.ID)
	assert.True(t, card.SelectedInTable)

	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 0, 2)))
	assert.Equal(t, "Paris", bar.Text)
	assert.False(t, mustNode[TableCell](t, f.doc, CellID("r_head", 1, 1)).Selected)
	assert.False(t, mustNode[ColumnCard](t, f.doc, CardID("r", 1)).Highlighted)
	assert.True(t, mustNode[ColumnCard](t, f.doc, CardID("r", 2)).Highlighted)
}

func TestActivateCellKeepsCellMode(t *testing.T) {
	f := newFixture(t)
	bar := mustNode[Bar](t, f.doc, "r_powerbar")
	sel := mustNode[Selector](t, f.doc, "r_mode")

	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 0), true))
	require.Equal(t, ModeSelectedColumns, sel.Value)

	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 0, 0)))
	assert.Equal(t, ModeTableCellValue, sel.Value, "selected-columns is not a cell mode")
	assert.Equal(t, "Alice", bar.Text)

	require.NoError(t, f.eng.ChangeMode("r_mode", ModeTableCellFilter))
	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 1, 2)))
	assert.Equal(t, ModeTableCellFilter, sel.Value)
	assert.Equal(t, `df.filter(pl.col('city') == "it's")`, bar.Text)
}

func TestActivateCellPerTable(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 0, 0)))
	require.NoError(t, f.eng.ActivateCell(CellID("r_tail", 2, 3)))

	assert.True(t, mustNode[TableCell](t, f.doc, CellID("r_head", 0, 0)).Selected)
	assert.True(t, mustNode[TableCell](t, f.doc, CellID("r_tail", 2, 3)).Selected)
	assert.Equal(t, "None", mustNode[Bar](t, f.doc, "r_powerbar").Text)
	assert.Equal(t, CellID("r_tail", 2, 3), mustNode[Bar](t, f.doc, "r_powerbar").CellID)
}

func TestActivateCellErrors(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.eng.ActivateCell("r_head_r9_c9"), ErrNodeNotFound)

	require.NoError(t, f.doc.Add(&TableCell{ID: "orphan", TableID: "nowhere", ReportID: "r"}))
	assert.ErrorIs(t, f.eng.ActivateCell("orphan"), ErrNodeNotFound)
	assert.False(t, mustNode[TableCell](t, f.doc, "orphan").Selected)
}

func TestChangeMode(t *testing.T) {
	f := newFixture(t)
	sel := mustNode[Selector](t, f.doc, "r_mode")

	err := f.eng.ChangeMode("r_mode", Mode("bogus"))
	require.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, ModeTableCellValue, sel.Value)

	require.NoError(t, f.eng.ChangeMode("r_mode", ModeSelectedColumns))
	bar := mustNode[Bar](t, f.doc, "r_powerbar")
	assert.True(t, bar.ShowsPlaceholder)
	assert.Equal(t, "Select columns", bar.Text)

	assert.ErrorIs(t, f.eng.ChangeMode("missing", ModeSelectedColumns), ErrNodeNotFound)
}

func TestSelectOneOf(t *testing.T) {
	tests := []struct {
		name    string
		current Mode
		allowed []Mode
		want    Mode
	}{
		{"already allowed", ModeTableCellRepr, cellModes, ModeTableCellRepr},
		{"forced to first", ModeSelectedColumns, cellModes, ModeTableCellValue},
		{"skips modes not offered", ModeSelectedColumns, []Mode{"bogus", ModeTableColumnName}, ModeTableColumnName},
		{"nothing offered", ModeTableCellRepr, []Mode{"bogus"}, ModeTableCellRepr},
		{"empty allowed", ModeTableCellRepr, nil, ModeTableCellRepr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			sel := mustNode[Selector](t, f.doc, "r_mode")
			sel.Value = tt.current

			f.eng.SelectOneOf("r_powerbar", tt.allowed)
			assert.Equal(t, tt.want, sel.Value)
		})
	}

	t.Run("set mode", func(t *testing.T) {
		f := newFixture(t)
		f.eng.SetMode("r_powerbar", ModeSelectedColumns)
		assert.Equal(t, ModeSelectedColumns, mustNode[Selector](t, f.doc, "r_mode").Value)
		f.eng.SetMode("r_powerbar", ModeTableCellRepr, ModeSelectedColumns)
		assert.Equal(t, ModeSelectedColumns, mustNode[Selector](t, f.doc, "r_mode").Value)
	})

	t.Run("missing bar", func(t *testing.T) {
		f := newFixture(t)
		f.eng.SelectOneOf("missing", cellModes)
		assert.Equal(t, ModeTableCellValue, mustNode[Selector](t, f.doc, "r_mode").Value)
	})
}

func TestApplyColumnFilter(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 1), true))

	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "string()"))

	assert.Equal(t, "string()", mustNode[FilterControl](t, f.doc, "r_filter").Value)
	assert.Equal(t, "2", mustNode[Text](t, f.doc, "r_filter_count").Value, "duplicates count once")
	excluded := map[int]bool{0: false, 1: true, 2: false, 3: false}
	for i, want := range excluded {
		assert.Equal(t, want, mustNode[ColumnCard](t, f.doc, CardID("r", i)).ExcludedByFilter, "column %d", i)
	}
	assert.True(t, mustNode[Checkbox](t, f.doc, checkbox("r", 1)).Checked, "filters never touch the selection")

	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "none"))
	assert.Equal(t, "0", mustNode[Text](t, f.doc, "r_filter_count").Value)
	assert.True(t, mustNode[ColumnCard](t, f.doc, CardID("r", 0)).ExcludedByFilter)
	assert.False(t, mustNode[ColumnCard](t, f.doc, CardID("r", 3)).ExcludedByFilter)

	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "all()"))
	assert.Equal(t, "4", mustNode[Text](t, f.doc, "r_filter_count").Value)
	for i := range fixtureColumns {
		assert.False(t, mustNode[ColumnCard](t, f.doc, CardID("r", i)).ExcludedByFilter, "column %d", i)
	}
}

func TestApplyColumnFilterUnknown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "numeric()"))

	err := f.eng.ApplyColumnFilter("r_filter", "datetime()")
	require.ErrorIs(t, err, ErrUnknownFilter)
	assert.Contains(t, err.Error(), "datetime()")

	assert.Equal(t, "numeric()", mustNode[FilterControl](t, f.doc, "r_filter").Value)
	assert.Equal(t, "2", mustNode[Text](t, f.doc, "r_filter_count").Value)
	assert.True(t, mustNode[ColumnCard](t, f.doc, CardID("r", 0)).ExcludedByFilter)

	assert.ErrorIs(t, f.eng.ApplyColumnFilter("missing", "all()"), ErrNodeNotFound)
	assert.Equal(t, []string{"all()", "numeric()", "string()", "none"}, f.eng.Filters("r").Names())
}

func TestShowTab(t *testing.T) {
	f := newFixture(t, "a", "b")

	require.NoError(t, f.eng.ShowTab("a_tab_warnings"))

	for _, name := range []string{"sample", "columns", "warnings"} {
		want := name == "warnings"
		assert.Equal(t, want, mustNode[TabButton](t, f.doc, "a_tab_"+name).Selected, name)
		assert.Equal(t, want, mustNode[TabPanel](t, f.doc, "a_panel_"+name).Displayed, name)
	}
	assert.False(t, mustNode[TabButton](t, f.doc, "a_tab_warnings").UnseenWarning)

	assert.True(t, mustNode[TabButton](t, f.doc, "b_tab_sample").Selected)
	assert.True(t, mustNode[TabButton](t, f.doc, "b_tab_warnings").UnseenWarning)

	require.NoError(t, f.eng.ShowTab("a_tab_sample"))
	assert.True(t, mustNode[TabPanel](t, f.doc, "a_panel_sample").Displayed)
	assert.False(t, mustNode[TabPanel](t, f.doc, "a_panel_warnings").Displayed)

	assert.ErrorIs(t, f.eng.ShowTab("missing"), ErrNodeNotFound)
}

func TestCopyToClipboard(t *testing.T) {
	f := newFixture(t)
	bar := mustNode[Bar](t, f.doc, "r_powerbar")

	require.NoError(t, f.eng.CopyToClipboard("r_powerbar"))
	assert.Zero(t, f.clip.Writes, "placeholder is never copied")
	assert.False(t, bar.BeingCopied)

	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 0, 0)))
	require.NoError(t, f.eng.CopyToClipboard("r_powerbar"))
	assert.Equal(t, "Alice", f.clip.Text)
	assert.True(t, bar.BeingCopied)
	assert.Equal(t, 1, f.sched.Pending())

	f.clock.Advance(150 * time.Millisecond)
	assert.Zero(t, f.sched.RunDue())
	assert.True(t, bar.BeingCopied)

	f.clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, f.sched.RunDue())
	assert.False(t, bar.BeingCopied)

	require.NoError(t, f.eng.CopyToClipboard("r_selected_columns"))
	assert.Equal(t, "[]", f.clip.Text)
	assert.True(t, mustNode[Text](t, f.doc, "r_selected_columns").BeingCopied)
	f.sched.Flush()
	assert.False(t, mustNode[Text](t, f.doc, "r_selected_columns").BeingCopied)

	assert.ErrorIs(t, f.eng.CopyToClipboard("missing"), ErrNodeNotFound)
	assert.Error(t, f.eng.CopyToClipboard(CardID("r", 0)))
}

type stubClipboard struct {
	available bool
	err       error
	written   []string
}

func (c *stubClipboard) Available() bool { return c.available }

func (c *stubClipboard) WriteText(text string) error {
	c.written = append(c.written, text)
	return c.err
}

func TestCopyToClipboardFallback(t *testing.T) {
	doc := buildFixture(t, "r")
	primary := &stubClipboard{available: false}
	fallback := &stubClipboard{available: true, err: errors.New("xclip: exit status 1")}
	sched := NewQueueScheduler(nil)
	eng := New(doc, Config{Clipboards: []Clipboard{primary, fallback}, Scheduler: sched})

	require.NoError(t, eng.ActivateCell(CellID("r_head", 0, 1)))
	require.NoError(t, eng.CopyToClipboard("r_powerbar"))

	assert.Empty(t, primary.written)
	assert.Equal(t, []string{"31"}, fallback.written)
	assert.Equal(t, 1, sched.Flush(), "a failed write still clears the flag")
	assert.False(t, mustNode[Bar](t, doc, "r_powerbar").BeingCopied)
}

func TestCopyToClipboardUnavailable(t *testing.T) {
	doc := buildFixture(t, "r")
	sched := NewQueueScheduler(nil)
	eng := New(doc, Config{Clipboards: []Clipboard{&stubClipboard{}}, Scheduler: sched})

	require.NoError(t, eng.ActivateCell(CellID("r_head", 0, 1)))
	require.NoError(t, eng.CopyToClipboard("r_powerbar"))

	assert.False(t, mustNode[Bar](t, doc, "r_powerbar").BeingCopied)
	assert.Zero(t, sched.Pending())
}

func TestDocumentAdd(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Add(&Report{ID: "r"}, &Text{ID: "t", ReportID: "r"}))

	assert.ErrorIs(t, doc.Add(&Text{ID: "t"}), ErrDuplicateNode)
	assert.Error(t, doc.Add(&Text{}))
	assert.Equal(t, []string{"r", "t"}, doc.IDs())
	assert.Equal(t, 2, doc.Len())

	_, ok := Lookup[Bar](doc, "t")
	assert.False(t, ok, "wrong type")
	n, ok := doc.Node("t")
	require.True(t, ok)
	assert.Equal(t, "t", n.NodeID())
}

func TestDocumentTypedLookup(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Add(
		&Report{ID: "r"},
		&Text{ID: "a", ReportID: "r"},
		&Bar{ID: "b", ReportID: "r"},
		&Text{ID: "c", ReportID: "r"},
	))

	txt, ok := Lookup[Text](doc, "c")
	require.True(t, ok)
	assert.Equal(t, "c", txt.ID)

	_, ok = Lookup[Text](doc, "missing")
	assert.False(t, ok)

	texts := Nodes[Text](doc, nil)
	require.Len(t, texts, 2)
	assert.Equal(t, "a", texts[0].ID)
	assert.Equal(t, "c", texts[1].ID)

	bars := Nodes(doc, func(b *Bar) bool { return b.ReportID == "other" })
	assert.Empty(t, bars)
}
