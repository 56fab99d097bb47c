package view

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func requireSameDocument(t require.TestingT, want, got *Document) {
	require.Equal(t, want.IDs(), got.IDs())
	for _, id := range want.IDs() {
		w, _ := want.Node(id)
		g, _ := got.Node(id)
		require.Equal(t, w, g, "node %s", id)
	}
}

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.ApplyColumnFilter("r_filter", "numeric()"))
	require.NoError(t, f.eng.SetColumnChecked(checkbox("r", 3), true))
	require.NoError(t, f.eng.ActivateCell(CellID("r_tail", 2, 0)))
	require.NoError(t, f.eng.ActivateCell(CellID("r_head", 1, 2)))
	require.NoError(t, f.eng.ChangeMode("r_mode", ModeTableCellRepr))
	require.NoError(t, f.eng.ShowTab("r_tab_warnings"))
	require.NoError(t, f.eng.ShowTab("r_tab_columns"))

	state := f.eng.Snapshot()
	assert.Equal(t, []string{CellID("r_tail", 2, 0), CellID("r_head", 1, 2)}, state.Cells)
	assert.Equal(t, []string{"r_tab_warnings"}, state.Seen)

	// The state travels through JSON in the web host.
	raw, err := json.Marshal(state)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	g := newFixture(t)
	require.NoError(t, g.eng.Restore(decoded))
	requireSameDocument(t, f.doc, g.doc)
}

func TestRestoreEmptyStateKeepsFreshDocument(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.eng.Restore(State{}))
	requireSameDocument(t, buildFixture(t, "r"), f.doc)
}

func TestRestoreRejectsUnknownNodes(t *testing.T) {
	tests := []struct {
		name  string
		state State
		err   error
	}{
		{"checkbox", State{Checked: []string{"nope"}}, ErrNodeNotFound},
		{"cell", State{Cells: []string{"nope"}}, ErrNodeNotFound},
		{"selector", State{Modes: map[string]Mode{"nope": ModeTableCellRepr}}, ErrNodeNotFound},
		{"mode", State{Modes: map[string]Mode{"r_mode": "bogus"}}, ErrUnknownMode},
		{"tab", State{Tabs: []string{"nope"}}, ErrNodeNotFound},
		{"filter", State{Filters: map[string]string{"r_filter": "bogus"}}, ErrUnknownFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			assert.ErrorIs(t, f.eng.Restore(tt.state), tt.err)
		})
	}
}

func commandGen(reportIDs []string) *rapid.Generator[Command] {
	var cells, boxes, buttons, sources []string
	for _, rid := range reportIDs {
		for i := range fixtureColumns {
			boxes = append(boxes, checkbox(rid, i))
			for row := 0; row < 2; row++ {
				cells = append(cells, CellID(rid+"_head", row, i))
			}
			cells = append(cells, CellID(rid+"_tail", 2, i))
		}
		for _, name := range []string{"sample", "columns", "warnings"} {
			buttons = append(buttons, rid+"_tab_"+name)
		}
		sources = append(sources, rid+"_powerbar", rid+"_columns_bar", rid+"_selected_columns")
	}
	modes := make([]Mode, len(fixtureOptions))
	for i, opt := range fixtureOptions {
		modes[i] = opt.Mode
	}

	return rapid.OneOf(
		rapid.Custom(func(t *rapid.T) Command {
			return ToggleColumn{CheckboxID: rapid.SampledFrom(boxes).Draw(t, "box"), Checked: rapid.Bool().Draw(t, "checked")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			return SelectAllColumns{ReportID: rapid.SampledFrom(reportIDs).Draw(t, "report")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			return ClearColumns{ReportID: rapid.SampledFrom(reportIDs).Draw(t, "report")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			return ActivateCell{CellID: rapid.SampledFrom(cells).Draw(t, "cell")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			rid := rapid.SampledFrom(reportIDs).Draw(t, "report")
			return ChangeMode{SelectorID: rid + "_mode", Mode: rapid.SampledFrom(modes).Draw(t, "mode")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			rid := rapid.SampledFrom(reportIDs).Draw(t, "report")
			return ApplyFilter{ControlID: rid + "_filter", Filter: rapid.SampledFrom(fixtureFilters().Names()).Draw(t, "filter")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			return ShowTab{ButtonID: rapid.SampledFrom(buttons).Draw(t, "button")}
		}),
		rapid.Custom(func(t *rapid.T) Command {
			return CopyToClipboard{SourceID: rapid.SampledFrom(sources).Draw(t, "source")}
		}),
	)
}

func checkInvariants(t *rapid.T, f *fixture, reportIDs []string) {
	for _, rid := range reportIDs {
		highlighted := Nodes(f.doc, func(c *ColumnCard) bool { return c.ReportID == rid && c.Highlighted })
		if len(highlighted) > 1 {
			t.Fatalf("report %s: %d highlighted cards", rid, len(highlighted))
		}
		for _, tableID := range []string{rid + "_head", rid + "_tail"} {
			selected := Nodes(f.doc, func(c *TableCell) bool { return c.TableID == tableID && c.Selected })
			if len(selected) > 1 {
				t.Fatalf("table %s: %d selected cells", tableID, len(selected))
			}
		}
		tabs := Nodes(f.doc, func(b *TabButton) bool { return b.ReportID == rid && b.Selected })
		if len(tabs) != 1 {
			t.Fatalf("report %s: %d selected tabs", rid, len(tabs))
		}
		panels := Nodes(f.doc, func(p *TabPanel) bool { return p.ReportID == rid && p.Displayed })
		if len(panels) != 1 || panels[0].ID != tabs[0].PanelID {
			t.Fatalf("report %s: displayed panels do not follow the selected tab", rid)
		}

		sel := mustNode[Selector](t, f.doc, rid+"_mode")
		for _, bar := range f.doc.bars(rid) {
			content, ok := bar.Content[sel.Value]
			if ok != !bar.ShowsPlaceholder {
				t.Fatalf("bar %s: placeholder flag out of sync with mode %s", bar.ID, sel.Value)
			}
			if ok && bar.Text != content {
				t.Fatalf("bar %s shows %q, want %q", bar.ID, bar.Text, content)
			}
			if mustNode[CopyButton](t, f.doc, bar.ID+"_copy").Enabled == bar.ShowsPlaceholder {
				t.Fatalf("bar %s: copy button enabled while showing a placeholder", bar.ID)
			}
		}

		var names []string
		for _, card := range f.eng.SelectedColumns(rid) {
			names = append(names, card.NameRepr)
		}
		if bar := mustNode[Bar](t, f.doc, rid+"_powerbar"); bar.Content[ModeSelectedColumns] != "" {
			want := "[" + strings.Join(names, ", ") + "]"
			if bar.Content[ModeSelectedColumns] != want {
				t.Fatalf("bar %s selection %q, want %q", bar.ID, bar.Content[ModeSelectedColumns], want)
			}
		}
	}
}

func TestCommandSequences(t *testing.T) {
	reportIDs := []string{"a", "b"}
	rapid.Check(t, func(t *rapid.T) {
		f := newFixture(t, reportIDs...)
		cmds := rapid.SliceOfN(commandGen(reportIDs), 0, 40).Draw(t, "commands")
		for _, cmd := range cmds {
			if err := f.eng.Dispatch(cmd); err != nil {
				t.Fatalf("%+v: %v", cmd, err)
			}
			checkInvariants(t, f, reportIDs)
		}
		f.sched.Flush()

		g := newFixture(t, reportIDs...)
		if err := g.eng.Restore(f.eng.Snapshot()); err != nil {
			t.Fatalf("restore: %v", err)
		}
		requireSameDocument(t, f.doc, g.doc)
	})
}
