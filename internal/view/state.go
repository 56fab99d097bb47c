package view

import (
	"fmt"
	"slices"
	"sort"
)

// State is the user-visible interaction state of a document. It is what a host keeps
// between two commands when the document itself is rebuilt for every request.
// Empty fields encode as null so that a JSON merge patch clears them.
type State struct {
	Checked     []string          `json:"checked"`
	Cells       []string          `json:"cells"`
	Highlighted []string          `json:"highlighted"`
	Selection   []string          `json:"selection"`
	Modes       map[string]Mode   `json:"modes"`
	Tabs        []string          `json:"tabs"`
	Seen        []string          `json:"seen"`
	Filters     map[string]string `json:"filters"`
}

// Snapshot captures the interaction state of the document.
//
// Cells are listed so that the cell each bar currently shows comes last.
func (e *Engine) Snapshot() State {
	var s State

	for _, box := range Nodes(e.doc, func(b *Checkbox) bool { return b.Checked }) {
		s.Checked = append(s.Checked, box.ID)
		if !slices.Contains(s.Selection, box.ReportID) {
			s.Selection = append(s.Selection, box.ReportID)
		}
	}

	var shown []string
	for _, bar := range Nodes(e.doc, func(b *Bar) bool { return b.CellID != "" }) {
		if !slices.Contains(shown, bar.CellID) {
			shown = append(shown, bar.CellID)
		}
	}
	for _, cell := range Nodes(e.doc, func(c *TableCell) bool { return c.Selected }) {
		if !slices.Contains(shown, cell.ID) {
			s.Cells = append(s.Cells, cell.ID)
		}
	}
	s.Cells = append(s.Cells, shown...)

	for _, card := range Nodes(e.doc, func(c *ColumnCard) bool { return c.Highlighted }) {
		s.Highlighted = append(s.Highlighted, card.ID)
	}
	for _, bar := range Nodes(e.doc, func(b *Bar) bool { _, ok := b.Content[ModeSelectedColumns]; return ok }) {
		if !slices.Contains(s.Selection, bar.ReportID) {
			s.Selection = append(s.Selection, bar.ReportID)
		}
	}
	for _, sel := range Nodes[Selector](e.doc, nil) {
		if s.Modes == nil {
			s.Modes = make(map[string]Mode)
		}
		s.Modes[sel.ID] = sel.Value
	}
	for _, btn := range Nodes[TabButton](e.doc, nil) {
		if btn.Selected {
			s.Tabs = append(s.Tabs, btn.ID)
		}
		if btn.Warning && !btn.UnseenWarning {
			s.Seen = append(s.Seen, btn.ID)
		}
	}
	for _, ctl := range Nodes(e.doc, func(c *FilterControl) bool { return c.Value != "" }) {
		if s.Filters == nil {
			s.Filters = make(map[string]string)
		}
		s.Filters[ctl.ID] = ctl.Value
	}
	return s
}

// Restore replays s onto a freshly built document. Restoring the snapshot of a
// document onto a new copy of it yields the same node state.
func (e *Engine) Restore(s State) error {
	for _, id := range sortedKeys(s.Filters) {
		if err := e.ApplyColumnFilter(id, s.Filters[id]); err != nil {
			return fmt.Errorf("restore filter: %w", err)
		}
	}

	for _, id := range s.Checked {
		box, ok := Lookup[Checkbox](e.doc, id)
		if !ok {
			return fmt.Errorf("restore selection: %w", notFound("checkbox", id))
		}
		box.Checked = true
	}

	for _, id := range s.Cells {
		if err := e.ActivateCell(id); err != nil {
			return fmt.Errorf("restore cell: %w", err)
		}
	}

	for _, card := range Nodes[ColumnCard](e.doc, nil) {
		on := slices.Contains(s.Highlighted, card.ID)
		card.Highlighted = on
		card.SelectedInTable = on
	}

	for _, reportID := range s.Selection {
		e.publishSelection(reportID, false)
	}

	for _, id := range sortedKeys(s.Modes) {
		sel, ok := Lookup[Selector](e.doc, id)
		if !ok {
			return fmt.Errorf("restore mode: %w", notFound("selector", id))
		}
		if !sel.Offers(s.Modes[id]) {
			return fmt.Errorf("restore mode: selector %q: %w: %s", id, ErrUnknownMode, s.Modes[id])
		}
		sel.Value = s.Modes[id]
	}
	for _, bar := range Nodes[Bar](e.doc, nil) {
		e.Refresh(bar.ID)
	}

	for _, id := range s.Tabs {
		btn, ok := Lookup[TabButton](e.doc, id)
		if !ok {
			return fmt.Errorf("restore tab: %w", notFound("tab button", id))
		}
		e.selectTab(btn)
	}
	for _, id := range s.Seen {
		btn, ok := Lookup[TabButton](e.doc, id)
		if !ok {
			return fmt.Errorf("restore tab: %w", notFound("tab button", id))
		}
		btn.UnseenWarning = false
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
