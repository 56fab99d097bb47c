package view

import "github.com/leapstack-labs/datareport/internal/snippet"

// SetColumnChecked checks or unchecks a column checkbox and republishes the selection.
func (e *Engine) SetColumnChecked(checkboxID string, checked bool) error {
	box, ok := Lookup[Checkbox](e.doc, checkboxID)
	if !ok {
		return notFound("checkbox", checkboxID)
	}
	box.Checked = checked
	e.ColumnSelectionChanged(box.ReportID)
	return nil
}

// ColumnSelectionChanged publishes the list of checked columns of a report to its
// selection text targets and to the selected-columns slot of its bars, then switches
// those bars to the selected-columns mode.
func (e *Engine) ColumnSelectionChanged(reportID string) {
	e.publishSelection(reportID, true)
}

// SelectAllColumns checks every column of a report that the active filter does not exclude.
func (e *Engine) SelectAllColumns(reportID string) error {
	if _, ok := Lookup[Report](e.doc, reportID); !ok {
		return notFound("report", reportID)
	}
	for _, card := range e.doc.cards(reportID) {
		if card.ExcludedByFilter {
			continue
		}
		if box, ok := Lookup[Checkbox](e.doc, card.CheckboxID); ok {
			box.Checked = true
		}
	}
	e.ColumnSelectionChanged(reportID)
	return nil
}

// ClearColumns unchecks every column of a report, excluded ones included.
func (e *Engine) ClearColumns(reportID string) error {
	if _, ok := Lookup[Report](e.doc, reportID); !ok {
		return notFound("report", reportID)
	}
	for _, card := range e.doc.cards(reportID) {
		if box, ok := Lookup[Checkbox](e.doc, card.CheckboxID); ok {
			box.Checked = false
		}
	}
	e.ColumnSelectionChanged(reportID)
	return nil
}

// SelectedColumns returns the checked cards of a report in document order.
func (e *Engine) SelectedColumns(reportID string) []*ColumnCard {
	var out []*ColumnCard
	for _, card := range e.doc.cards(reportID) {
		box, ok := Lookup[Checkbox](e.doc, card.CheckboxID)
		if ok && box.Checked {
			out = append(out, card)
		}
	}
	return out
}

func (e *Engine) publishSelection(reportID string, updateBarMode bool) {
	selected := e.SelectedColumns(reportID)
	reprs := make([]string, len(selected))
	for i, card := range selected {
		reprs[i] = card.NameRepr
	}
	text := snippet.ColumnList(reprs)

	for _, t := range e.doc.texts(reportID, TextSelectedColumns) {
		t.Value = text
		e.syncCopyButtons(t.ID, text != "")
	}

	bars := e.doc.bars(reportID)
	for _, bar := range bars {
		bar.setContent(ModeSelectedColumns, text)
		if updateBarMode {
			e.SelectOneOf(bar.ID, []Mode{ModeSelectedColumns})
		}
	}
	e.refreshSelectors(bars)

	e.logger.Debug("column selection published", "report", reportID, "selected", len(selected))
}
