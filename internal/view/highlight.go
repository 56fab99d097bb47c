package view

import "github.com/leapstack-labs/datareport/internal/snippet"

// ActivateCell selects a table cell, shows its value in the table's preview bar and
// highlights the summary card of its column.
//
// The steps run in a fixed order: cell selection, then bar content and mode, then the
// card highlight.
func (e *Engine) ActivateCell(cellID string) error {
	cell, ok := Lookup[TableCell](e.doc, cellID)
	if !ok {
		return notFound("cell", cellID)
	}
	table, ok := Lookup[Table](e.doc, cell.TableID)
	if !ok {
		return notFound("table", cell.TableID)
	}

	for _, other := range Nodes(e.doc, func(c *TableCell) bool { return c.TableID == table.ID }) {
		other.Selected = false
	}
	cell.Selected = true

	if bar, ok := Lookup[Bar](e.doc, table.BarID); ok {
		bar.CellID = cell.ID
		bar.setContent(ModeTableCellValue, cell.ValueStr)
		bar.setContent(ModeTableCellRepr, cell.ValueRepr)
		bar.setContent(ModeTableCellFilter, snippet.Filter(cell.ColumnNameRepr, cell.ValueRepr, cell.ValueIsNone, cell.Dialect))
		bar.setContent(ModeTableColumnName, cell.ColumnName)
		bar.setContent(ModeTableColumnNameRepr, cell.ColumnNameRepr)
		e.SelectOneOf(bar.ID, cellModes)
		e.PropagateToSiblings(bar.SelectorID)
	} else {
		e.logger.Debug("activate cell: table has no preview bar", "table", table.ID)
	}

	e.HighlightColumn(table.ReportID, cell.ColumnIndex)
	return nil
}

// HighlightColumn marks the card of column index as the only highlighted card of its report.
// Nothing changes when the report has no such card.
func (e *Engine) HighlightColumn(reportID string, index int) {
	target := CardID(reportID, index)
	if _, ok := Lookup[ColumnCard](e.doc, target); !ok {
		e.logger.Debug("highlight: no such column card", "card", target)
		return
	}
	for _, card := range e.doc.cards(reportID) {
		on := card.ID == target
		card.Highlighted = on
		card.SelectedInTable = on
	}
}

// HighlightedColumn returns the highlighted card of a report.
func (e *Engine) HighlightedColumn(reportID string) (*ColumnCard, bool) {
	for _, card := range e.doc.cards(reportID) {
		if card.Highlighted {
			return card, true
		}
	}
	return nil, false
}
