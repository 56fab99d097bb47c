package view

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownFilter is returned when a report has no column filter with the requested name.
var ErrUnknownFilter = errors.New("unknown column filter")

// ShowTab selects a tab button, displays its panel and marks its warning as seen.
func (e *Engine) ShowTab(buttonID string) error {
	btn, ok := Lookup[TabButton](e.doc, buttonID)
	if !ok {
		return notFound("tab button", buttonID)
	}
	e.selectTab(btn)
	btn.UnseenWarning = false
	return nil
}

func (e *Engine) selectTab(btn *TabButton) {
	sameGroup := func(reportID, group string) bool {
		return reportID == btn.ReportID && group == btn.Group
	}
	for _, b := range Nodes(e.doc, func(b *TabButton) bool { return sameGroup(b.ReportID, b.Group) }) {
		b.Selected = b.ID == btn.ID
	}
	for _, p := range Nodes(e.doc, func(p *TabPanel) bool { return sameGroup(p.ReportID, p.Group) }) {
		p.Displayed = p.ID == btn.PanelID
	}
}

// ApplyColumnFilter marks the filterable cards of the control's report that the named
// filter rejects as excluded, and shows the number of accepted columns.
// Checkbox state is left untouched.
func (e *Engine) ApplyColumnFilter(controlID, filterName string) error {
	ctl, ok := Lookup[FilterControl](e.doc, controlID)
	if !ok {
		return notFound("filter control", controlID)
	}
	filter, ok := e.filters[ctl.ReportID].Lookup(filterName)
	if !ok {
		return fmt.Errorf("report %q: %w: %q", ctl.ReportID, ErrUnknownFilter, filterName)
	}
	ctl.Value = filterName

	accepted := make(map[string]bool, len(filter.Columns))
	for _, name := range filter.Columns {
		accepted[name] = true
	}
	for _, card := range e.doc.cards(ctl.ReportID) {
		if card.Filterable {
			card.ExcludedByFilter = !accepted[card.Name]
		}
	}
	if count, ok := Lookup[Text](e.doc, ctl.CountID); ok {
		count.Value = strconv.Itoa(len(accepted))
	}

	e.logger.Debug("column filter applied", "report", ctl.ReportID, "filter", filterName, "accepted", len(accepted))
	return nil
}
