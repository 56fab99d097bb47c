package view

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownMode is returned when a selector is asked for a mode it does not offer.
var ErrUnknownMode = errors.New("unknown mode")

// ChangeMode sets a selector's value, as the user does, and refreshes every bar bound to it.
func (e *Engine) ChangeMode(selectorID string, mode Mode) error {
	sel, ok := Lookup[Selector](e.doc, selectorID)
	if !ok {
		return notFound("selector", selectorID)
	}
	if !sel.Offers(mode) {
		return fmt.Errorf("selector %q: %w: %s", selectorID, ErrUnknownMode, mode)
	}
	sel.Value = mode
	e.PropagateToSiblings(selectorID)
	return nil
}

// SetMode forces mode on the bar's selector unless the current value is already mode or
// one of allowed. It is used to switch a bar to the only sensible mode after an action.
func (e *Engine) SetMode(barID string, mode Mode, allowed ...Mode) {
	e.SelectOneOf(barID, append([]Mode{mode}, allowed...))
}

// SelectOneOf clamps the bar's selector to allowed: when its value is not a member, it is
// set to the first allowed mode the selector offers. Otherwise nothing changes.
func (e *Engine) SelectOneOf(barID string, allowed []Mode) {
	bar, ok := Lookup[Bar](e.doc, barID)
	if !ok {
		e.logger.Debug("select one of: no such bar", "bar", barID)
		return
	}
	sel, ok := Lookup[Selector](e.doc, bar.SelectorID)
	if !ok {
		e.logger.Debug("select one of: bar has no selector", "bar", barID, "selector", bar.SelectorID)
		return
	}
	if slices.Contains(allowed, sel.Value) {
		return
	}
	for _, m := range allowed {
		if sel.Offers(m) {
			sel.Value = m
			return
		}
	}
	e.logger.Debug("select one of: selector offers none of the allowed modes", "selector", sel.ID, "allowed", allowed)
}

// Refresh recomputes what a bar displays from its selector's current value and updates
// the copy buttons bound to it.
func (e *Engine) Refresh(barID string) {
	bar, ok := Lookup[Bar](e.doc, barID)
	if !ok {
		return
	}
	sel, ok := Lookup[Selector](e.doc, bar.SelectorID)
	if !ok {
		return
	}
	if content, ok := bar.Content[sel.Value]; ok {
		bar.Text = content
		bar.ShowsPlaceholder = false
	} else {
		bar.Text = sel.Placeholder(sel.Value)
		bar.ShowsPlaceholder = true
	}
	e.syncCopyButtons(bar.ID, !bar.ShowsPlaceholder)
}

// PropagateToSiblings refreshes every bar bound to a selector, in document order.
func (e *Engine) PropagateToSiblings(selectorID string) {
	for _, bar := range Nodes(e.doc, func(b *Bar) bool { return b.SelectorID == selectorID }) {
		e.Refresh(bar.ID)
	}
}

// refreshSelectors propagates once per distinct selector of bars.
func (e *Engine) refreshSelectors(bars []*Bar) {
	seen := make(map[string]bool, len(bars))
	for _, bar := range bars {
		if seen[bar.SelectorID] {
			continue
		}
		seen[bar.SelectorID] = true
		e.PropagateToSiblings(bar.SelectorID)
	}
}

func (e *Engine) syncCopyButtons(sourceID string, enabled bool) {
	for _, btn := range Nodes(e.doc, func(b *CopyButton) bool { return b.SourceID == sourceID }) {
		btn.Enabled = enabled
	}
}

func (b *Bar) setContent(m Mode, content string) {
	if b.Content == nil {
		b.Content = make(map[Mode]string)
	}
	b.Content[m] = content
}
