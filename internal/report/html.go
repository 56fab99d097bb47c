package report

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/view"
)

// DefaultDatastarSrc is the datastar client loaded by interactive pages.
const DefaultDatastarSrc = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// HTMLOptions controls HTML rendering.
type HTMLOptions struct {
	// ActionPath is the URL prefix commands are posted to, for example
	// "/reports/42/actions". The HTML is static when it is empty.
	ActionPath string
	// State is published as the "view" signal of interactive pages.
	State       view.State
	DatastarSrc string
}

func (o HTMLOptions) interactive() bool { return o.ActionPath != "" }

func (o HTMLOptions) datastarSrc() string {
	if o.DatastarSrc == "" {
		return DefaultDatastarSrc
	}
	return o.DatastarSrc
}

// signals encodes the initial datastar signals of an interactive page.
func (o HTMLOptions) signals() (string, error) {
	raw, err := json.Marshal(map[string]view.State{"view": o.State})
	if err != nil {
		return "", fmt.Errorf("failed to encode view state: %w", err)
	}
	return string(raw), nil
}

// on returns the datastar attribute posting action for id, or nothing for static pages.
// extra is appended to the query string inside the JS string literal.
func (o HTMLOptions) on(event, action, id, extra string) templ.Attributes {
	if !o.interactive() {
		return nil
	}
	expr := fmt.Sprintf("@post('%s/%s?id=%s%s')", o.ActionPath, action, url.QueryEscape(id), extra)
	expr = strings.ReplaceAll(expr, " + '')", ")")
	return templ.Attributes{"data-on:" + event: expr}
}

func tabButtons(doc *view.Document, rid string) []*view.TabButton {
	return view.Nodes(doc, func(b *view.TabButton) bool { return b.ReportID == rid })
}

// barContent lists the per-mode contents of a bar as data attributes, in selector order.
func barContent(b *view.Bar) templ.OrderedAttributes {
	var attrs templ.OrderedAttributes
	for _, m := range sortedModes(b.Content) {
		attrs = append(attrs, templ.KV[string, any]("data-content-"+string(m), b.Content[m]))
	}
	return attrs
}

func sortedModes(content map[view.Mode]string) []view.Mode {
	var modes []view.Mode
	for _, opt := range modeOptions {
		if _, ok := content[opt.Mode]; ok {
			modes = append(modes, opt.Mode)
		}
	}
	return modes
}

func overview(s *summary.Summary) string {
	text := fmt.Sprintf("Dataframe with %s rows and %s columns.", FormatCount(s.NRows), FormatCount(s.NColumns))
	if s.NConstantColumns > 0 {
		text += fmt.Sprintf(" %d constant.", s.NConstantColumns)
	}
	return text
}

func nullsText(col *summary.ColumnSummary) string {
	return fmt.Sprintf("%s (%s)", FormatCount(col.NullCount), FormatPercent(col.NullProportion))
}

func sampleText(col *summary.ColumnSummary) string {
	strs := make([]string, len(col.SampleValues))
	for i, v := range col.SampleValues {
		strs[i] = v.Str
	}
	return strings.Join(strs, ", ")
}
