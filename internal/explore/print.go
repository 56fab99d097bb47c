package explore

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/view"
)

type styles struct {
	label       lipgloss.Style
	placeholder lipgloss.Style
	copied      lipgloss.Style
	warning     lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		label:       r.NewStyle().Bold(true),
		placeholder: r.NewStyle().Faint(true).Italic(true),
		copied:      r.NewStyle().Foreground(lipgloss.Color("2")),
		warning:     r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (s *Session) printHelp() {
	s.printf("Commands:\n")
	for _, c := range commandHelp {
		s.printf("  %-8s %s\n", c.name, c.usage)
	}
}

func (s *Session) printColumns() {
	doc := s.eng.Document()
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Column", "Type", "Selected", "Flags"})
	for i, c := range s.in.Summary.Columns {
		card, ok := view.Lookup[view.ColumnCard](doc, view.CardID(s.in.ID, i))
		if !ok {
			continue
		}
		box, _ := view.Lookup[view.Checkbox](doc, card.CheckboxID)
		selected := ""
		if box != nil && box.Checked {
			selected = "x"
		}
		var flags []string
		if card.Highlighted {
			flags = append(flags, "highlighted")
		}
		if card.ExcludedByFilter {
			flags = append(flags, "hidden")
		}
		t.AppendRow(table.Row{i, c.Name, c.DType, selected, strings.Join(flags, ",")})
	}
	t.Render()
	if count, ok := view.Lookup[view.Text](doc, report.FilterCountID(s.in.ID)); ok {
		s.printf("%s columns shown\n", count.Value)
	}
}

func (s *Session) printSelection() {
	if text, ok := view.Lookup[view.Text](s.eng.Document(), report.SelectionTextID(s.in.ID)); ok {
		s.printf("%s %s\n", s.styles.label.Render("Selected:"), text.Value)
	}
	s.printBars()
}

func (s *Session) printBars() {
	doc := s.eng.Document()
	for _, id := range []string{report.PowerbarID(s.in.ID), report.ColumnsBarID(s.in.ID)} {
		bar, ok := view.Lookup[view.Bar](doc, id)
		if !ok {
			continue
		}
		mode := ""
		if sel, ok := view.Lookup[view.Selector](doc, bar.SelectorID); ok {
			mode = string(sel.Value)
		}
		text := bar.Text
		if bar.ShowsPlaceholder {
			text = s.styles.placeholder.Render(text)
		}
		s.printf("%s %s\n", s.styles.label.Render(fmt.Sprintf("[%s %s]", strings.TrimPrefix(id, s.in.ID+"_"), mode)), text)
	}
}

func (s *Session) printModes() {
	sel, ok := view.Lookup[view.Selector](s.eng.Document(), report.SelectorID(s.in.ID))
	if !ok {
		return
	}
	for _, opt := range sel.Options {
		marker := " "
		if opt.Mode == sel.Value {
			marker = "*"
		}
		s.printf("%s %-24s %s\n", marker, opt.Mode, opt.Label)
	}
}

func (s *Session) printFilters() {
	current := ""
	if ctl, ok := view.Lookup[view.FilterControl](s.eng.Document(), report.FilterControlID(s.in.ID)); ok {
		current = ctl.Value
	}
	for _, f := range s.eng.Filters(s.in.ID) {
		marker := " "
		if f.Name == current {
			marker = "*"
		}
		s.printf("%s %-20s %d columns\n", marker, f.Name, len(f.Columns))
	}
}

func (s *Session) printTab(tab string) {
	switch tab {
	case report.TabSample:
		for _, tbl := range []struct {
			name string
			rows int
		}{{"head", len(s.in.Summary.Head.Rows)}, {"tail", len(s.in.Summary.Tail.Rows)}} {
			s.printf("%s: %d rows\n", tbl.name, tbl.rows)
		}
	case report.TabColumns:
		s.printColumns()
	case report.TabWarnings:
		warnings := report.Warnings(s.in.Summary)
		if len(warnings) == 0 {
			s.printf("No warnings\n")
		}
		for _, w := range warnings {
			s.printf("%s %s\n", s.styles.warning.Render(w.Column+":"), w.Message)
		}
	}
}

func (s *Session) printCopy(sourceID string) {
	doc := s.eng.Document()
	n, _ := doc.Node(sourceID)
	switch src := n.(type) {
	case *view.Bar:
		if src.BeingCopied {
			s.printf("%s %s\n", s.styles.copied.Render("Copied:"), src.Text)
			return
		}
	case *view.Text:
		if src.BeingCopied {
			s.printf("%s %s\n", s.styles.copied.Render("Copied:"), src.Value)
			return
		}
	}
	s.printf("Nothing copied\n")
}

func (s *Session) printStatus() {
	doc := s.eng.Document()
	rid := s.in.ID
	s.printf("%s %s\n", s.styles.label.Render("Report:"), s.in.Summary.DisplayTitle())
	for _, btn := range view.Nodes(doc, func(b *view.TabButton) bool { return b.ReportID == rid && b.Selected }) {
		s.printf("%s %s\n", s.styles.label.Render("Tab:"), btn.Label)
	}
	if ctl, ok := view.Lookup[view.FilterControl](doc, report.FilterControlID(rid)); ok && ctl.Value != "" {
		s.printf("%s %s\n", s.styles.label.Render("Filter:"), ctl.Value)
	}
	if card, ok := s.eng.HighlightedColumn(rid); ok {
		s.printf("%s %s\n", s.styles.label.Render("Highlighted:"), card.Name)
	}
	s.printSelection()
	if btn, ok := view.Lookup[view.TabButton](doc, report.TabButtonID(rid, report.TabWarnings)); ok && btn.UnseenWarning {
		s.printf("%s\n", s.styles.warning.Render(fmt.Sprintf("Unseen warnings: %d (type: tab %s)", len(report.Warnings(s.in.Summary)), report.TabWarnings)))
	}
}

// Completer completes command names and their arguments.
func (s *Session) Completer() *readline.PrefixCompleter {
	items := func(names []string) []readline.PrefixCompleterInterface {
		out := make([]readline.PrefixCompleterInterface, len(names))
		for i, n := range names {
			out[i] = readline.PcItem(n)
		}
		return out
	}
	var modes []string
	if sel, ok := view.Lookup[view.Selector](s.eng.Document(), report.SelectorID(s.in.ID)); ok {
		for _, opt := range sel.Options {
			modes = append(modes, string(opt.Mode))
		}
	}

	var top []readline.PrefixCompleterInterface
	for _, name := range s.Commands() {
		switch name {
		case "check", "uncheck":
			top = append(top, readline.PcItem(name, items(s.ColumnNames())...))
		case "cell":
			top = append(top, readline.PcItem(name, items([]string{"head", "tail"})...))
		case "mode":
			top = append(top, readline.PcItem(name, items(modes)...))
		case "filter":
			top = append(top, readline.PcItem(name, items(s.FilterNames())...))
		case "tab":
			top = append(top, readline.PcItem(name, items([]string{report.TabSample, report.TabColumns, report.TabWarnings})...))
		case "copy":
			top = append(top, readline.PcItem(name, items([]string{"bar", "columns", "selection"})...))
		default:
			top = append(top, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(top...)
}
