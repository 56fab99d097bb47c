package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/datareport/internal/summary"
)

// TextOptions controls text rendering.
type TextOptions struct {
	// Color enables ANSI colors. The profile is detected from the writer when set.
	Color bool
	// Width is the panel width; 0 means 80.
	Width int
}

type textStyles struct {
	title   lipgloss.Style
	bold    lipgloss.Style
	accent  lipgloss.Style
	panel   lipgloss.Style
	nulls   map[summary.NullsLevel]lipgloss.Style
	rule    lipgloss.Style
	muted   lipgloss.Style
	width   int
	colored bool
}

func newTextStyles(w io.Writer, opts TextOptions) textStyles {
	r := lipgloss.NewRenderer(w)
	if opts.Color {
		r.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}
	return textStyles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		bold:   r.NewStyle().Bold(true),
		accent: r.NewStyle().Foreground(lipgloss.Color("4")),
		panel:  r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(width - 2),
		nulls: map[summary.NullsLevel]lipgloss.Style{
			summary.NullsOK:       r.NewStyle().Foreground(lipgloss.Color("2")),
			summary.NullsWarning:  r.NewStyle().Foreground(lipgloss.Color("3")),
			summary.NullsCritical: r.NewStyle().Foreground(lipgloss.Color("1")),
		},
		rule:    r.NewStyle().Foreground(lipgloss.Color("4")),
		muted:   r.NewStyle().Faint(true),
		width:   width,
		colored: opts.Color,
	}
}

// WriteText prints a terminal summary of s: an overview, the first row, constant
// columns and one panel per remaining column.
func WriteText(w io.Writer, s *summary.Summary, opts TextOptions) error {
	st := newTextStyles(w, opts)
	var b strings.Builder

	if s.Title != "" {
		b.WriteString(st.titleRule(s.Title) + "\n")
	}
	ov := fmt.Sprintf("Dataframe with %s and %s.",
		st.accent.Render(FormatCount(s.NRows)+" rows"), st.accent.Render(FormatCount(s.NColumns)+" columns"))
	if s.FilePath != "" {
		ov += "\nFile: " + s.FilePath
	} else if s.Source != "" {
		ov += "\nSource: " + s.Source
	}
	b.WriteString(ov + "\n")

	if len(s.FirstRow) > 0 {
		b.WriteString("First row:\n")
		for _, nv := range s.FirstRow {
			fmt.Fprintf(&b, "  %s: %s\n", st.bold.Render(nv.Name), nv.Value.Repr)
		}
	}

	var constant []string
	for _, c := range s.Columns {
		if c.IsConstant && c.ConstantValue != nil {
			constant = append(constant, fmt.Sprintf("%s %s", st.bold.Render(c.Name+":"), c.ConstantValue.Repr))
		}
	}
	if len(constant) > 0 {
		b.WriteString(st.titledPanel("Constant columns", strings.Join(constant, "\n")) + "\n")
	}

	for i := range s.Columns {
		c := &s.Columns[i]
		if c.IsConstant {
			continue
		}
		b.WriteString(st.titledPanel(c.Name, columnText(st, c)) + "\n")
	}
	b.WriteString(ov + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func columnText(st textStyles, c *summary.ColumnSummary) string {
	var lines []string
	lines = append(lines, st.bold.Render(c.DType))
	lines = append(lines, "Null values: "+st.nulls[c.NullsLevel].Render(
		fmt.Sprintf("%s (%s)", FormatCount(c.NullCount), FormatPercent(c.NullProportion))))
	if c.NUnique != nil {
		lines = append(lines, "Unique values: "+FormatCount(*c.NUnique))
	}
	if len(c.ValueCounts) > 0 {
		counts := make([]string, len(c.ValueCounts))
		for i, vc := range c.ValueCounts {
			counts[i] = fmt.Sprintf("%s: %d", vc.Value.Repr, vc.Count)
		}
		lines = append(lines, "Most frequent value counts: {"+strings.Join(counts, ", ")+"}")
	}
	if c.Mean != nil {
		line := "Mean: " + FormatNumber(*c.Mean)
		if c.StandardDeviation != nil {
			line += " Standard deviation: " + FormatNumber(*c.StandardDeviation)
		}
		lines = append(lines, line)
	}
	if c.Min != "" {
		lines = append(lines, fmt.Sprintf("Min: %s Max: %s", c.Min, c.Max))
	}
	if len(c.Quantiles) > 0 {
		lines = append(lines, quantileTable(c.Quantiles))
	}
	return strings.Join(lines, "\n")
}

func quantileTable(qs []summary.Quantile) string {
	t := prettytable.NewWriter()
	t.SetStyle(prettytable.StyleLight)
	t.SetTitle("Quantiles")
	header := make(prettytable.Row, len(qs))
	row := make(prettytable.Row, len(qs))
	for i, q := range qs {
		header[i] = quantileLabel(q.Q)
		row[i] = FormatNumber(q.Value)
	}
	t.AppendHeader(header)
	t.AppendRow(row)
	return t.Render()
}

func (st textStyles) titleRule(title string) string {
	label := " " + title + " "
	pad := st.width - len([]rune(label))
	if pad < 2 {
		return st.title.Render(label)
	}
	left := pad / 2
	return st.rule.Render(strings.Repeat("─", left)) + st.title.Render(label) + st.rule.Render(strings.Repeat("─", pad-left))
}

func (st textStyles) titledPanel(title, body string) string {
	return st.bold.Render(title) + "\n" + st.panel.Render(body)
}
