// Package report turns dataset summaries into interactive documents and renders
// them as HTML, text, Markdown, JSON or YAML.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/leapstack-labs/datareport/internal/snippet"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/leapstack-labs/datareport/internal/view"
)

// Tab names, in display order.
const (
	TabSample   = "sample"
	TabColumns  = "columns"
	TabWarnings = "warnings"
)

// TabGroup is the group shared by the tabs of a report.
const TabGroup = "main"

// Input is one report to build.
type Input struct {
	ID      string
	Summary *summary.Summary
	Filters []summary.Filter
	Dialect snippet.Dialect
}

// NewID returns a fresh report ID: "report_" followed by 8 hex characters.
func NewID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "report_" + hex[:8]
}

// NewInput prepares a report for s with the default filters extended by cfg.
func NewInput(id string, s *summary.Summary, cfg summary.FilterConfig, dialect snippet.Dialect) (*Input, error) {
	filters, err := summary.ColumnFilters(s, cfg)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = NewID()
	}
	if dialect == "" {
		dialect = snippet.DefaultDialect
	}
	return &Input{ID: id, Summary: s, Filters: filters, Dialect: dialect}, nil
}

// Node IDs derived from a report ID.
func PowerbarID(rid string) string       { return rid + "_powerbar" }
func ColumnsBarID(rid string) string     { return rid + "_columns_bar" }
func SelectorID(rid string) string       { return rid + "_mode" }
func CopyButtonID(source string) string  { return source + "_copy" }
func SelectionTextID(rid string) string  { return rid + "_selected_columns" }
func FilterControlID(rid string) string  { return rid + "_filter" }
func FilterCountID(rid string) string    { return rid + "_filter_count" }
func HeadTableID(rid string) string      { return rid + "_head" }
func TailTableID(rid string) string      { return rid + "_tail" }
func TabButtonID(rid, tab string) string { return rid + "_tab_" + tab }
func TabPanelID(rid, tab string) string  { return rid + "_panel_" + tab }

const cellPlaceholder = "Click a table cell to see its value"

// modeOptions are the choices of every report's mode selector.
var modeOptions = []view.ModeOption{
	{Mode: view.ModeTableCellValue, Label: "Value", Placeholder: cellPlaceholder},
	{Mode: view.ModeTableCellRepr, Label: "Repr", Placeholder: cellPlaceholder},
	{Mode: view.ModeTableCellFilter, Label: "Filter", Placeholder: cellPlaceholder},
	{Mode: view.ModeTableColumnName, Label: "Column name", Placeholder: cellPlaceholder},
	{Mode: view.ModeTableColumnNameRepr, Label: "Column name repr", Placeholder: cellPlaceholder},
	{Mode: view.ModeSelectedColumns, Label: "Selected columns", Placeholder: "Select columns in the Columns tab"},
}

// Build creates the document holding every interactive node of the given reports,
// along with the engine configuration they need.
func Build(inputs ...*Input) (*view.Document, view.Config, error) {
	doc := view.NewDocument()
	cfg := view.Config{Filters: make(map[string]view.FilterSet, len(inputs))}
	for _, in := range inputs {
		if err := addReport(doc, in); err != nil {
			return nil, view.Config{}, fmt.Errorf("build report %s: %w", in.ID, err)
		}
		set := make(view.FilterSet, len(in.Filters))
		for i, f := range in.Filters {
			set[i] = view.ColumnFilter{Name: f.Name, Columns: f.Columns}
		}
		cfg.Filters[in.ID] = set
	}
	return doc, cfg, nil
}

func addReport(doc *view.Document, in *Input) error {
	rid := in.ID
	s := in.Summary
	dialect := in.Dialect
	if dialect == "" {
		dialect = snippet.DefaultDialect
	}

	nodes := []view.Node{&view.Report{ID: rid, Title: s.DisplayTitle()}}

	for i, col := range s.Columns {
		cardID := view.CardID(rid, i)
		nodes = append(nodes,
			&view.ColumnCard{
				ID: cardID, ReportID: rid, Index: i, Name: col.Name, NameRepr: snippet.Repr(col.Name),
				CheckboxID: view.CheckboxID(cardID), Filterable: true,
			},
			&view.Checkbox{ID: view.CheckboxID(cardID), ReportID: rid, CardID: cardID},
		)
	}

	nodes = append(nodes, &view.Selector{ID: SelectorID(rid), ReportID: rid, Options: modeOptions, Value: view.ModeTableCellValue})
	for _, barID := range []string{PowerbarID(rid), ColumnsBarID(rid)} {
		nodes = append(nodes,
			&view.Bar{
				ID: barID, ReportID: rid, SelectorID: SelectorID(rid), Content: map[view.Mode]string{},
				Text: cellPlaceholder, ShowsPlaceholder: true,
			},
			&view.CopyButton{ID: CopyButtonID(barID), ReportID: rid, SourceID: barID},
		)
	}

	nodes = append(nodes, tableNodes(rid, HeadTableID(rid), s, s.Head, dialect)...)
	if hasTail(s) {
		nodes = append(nodes, tableNodes(rid, TailTableID(rid), s, s.Tail, dialect)...)
	}

	nodes = append(nodes,
		&view.Text{ID: SelectionTextID(rid), ReportID: rid, Role: view.TextSelectedColumns, Value: "[]"},
		&view.CopyButton{ID: CopyButtonID(SelectionTextID(rid)), ReportID: rid, SourceID: SelectionTextID(rid), Enabled: true},
		&view.FilterControl{ID: FilterControlID(rid), ReportID: rid, CountID: FilterCountID(rid)},
		&view.Text{ID: FilterCountID(rid), ReportID: rid, Role: view.TextColumnCount, Value: strconv.Itoa(s.NColumns)},
	)

	warn := len(Warnings(s)) > 0
	for i, tab := range []string{TabSample, TabColumns, TabWarnings} {
		w := tab == TabWarnings && warn
		nodes = append(nodes,
			&view.TabButton{
				ID: TabButtonID(rid, tab), ReportID: rid, Group: TabGroup, PanelID: TabPanelID(rid, tab),
				Label: tabLabel(tab), Warning: w, Selected: i == 0, UnseenWarning: w,
			},
			&view.TabPanel{ID: TabPanelID(rid, tab), ReportID: rid, Group: TabGroup, Displayed: i == 0},
		)
	}

	return doc.Add(nodes...)
}

func tableNodes(rid, tableID string, s *summary.Summary, t summary.Table, dialect snippet.Dialect) []view.Node {
	nodes := []view.Node{&view.Table{ID: tableID, ReportID: rid, BarID: PowerbarID(rid)}}
	for _, row := range t.Rows {
		for ci, v := range row.Values {
			name := s.Columns[ci].Name
			nodes = append(nodes, &view.TableCell{
				ID: view.CellID(tableID, row.Index, ci), TableID: tableID, ReportID: rid,
				Row: row.Index, ColumnIndex: ci, ColumnName: name, ColumnNameRepr: snippet.Repr(name),
				ValueStr: v.Str, ValueRepr: v.Repr, ValueIsNone: v.Null, Dialect: dialect,
			})
		}
	}
	return nodes
}

// hasTail reports whether the tail preview shows rows the head does not.
func hasTail(s *summary.Summary) bool {
	return len(s.Tail.Rows) > 0 && s.Tail.Rows[0].Index >= len(s.Head.Rows)
}

func tabLabel(tab string) string {
	switch tab {
	case TabSample:
		return "Sample"
	case TabColumns:
		return "Columns"
	default:
		return "Warnings"
	}
}

// Warning is a column-level issue listed in the warnings tab.
type Warning struct {
	Column  string
	Level   summary.NullsLevel
	Message string
}

// Warnings lists columns with null values and constant columns.
func Warnings(s *summary.Summary) []Warning {
	var out []Warning
	for _, c := range s.Columns {
		if c.NullsLevel != summary.NullsOK {
			out = append(out, Warning{
				Column:  c.Name,
				Level:   c.NullsLevel,
				Message: fmt.Sprintf("%d null values (%s)", c.NullCount, FormatPercent(c.NullProportion)),
			})
		}
		if c.IsConstant && c.ConstantValue != nil {
			out = append(out, Warning{
				Column:  c.Name,
				Level:   summary.NullsWarning,
				Message: "constant value " + c.ConstantValue.Repr,
			})
		}
	}
	return out
}
