package view

import (
	"fmt"

	"github.com/leapstack-labs/datareport/internal/snippet"
)

// Mode names a content slot of a preview bar.
type Mode string

// Preview bar modes.
const (
	ModeSelectedColumns     Mode = "selected-columns"
	ModeTableCellValue      Mode = "table-cell-value"
	ModeTableCellRepr       Mode = "table-cell-repr"
	ModeTableCellFilter     Mode = "table-cell-filter"
	ModeTableColumnName     Mode = "table-column-name"
	ModeTableColumnNameRepr Mode = "table-column-name-repr"
)

// cellModes are the modes a bar may show right after a table cell was activated.
var cellModes = []Mode{
	ModeTableCellValue,
	ModeTableCellRepr,
	ModeTableCellFilter,
	ModeTableColumnName,
	ModeTableColumnNameRepr,
}

// TextRole tells the engine which plain text nodes it owns.
type TextRole string

// Text roles.
const (
	TextSelectedColumns TextRole = "selected-columns"
	TextColumnCount     TextRole = "column-count"
	TextStatic          TextRole = "static"
)

// Node is anything registered in a Document.
type Node interface {
	NodeID() string
}

// Report is the root scope of one rendered report.
type Report struct {
	ID    string
	Title string
}

// ColumnCard is the summary card of one dataset column.
type ColumnCard struct {
	ID         string
	ReportID   string
	Index      int
	Name       string
	NameRepr   string
	CheckboxID string
	Filterable bool

	Highlighted      bool
	SelectedInTable  bool
	ExcludedByFilter bool
}

// Checkbox holds whether a column belongs to the user's selection.
type Checkbox struct {
	ID       string
	ReportID string
	CardID   string
	Checked  bool
}

// Table is a table of sample values.
type Table struct {
	ID       string
	ReportID string
	BarID    string
}

// TableCell is one rendered sample value.
type TableCell struct {
	ID             string
	TableID        string
	ReportID       string
	Row            int
	ColumnIndex    int
	ColumnName     string
	ColumnNameRepr string
	ValueStr       string
	ValueRepr      string
	ValueIsNone    bool
	Dialect        snippet.Dialect

	Selected bool
}

// ModeOption is one choice of a Selector.
type ModeOption struct {
	Mode        Mode
	Label       string
	Placeholder string
}

// Selector is a single-choice control shared by one or more bars.
type Selector struct {
	ID       string
	ReportID string
	Options  []ModeOption
	Value    Mode
}

// Bar is a content preview bar: it shows the content slot matching its selector's value.
type Bar struct {
	ID         string
	ReportID   string
	SelectorID string
	Content    map[Mode]string

	// CellID is the table cell whose values fill the cell slots of Content.
	CellID string

	Text             string
	ShowsPlaceholder bool
	BeingCopied      bool
}

// CopyButton copies the text of its source node.
type CopyButton struct {
	ID       string
	ReportID string
	SourceID string
	Enabled  bool
}

// Text is a plain text display.
type Text struct {
	ID       string
	ReportID string
	Role     TextRole
	Value    string

	BeingCopied bool
}

// TabButton switches its group to PanelID.
type TabButton struct {
	ID       string
	ReportID string
	Group    string
	PanelID  string
	Label    string
	Warning  bool

	Selected      bool
	UnseenWarning bool
}

// TabPanel is the content shown for one tab.
type TabPanel struct {
	ID        string
	ReportID  string
	Group     string
	Displayed bool
}

// FilterControl chooses the column filter of a report.
type FilterControl struct {
	ID       string
	ReportID string
	CountID  string
	Value    string
}

func (n *Report) NodeID() string        { return n.ID }
func (n *ColumnCard) NodeID() string    { return n.ID }
func (n *Checkbox) NodeID() string      { return n.ID }
func (n *Table) NodeID() string         { return n.ID }
func (n *TableCell) NodeID() string     { return n.ID }
func (n *Selector) NodeID() string      { return n.ID }
func (n *Bar) NodeID() string           { return n.ID }
func (n *CopyButton) NodeID() string    { return n.ID }
func (n *Text) NodeID() string          { return n.ID }
func (n *TabButton) NodeID() string     { return n.ID }
func (n *TabPanel) NodeID() string      { return n.ID }
func (n *FilterControl) NodeID() string { return n.ID }

// Offers reports whether m is one of the selector's options.
func (s *Selector) Offers(m Mode) bool {
	_, ok := s.option(m)
	return ok
}

// Placeholder returns the text shown for m when a bar has no content for it.
func (s *Selector) Placeholder(m Mode) string {
	opt, _ := s.option(m)
	return opt.Placeholder
}

func (s *Selector) option(m Mode) (ModeOption, bool) {
	for _, opt := range s.Options {
		if opt.Mode == m {
			return opt, true
		}
	}
	return ModeOption{}, false
}

// copySource is a node whose displayed text can be copied.
type copySource interface {
	Node
	copyText() (string, bool)
	setBeingCopied(bool)
}

func (n *Bar) copyText() (string, bool) { return n.Text, !n.ShowsPlaceholder }
func (n *Bar) setBeingCopied(v bool)    { n.BeingCopied = v }

func (n *Text) copyText() (string, bool) { return n.Value, n.Value != "" }
func (n *Text) setBeingCopied(v bool)    { n.BeingCopied = v }

// Stable node IDs.

// CardID returns the ID of the card of column index in report reportID.
func CardID(reportID string, index int) string {
	return fmt.Sprintf("%s_col_%d", reportID, index)
}

// CheckboxID returns the ID of a card's selection checkbox.
func CheckboxID(cardID string) string {
	return cardID + "_checkbox"
}

// CellID returns the ID of a table cell.
func CellID(tableID string, row, col int) string {
	return fmt.Sprintf("%s_r%d_c%d", tableID, row, col)
}
