// Package explore drives a report's view engine from text commands, for terminal use.
package explore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/view"
)

// ErrUnknownCommand is returned for a line that names no session command.
var ErrUnknownCommand = errors.New("unknown command")

// Options configures a Session.
type Options struct {
	Out        io.Writer
	Clipboards []view.Clipboard
	// Now is the scheduler clock; nil means time.Now.
	Now              func() time.Time
	CopyFlagDuration time.Duration
	Color            bool
	Logger           *slog.Logger
}

// Session is one report explored from the terminal. It is not safe for concurrent use.
type Session struct {
	in     *report.Input
	eng    *view.Engine
	sched  *view.QueueScheduler
	out    io.Writer
	styles styles
}

// commandHelp lists the session commands in help order.
var commandHelp = []struct{ name, usage string }{
	{"cols", "list columns with their selection and filter state"},
	{"check", "check <col>...: add columns (name or index) to the selection"},
	{"uncheck", "uncheck <col>...: remove columns from the selection"},
	{"all", "check every column kept by the active filter"},
	{"none", "clear the selection"},
	{"cell", "cell <head|tail> <row> <col>: activate a sample table cell"},
	{"mode", "mode <mode>: choose what the preview bars show"},
	{"modes", "list preview modes"},
	{"filter", "filter <name>: apply a column filter"},
	{"filters", "list column filters"},
	{"tab", "tab <sample|columns|warnings>: switch tabs"},
	{"bar", "show the preview bars"},
	{"copy", "copy [bar|columns|selection]: copy the shown text"},
	{"status", "summarize the current view"},
	{"help", "show this help"},
	{"quit", "leave the session"},
}

// NewSession builds the report's document and an engine over it.
func NewSession(in *report.Input, opts Options) (*Session, error) {
	doc, cfg, err := report.Build(in)
	if err != nil {
		return nil, err
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	sched := view.NewQueueScheduler(opts.Now)
	cfg.Clipboards = opts.Clipboards
	cfg.Scheduler = sched
	cfg.CopyFlagDuration = opts.CopyFlagDuration
	cfg.Logger = opts.Logger

	return &Session{
		in:     in,
		eng:    view.New(doc, cfg),
		sched:  sched,
		out:    out,
		styles: newStyles(out, opts.Color),
	}, nil
}

// Engine returns the engine driven by the session.
func (s *Session) Engine() *view.Engine { return s.eng }

// Scheduler returns the queue holding deferred work. Hosts call RunDue between commands.
func (s *Session) Scheduler() *view.QueueScheduler { return s.sched }

// Commands returns the command names, for completion.
func (s *Session) Commands() []string {
	names := make([]string, len(commandHelp))
	for i, c := range commandHelp {
		names[i] = c.name
	}
	return names
}

// ColumnNames returns the report's column names, for completion.
func (s *Session) ColumnNames() []string {
	names := make([]string, len(s.in.Summary.Columns))
	for i, c := range s.in.Summary.Columns {
		names[i] = c.Name
	}
	return names
}

// FilterNames returns the report's filter names, for completion.
func (s *Session) FilterNames() []string {
	return s.eng.Filters(s.in.ID).Names()
}

// Exec runs one command line and prints its result. done is set by quit and exit.
func (s *Session) Exec(line string) (done bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	rid := s.in.ID

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		s.printHelp()
	case "cols":
		s.printColumns()
	case "check", "uncheck":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: %s <col>...", name)
		}
		for _, arg := range args {
			idx, err := s.column(arg)
			if err != nil {
				return false, err
			}
			checked := strconv.FormatBool(name == "check")
			if err := s.do(view.ActionToggleColumn, view.CheckboxID(view.CardID(rid, idx)), "checked", checked); err != nil {
				return false, err
			}
		}
		s.printSelection()
	case "all":
		if err := s.do(view.ActionSelectAllColumns, rid); err != nil {
			return false, err
		}
		s.printSelection()
	case "none":
		if err := s.do(view.ActionClearColumns, rid); err != nil {
			return false, err
		}
		s.printSelection()
	case "cell":
		cellID, err := s.cell(args)
		if err != nil {
			return false, err
		}
		if err := s.do(view.ActionActivateCell, cellID); err != nil {
			return false, err
		}
		s.printBars()
		if card, ok := s.eng.HighlightedColumn(rid); ok {
			s.printf("Highlighted column: %s\n", card.Name)
		}
	case "mode":
		if len(args) != 1 {
			return false, errors.New("usage: mode <mode>")
		}
		if err := s.do(view.ActionChangeMode, report.SelectorID(rid), "mode", args[0]); err != nil {
			return false, err
		}
		s.printBars()
	case "modes":
		s.printModes()
	case "filter":
		if len(args) == 0 {
			return false, errors.New("usage: filter <name>")
		}
		if err := s.do(view.ActionApplyFilter, report.FilterControlID(rid), "filter", strings.Join(args, " ")); err != nil {
			return false, err
		}
		s.printColumns()
	case "filters":
		s.printFilters()
	case "tab":
		if len(args) != 1 {
			return false, errors.New("usage: tab <sample|columns|warnings>")
		}
		tab := strings.ToLower(args[0])
		if err := s.do(view.ActionShowTab, report.TabButtonID(rid, tab)); err != nil {
			return false, err
		}
		s.printTab(tab)
	case "bar":
		s.printBars()
	case "copy":
		source, err := s.copySource(args)
		if err != nil {
			return false, err
		}
		if err := s.do(view.ActionCopy, source); err != nil {
			return false, err
		}
		s.printCopy(source)
	case "status":
		s.printStatus()
	default:
		return false, fmt.Errorf("%w: %s (type help for commands)", ErrUnknownCommand, name)
	}
	return false, nil
}

// do decodes and dispatches a command the same way the web host does.
func (s *Session) do(action, id string, kv ...string) error {
	params := url.Values{"id": {id}}
	for i := 0; i+1 < len(kv); i += 2 {
		params.Set(kv[i], kv[i+1])
	}
	cmd, err := view.DecodeCommand(action, params)
	if err != nil {
		return err
	}
	return s.eng.Dispatch(cmd)
}

// column resolves a column by name, then by position.
func (s *Session) column(arg string) (int, error) {
	if i := slices.Index(s.ColumnNames(), arg); i >= 0 {
		return i, nil
	}
	if i, err := strconv.Atoi(arg); err == nil && i >= 0 && i < len(s.in.Summary.Columns) {
		return i, nil
	}
	return 0, fmt.Errorf("no column %q", arg)
}

func (s *Session) cell(args []string) (string, error) {
	if len(args) != 3 {
		return "", errors.New("usage: cell <head|tail> <row> <col>")
	}
	var tableID string
	switch strings.ToLower(args[0]) {
	case "head":
		tableID = report.HeadTableID(s.in.ID)
	case "tail":
		tableID = report.TailTableID(s.in.ID)
	default:
		return "", fmt.Errorf("unknown table %q (expected head or tail)", args[0])
	}
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("invalid row %q", args[1])
	}
	col, err := s.column(args[2])
	if err != nil {
		return "", err
	}
	return view.CellID(tableID, row, col), nil
}

func (s *Session) copySource(args []string) (string, error) {
	target := "bar"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}
	switch target {
	case "bar":
		return report.PowerbarID(s.in.ID), nil
	case "columns":
		return report.ColumnsBarID(s.in.ID), nil
	case "selection":
		return report.SelectionTextID(s.in.ID), nil
	default:
		return "", fmt.Errorf("unknown copy source %q (expected bar, columns or selection)", target)
	}
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
