package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/datareport/internal/cli/config"
	"github.com/leapstack-labs/datareport/internal/dataset"
	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/leapstack-labs/datareport/internal/summary"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errNoInput is returned when a command has neither a data file, a stored report nor a
// configured source to work on.
var errNoInput = errors.New("no input: pass a data file, --id of a stored report, or configure a source")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
}

// NewCommandContext returns the config and logger set up by the root command.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    config.FromContext(cmd.Context()),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// OpenStore opens the report catalog, creating its directory when needed.
// The caller closes the returned store.
func (c *CommandContext) OpenStore(ctx context.Context) (*store.Store, error) {
	path := c.Cfg.StorePath
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	s := store.New(c.Logger)
	if err := s.Open(ctx, path); err != nil {
		return nil, err
	}
	return s, nil
}

// InputOptions selects what a command summarizes.
type InputOptions struct {
	// Path is a data file.
	Path string
	// ID is a stored report; with Path set it is the ID the new report is given.
	ID string
}

// LoadSummary resolves the command input into a summary: a data file, then a stored
// report, then the configured source.
func (c *CommandContext) LoadSummary(ctx context.Context, opts InputOptions) (*summary.Summary, error) {
	sumOpts := c.Cfg.SummaryOptions()

	switch {
	case opts.Path != "":
		c.Logger.Debug("loading data file", "path", opts.Path)
		frame, err := dataset.OpenFile(ctx, opts.Path, c.Logger)
		if err != nil {
			return nil, err
		}
		sumOpts.FilePath = opts.Path
		return summary.Summarize(frame, sumOpts)

	case opts.ID != "":
		s, err := c.OpenStore(ctx)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.Close() }()
		rec, err := s.Get(ctx, opts.ID)
		if err != nil {
			return nil, err
		}
		return rec.Summary, nil

	case !c.Cfg.Source.IsZero():
		c.Logger.Debug("loading configured source", "source", c.Cfg.Source.String())
		frame, err := dataset.Open(ctx, c.Cfg.Source, c.Logger)
		if err != nil {
			return nil, err
		}
		sumOpts.Source = c.Cfg.Source.String()
		return summary.Summarize(frame, sumOpts)

	default:
		return nil, errNoInput
	}
}

// LoadInput loads the summary and prepares a report with the configured filters and
// dialect. Stored reports keep their ID.
func (c *CommandContext) LoadInput(ctx context.Context, opts InputOptions) (*report.Input, error) {
	s, err := c.LoadSummary(ctx, opts)
	if err != nil {
		return nil, err
	}
	return report.NewInput(opts.ID, s, c.Cfg.FilterConfig(), c.Cfg.SnippetDialect())
}

// SaveInput stores a report in the catalog.
func (c *CommandContext) SaveInput(ctx context.Context, s *store.Store, in *report.Input) (*store.Record, error) {
	rec := newRecord(in)
	if err := s.Save(ctx, rec); err != nil {
		return nil, err
	}
	c.Logger.Info("report saved", "id", rec.ID)
	return rec, nil
}

func newRecord(in *report.Input) *store.Record {
	return &store.Record{
		ID:      in.ID,
		Title:   in.Summary.DisplayTitle(),
		Source:  sourceOf(in.Summary),
		Summary: in.Summary,
	}
}

func sourceOf(s *summary.Summary) string {
	if s.FilePath != "" {
		return s.FilePath
	}
	return s.Source
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
