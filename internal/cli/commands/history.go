package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Search string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List stored reports",
		Example: `  # Show the ten latest reports
  datareport history --limit 10

  # Find reports by title or source as JSON
  datareport history --search cities -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of reports to list (0 lists all)")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Only list reports whose title or source contains this text")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	s, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	records, err := s.List(ctx, store.ListOptions{Limit: opts.Limit, Search: opts.Search})
	if err != nil {
		return err
	}

	format, err := report.ParseFormat(cc.Cfg.Output)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format.Resolve(isTerminal(w)) {
	case report.FormatJSON:
		return renderHistoryJSON(w, records)
	case report.FormatYAML:
		return yaml.NewEncoder(w).Encode(records)
	case report.FormatMarkdown:
		return renderHistoryTable(w, records, true)
	default:
		return renderHistoryTable(w, records, false)
	}
}

func renderHistoryJSON(w io.Writer, records []store.Record) error {
	if records == nil {
		records = []store.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderHistoryTable(w io.Writer, records []store.Record, markdown bool) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 reports)")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Rows", "Columns", "Created", "Source"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.ID,
			rec.Title,
			report.FormatCount(rec.NRows),
			report.FormatCount(rec.NColumns),
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.Source,
		})
	}

	if markdown {
		_, _ = fmt.Fprintln(w, t.RenderMarkdown())
	} else {
		_, _ = fmt.Fprintln(w, t.Render())
	}
	_, _ = fmt.Fprintf(w, "(%d reports)\n", len(records))
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored reports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cc := NewCommandContext(cmd)

			s, err := cc.OpenStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			for _, id := range args {
				if err := s.Delete(ctx, id); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			}
			return nil
		},
	}
}
