package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/spf13/cobra"
)

// ReportOptions holds options for the report command.
type ReportOptions struct {
	Out      string
	Fragment bool
	Save     bool
	ID       string
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize a dataset",
		Long: `Summarize a data file, a stored report or the configured source.

The output format follows --output: text on a terminal and markdown otherwise
when set to auto, or html, json and yaml.`,
		Example: `  # Print a summary of a CSV file
  datareport report data/cities.csv

  # Write an HTML page and store the report
  datareport report data/cities.parquet -o html --out cities.html --save

  # Re-render a stored report as JSON
  datareport report --id report_1a2b3c4d -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Fragment, "fragment", false, "Render HTML without the surrounding page")
	cmd.Flags().String("title", "", "Report title")
	cmd.Flags().String("order-by", "", "Column to sort the rows by before sampling")
	cmd.Flags().Int("sample-size", 0, "Number of sample values per column")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "Store the report in the catalog")
	cmd.Flags().StringVar(&opts.ID, "id", "", "Render a stored report, or the ID to save a new one under")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) (err error) {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	in, err := cc.LoadInput(ctx, InputOptions{Path: inputArg(args), ID: opts.ID})
	if err != nil {
		return err
	}

	if opts.Save {
		s, err := cc.OpenStore(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		if _, err := cc.SaveInput(ctx, s, in); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved report %s\n", in.ID)
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, ferr := os.Create(opts.Out)
		if ferr != nil {
			return fmt.Errorf("failed to create %s: %w", opts.Out, ferr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	format, err := report.ParseFormat(cc.Cfg.Output)
	if err != nil {
		return err
	}
	tty := isTerminal(w)
	format = format.Resolve(tty)
	cc.Logger.Debug("rendering report", "id", in.ID, "format", format)

	return report.Render(w, in, report.RenderOptions{
		Format:   format,
		Fragment: opts.Fragment,
		Text:     report.TextOptions{Color: tty},
	})
}
