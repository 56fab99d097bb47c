package commands

import (
	"context"
	"fmt"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/leapstack-labs/datareport/internal/ui"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	ID string
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Explore stored reports in the browser",
		Long: `Start a local web server listing the stored reports.

Each report page is interactive: check columns, click sample cells, switch preview
modes and copy the generated snippets. When a data file is given, or a source is
configured, it is summarized and stored first.`,
		Example: `  # Browse stored reports
  datareport serve

  # Summarize a file, store it and open it
  datareport serve data/cities.csv

  # Start on a custom port without opening a browser
  datareport serve --port 3000 --no-browser`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8421)")
	cmd.Flags().Bool("no-browser", false, "Don't auto-open browser")
	cmd.Flags().String("title", "", "Title of the report created from the input")
	cmd.Flags().String("order-by", "", "Column to sort the rows by before sampling")
	cmd.Flags().StringVar(&opts.ID, "id", "", "ID to store the input report under")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)
	cfg := cc.Cfg

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	server, err := ui.NewServer(ui.Config{
		Catalog:          s,
		Port:             cfg.UI.Port,
		Dialect:          cfg.SnippetDialect(),
		Filters:          cfg.FilterConfig(),
		CopyFlagDuration: cfg.UI.CopyFlagDuration,
		CacheTTL:         cfg.UI.CacheTTL,
		Logger:           cc.Logger,
	})
	if err != nil {
		return err
	}

	path := "/"
	if inputArg(args) != "" || !cfg.Source.IsZero() {
		in, err := cc.LoadInput(ctx, InputOptions{Path: inputArg(args)})
		if err != nil {
			return err
		}
		if opts.ID != "" {
			in.ID = opts.ID
		}
		rec := newRecord(in)
		if err := server.Publish(ctx, rec); err != nil {
			return err
		}
		cc.Logger.Info("report saved", "id", rec.ID)
		path = "/reports/" + rec.ID
	}

	go func() {
		select {
		case url := <-server.Ready():
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving reports on %s%s\n", url, path)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")
			if cfg.UI.AutoOpen {
				openBrowser(ctx, url+path)
			}
		case <-ctx.Done():
		}
	}()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(ctx context.Context, url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "linux":
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return
	}

	_ = cmd.Start()
}
