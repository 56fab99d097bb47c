package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/datareport/internal/explore"
	"github.com/spf13/cobra"
)

const explorePrompt = "datareport> "

// ExploreOptions holds options for the explore command.
type ExploreOptions struct {
	ID string
}

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	opts := &ExploreOptions{}

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a report in an interactive terminal session",
		Long: `Open a report in a terminal session.

Check columns, activate sample cells, switch preview modes, apply column filters
and copy the generated snippets to the clipboard. Type help for the commands.`,
		Example: `  # Explore a CSV file
  datareport explore data/cities.csv

  # Explore a stored report with polars snippets
  datareport explore --id report_1a2b3c4d --dialect polars`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "Explore a stored report")
	cmd.Flags().String("title", "", "Report title")
	cmd.Flags().String("order-by", "", "Column to sort the rows by before sampling")

	return cmd
}

func runExplore(cmd *cobra.Command, args []string, opts *ExploreOptions) error {
	ctx := cmd.Context()
	cc := NewCommandContext(cmd)

	in, err := cc.LoadInput(ctx, InputOptions{Path: inputArg(args), ID: opts.ID})
	if err != nil {
		return err
	}

	// Setup history file next to the catalog
	historyFile := ""
	if cc.Cfg.StorePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StorePath), "explore_history")
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o750); err != nil {
			cc.Logger.Debug("history disabled", "error", err)
			historyFile = ""
		}
	}

	sess, err := explore.NewSession(in, explore.Options{
		Out:              cmd.OutOrStdout(),
		Clipboards:       explore.DefaultClipboards(),
		CopyFlagDuration: cc.Cfg.UI.CopyFlagDuration,
		Color:            isTerminal(cmd.OutOrStdout()),
		Logger:           cc.Logger,
	})
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          explorePrompt,
		HistoryFile:     historyFile,
		AutoComplete:    sess.Completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	defer func() { _ = rl.Close() }()

	// Print welcome message
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Exploring %s (%s)\n", in.Summary.DisplayTitle(), in.ID)
	_, _ = fmt.Fprintln(out, "Type help for commands, quit to exit")
	_, _ = fmt.Fprintln(out)

	return exploreLoop(sess, rl.Readline, cmd.ErrOrStderr())
}

// exploreLoop runs session commands read by next until quit or end of input.
// Deferred work that came due while waiting for input runs before each prompt.
func exploreLoop(sess *explore.Session, next func() (string, error), errOut io.Writer) error {
	for {
		sess.Scheduler().RunDue()

		line, err := next()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		done, err := sess.Exec(line)
		if err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}
