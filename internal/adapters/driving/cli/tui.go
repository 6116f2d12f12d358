package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-docsearch/internal/adapters/driving/tui"
)

// errNotTerminal is returned when the TUI is started without a terminal.
var errNotTerminal = errors.New("tui requires an interactive terminal")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive search interface.

Type a term and press enter to list the documents containing it.

Controls:
  Enter    - Search
  ↑/k, ↓/j - Navigate results
  n, /     - New search
  r        - Rerun the search
  Esc      - Edit the query
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Restore a usable terminal message if the model panics.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("tui panicked: %v", r)
		}
	}()

	if searchService == nil {
		return errSearchNotConfigured
	}
	if !isTerminal() {
		return errNotTerminal
	}

	return tui.Run(cmd.Context(), &tui.Ports{
		Search: searchService,
		Runs:   runHistory,
	})
}
