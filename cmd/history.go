package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avelhart/rewind/internal/tui"
)

var flagHistoryInteractive bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded timeline",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&flagHistoryInteractive, "interactive", "i", false,
		"Browse history interactively")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagHistoryInteractive {
		return tui.Run(ctx.Manager)
	}

	entries := ctx.Manager.History()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(entries)
	}

	cli := ctx.CLIFormatter()
	if len(entries) == 0 {
		cli.Muted("No recorded actions")
		return nil
	}
	// Newest first, numbered from the top of the undo stack.
	for i := len(entries) - 1; i >= 0; i-- {
		cli.Println(cli.HistoryLine(len(entries)-i, entries[i]))
	}
	if ctx.Manager.CanRedo() {
		cli.Muted("Redo available")
	}
	return nil
}
