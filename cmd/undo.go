package cmd

import (
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent action",
	RunE:  runUndo,
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Re-apply the most recently undone action",
	RunE:  runRedo,
}

func init() {
	rootCmd.AddCommand(undoCmd, redoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	info, hadNext := ctx.Manager.UndoStack().PeekUndo()

	ok, err := ctx.Manager.Undo(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}

	if ctx.IsJSON() {
		out := map[string]any{"undone": ok}
		if ok && hadNext {
			out["description"] = info.Description
		}
		return ctx.Formatter.JSON(out)
	}

	cli := ctx.CLIFormatter()
	if !ok {
		cli.Muted("Nothing to undo")
		return nil
	}
	cli.Success("Undid: " + info.Description)
	return nil
}

func runRedo(cmd *cobra.Command, args []string) error {
	info, hadNext := ctx.Manager.UndoStack().PeekRedo()

	ok, err := ctx.Manager.Redo(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}

	if ctx.IsJSON() {
		out := map[string]any{"redone": ok}
		if ok && hadNext {
			out["description"] = info.Description
		}
		return ctx.Formatter.JSON(out)
	}

	cli := ctx.CLIFormatter()
	if !ok {
		cli.Muted("Nothing to redo")
		return nil
	}
	cli.Success("Redid: " + info.Description)
	return nil
}
