package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint <description>",
	Short: "Save an undoable snapshot of every store",
	Long: `Checkpoint captures the full state of the tasks, canvas and timer
stores as a single history entry. Undoing the checkpoint restores all
three stores to the captured state in one step.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheckpoint,
}

func init() {
	rootCmd.AddCommand(checkpointCmd)
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	if err := ctx.Manager.CreateCheckpoint(cmd.Context(), description); err != nil {
		printError(err)
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{
			"status":      "checkpoint",
			"description": description,
		})
	}
	ctx.CLIFormatter().Success("Checkpoint saved: " + description)
	return nil
}
