package cmd

import (
	"github.com/spf13/cobra"

	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/output"
)

var flagTimerTask string

// timerCmd groups focus-timer operations.
var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Manage the focus timer",
}

var timerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	RunE:  runTimerStart,
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	RunE:  runTimerStop,
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runTimerStatus,
}

func init() {
	timerStartCmd.Flags().StringVar(&flagTimerTask, "task", "", "Task key to bind the session to")

	timerCmd.AddCommand(timerStartCmd, timerStopCmd, timerStatusCmd)
	rootCmd.AddCommand(timerCmd)
}

func runTimerStart(cmd *cobra.Command, args []string) error {
	taskKey := flagTimerTask
	if taskKey != "" {
		full, err := resolveTaskKey(taskKey)
		if err != nil {
			printError(err)
			return err
		}
		taskKey = full
	}

	if err := ctx.Timer.StartSession(cmd.Context(), taskKey); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "started"})
	}
	ctx.CLIFormatter().Success("Focus session started")
	return nil
}

func runTimerStop(cmd *cobra.Command, args []string) error {
	if err := ctx.Timer.StopSession(cmd.Context()); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "stopped"})
	}
	ctx.CLIFormatter().Success("Focus session stopped")
	return nil
}

func runTimerStatus(cmd *cobra.Command, args []string) error {
	sess, ok := ctx.Timer.Store().Session()

	if ctx.IsJSON() {
		if !ok {
			return ctx.Formatter.JSON(map[string]string{"state": model.TimerIdle})
		}
		return ctx.Formatter.JSON(sess)
	}

	cli := ctx.CLIFormatter()
	if !ok {
		cli.Muted("No session yet")
		return nil
	}
	cli.Printf("State: %s   Elapsed: %s\n", sess.State, output.FormatDuration(sess.Elapsed()))
	return nil
}
