// Package cmd provides the CLI commands for Rewind.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/avelhart/rewind/internal/config"
	"github.com/avelhart/rewind/internal/errors"
	"github.com/avelhart/rewind/internal/logging"
	"github.com/avelhart/rewind/internal/output"
	"github.com/avelhart/rewind/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "rewind",
	Short: "A workspace with a unified undo/redo timeline",
	Long: `Rewind tracks tasks, a layout canvas and a focus timer behind one
command-based history: every mutation is recorded as a reversible command,
so undo and redo work across all three stores.

Examples:
  rewind task add "Buy milk" --due tomorrow
  rewind canvas add "Roadmap" --x 120 --y 40
  rewind timer start
  rewind undo
  rewind redo
  rewind checkpoint "before bulk edit"
  rewind history`,
	// Errors are rendered by printError; cobra must not repeat them.
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		if flagDebug {
			logging.Init(logging.DebugConfig())
		} else {
			logging.Init(logging.Config{Level: slog.LevelWarn})
		}

		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		var err error
		ctx, err = runtime.New(runtime.Options{
			Config:    config.Load(),
			Format:    format,
			ColorMode: colorMode,
		})
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args)
	},
}

// runStatus shows a short overview of the workspace and the timeline.
func runStatus(cmd *cobra.Command, args []string) error {
	entries := ctx.Manager.History()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"tasks":    ctx.Tasks.Store().Len(),
			"nodes":    ctx.Canvas.Store().Len(),
			"history":  len(entries),
			"can_undo": ctx.Manager.CanUndo(),
			"can_redo": ctx.Manager.CanRedo(),
		})
	}

	cli := ctx.CLIFormatter()
	cli.Title("Rewind")
	cli.Printf("Tasks: %d   Canvas nodes: %d   History entries: %d\n",
		ctx.Tasks.Store().Len(), ctx.Canvas.Store().Len(), len(entries))
	if info, ok := ctx.Manager.UndoStack().PeekUndo(); ok {
		cli.Muted("Next undo: " + info.Description)
	} else {
		cli.Muted("Nothing to undo")
	}
	return nil
}

// printError renders a command error with a suggestion when available.
func printError(err error) {
	cli := ctx.CLIFormatter()
	var userErr *errors.UserError
	if errors.As(err, &userErr) {
		cli.Error(userErr.Message)
		if userErr.Suggestion != "" {
			cli.Muted("  " + userErr.Suggestion)
		}
		return
	}
	cli.Error(err.Error())
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{
				"version":    Version,
				"commit":     Commit,
				"build_time": BuildTime,
			})
		}
		ctx.Formatter.Printf("rewind %s (%s, built %s)\n", Version, Commit, BuildTime)
		return nil
	},
}
