package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelhart/rewind/internal/errors"
	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/parser"
)

var (
	flagTaskDue  string
	flagTaskTags []string
)

// taskCmd groups task operations.
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <key> <title>",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskEdit,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <key>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

func init() {
	taskAddCmd.Flags().StringVar(&flagTaskDue, "due", "",
		"Due date (natural language: 'tomorrow 2pm', '+2d', '2026-01-15')")
	taskAddCmd.Flags().StringSliceVar(&flagTaskTags, "tag", nil, "Tags")

	taskCmd.AddCommand(taskAddCmd, taskEditCmd, taskDoneCmd, taskDeleteCmd, taskListCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	t := model.Task{
		Title: strings.Join(args, " "),
		Tags:  flagTaskTags,
	}
	if flagTaskDue != "" {
		due, err := parser.ParseDue(flagTaskDue)
		if err != nil {
			printError(err)
			return err
		}
		t.Due = &due
	}

	key, err := ctx.Tasks.CreateTask(cmd.Context(), t)
	if err != nil {
		printError(err)
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "created", "key": key})
	}
	ctx.CLIFormatter().Success("Created task " + shortKey(key) + ": " + t.Title)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	key, err := resolveTaskKey(args[0])
	if err != nil {
		printError(err)
		return err
	}
	if err := ctx.Tasks.UpdateTask(cmd.Context(), key, map[string]any{"title": args[1]}); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "updated", "key": key})
	}
	ctx.CLIFormatter().Success("Updated task " + shortKey(key))
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	key, err := resolveTaskKey(args[0])
	if err != nil {
		printError(err)
		return err
	}
	if err := ctx.Tasks.CompleteTask(cmd.Context(), key); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "done", "key": key})
	}
	ctx.CLIFormatter().Success("Marked task " + shortKey(key) + " done")
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	key, err := resolveTaskKey(args[0])
	if err != nil {
		printError(err)
		return err
	}
	if err := ctx.Tasks.DeleteTask(cmd.Context(), key); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "deleted", "key": key})
	}
	ctx.CLIFormatter().Success("Deleted task " + shortKey(key) + " (undo to restore)")
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	tasks := ctx.Tasks.Store().Tasks()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(tasks)
	}

	cli := ctx.CLIFormatter()
	if len(tasks) == 0 {
		cli.Muted("No tasks")
		return nil
	}
	for _, t := range tasks {
		line := shortKey(t.Key) + "  [" + t.Status + "]  " + t.Title
		if t.Due != nil {
			line += "  (due " + t.Due.Format("2006-01-02 15:04") + ")"
		}
		cli.Println(line)
	}
	return nil
}

// shortKey abbreviates a uuid for display.
func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

// resolveTaskKey expands a key prefix into the full task key.
func resolveTaskKey(prefix string) (string, error) {
	keys := make([]string, 0)
	for _, t := range ctx.Tasks.Store().Tasks() {
		keys = append(keys, t.Key)
	}
	return resolveKey(keys, prefix, "task")
}

// resolveKey matches a user-supplied prefix against known keys.
func resolveKey(keys []string, prefix, kind string) (string, error) {
	var match string
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if match != "" {
			return "", errors.NewUserErrorWithField("key", prefix,
				"ambiguous "+kind+" key", "use more characters of the key")
		}
		match = k
	}
	if match == "" {
		return "", errors.NewUserErrorWithField("key", prefix,
			"unknown "+kind+" key", "run 'rewind "+kind+" list' to see keys")
	}
	return match, nil
}
