package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avelhart/rewind/internal/model"
)

var (
	flagNodeKind string
	flagNodeX    float64
	flagNodeY    float64
)

// canvasCmd groups canvas layout operations.
var canvasCmd = &cobra.Command{
	Use:   "canvas",
	Short: "Manage the layout canvas",
}

var canvasAddCmd = &cobra.Command{
	Use:   "add <label>",
	Short: "Add a node to the canvas",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCanvasAdd,
}

var canvasMoveCmd = &cobra.Command{
	Use:   "move <key> <x> <y>",
	Short: "Move a node",
	Args:  cobra.ExactArgs(3),
	RunE:  runCanvasMove,
}

var canvasRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runCanvasRemove,
}

var canvasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nodes",
	RunE:  runCanvasList,
}

func init() {
	canvasAddCmd.Flags().StringVar(&flagNodeKind, "kind", model.NodeKindNote,
		"Node kind: note, group, task")
	canvasAddCmd.Flags().Float64Var(&flagNodeX, "x", 0, "Initial x position")
	canvasAddCmd.Flags().Float64Var(&flagNodeY, "y", 0, "Initial y position")

	canvasCmd.AddCommand(canvasAddCmd, canvasMoveCmd, canvasRemoveCmd, canvasListCmd)
	rootCmd.AddCommand(canvasCmd)
}

func runCanvasAdd(cmd *cobra.Command, args []string) error {
	n := model.CanvasNode{
		Kind:  flagNodeKind,
		Label: strings.Join(args, " "),
		X:     flagNodeX,
		Y:     flagNodeY,
	}
	key, err := ctx.Canvas.AddNode(cmd.Context(), n)
	if err != nil {
		printError(err)
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "created", "key": key})
	}
	ctx.CLIFormatter().Success("Added node " + shortKey(key) + ": " + n.Label)
	return nil
}

func runCanvasMove(cmd *cobra.Command, args []string) error {
	key, err := resolveNodeKey(args[0])
	if err != nil {
		printError(err)
		return err
	}
	var x, y float64
	if _, err := fmt.Sscanf(args[1], "%f", &x); err != nil {
		printError(fmt.Errorf("invalid x %q", args[1]))
		return err
	}
	if _, err := fmt.Sscanf(args[2], "%f", &y); err != nil {
		printError(fmt.Errorf("invalid y %q", args[2]))
		return err
	}

	if err := ctx.Canvas.MoveNode(cmd.Context(), key, x, y); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "moved", "key": key, "x": x, "y": y})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Moved node %s to (%.0f, %.0f)", shortKey(key), x, y))
	return nil
}

func runCanvasRemove(cmd *cobra.Command, args []string) error {
	key, err := resolveNodeKey(args[0])
	if err != nil {
		printError(err)
		return err
	}
	if err := ctx.Canvas.RemoveNode(cmd.Context(), key); err != nil {
		printError(err)
		return err
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"status": "removed", "key": key})
	}
	ctx.CLIFormatter().Success("Removed node " + shortKey(key) + " (undo to restore)")
	return nil
}

func runCanvasList(cmd *cobra.Command, args []string) error {
	nodes := ctx.Canvas.Store().Nodes()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(nodes)
	}

	cli := ctx.CLIFormatter()
	if len(nodes) == 0 {
		cli.Muted("Canvas is empty")
		return nil
	}
	for _, n := range nodes {
		cli.Printf("%s  [%s]  %s  (%.0f, %.0f)\n", shortKey(n.Key), n.Kind, n.Label, n.X, n.Y)
	}
	return nil
}

// resolveNodeKey expands a key prefix into the full node key.
func resolveNodeKey(prefix string) (string, error) {
	keys := make([]string, 0)
	for _, n := range ctx.Canvas.Store().Nodes() {
		keys = append(keys, n.Key)
	}
	return resolveKey(keys, prefix, "canvas")
}
