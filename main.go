// Rewind - a task/canvas/timer workspace with a unified undo/redo
// timeline.
package main

import (
	"os"

	"github.com/avelhart/rewind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
