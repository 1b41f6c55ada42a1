// Package runtime provides the application runtime context for the
// Rewind CLI: database, stores, adapters and the history manager, wired
// once and injected into commands.
package runtime

import (
	"github.com/avelhart/rewind/internal/appstate"
	"github.com/avelhart/rewind/internal/config"
	"github.com/avelhart/rewind/internal/output"
	"github.com/avelhart/rewind/internal/storage"
	"github.com/avelhart/rewind/internal/store"
)

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter

	// History context and per-store adapters
	Manager *appstate.Manager
	Tasks   *appstate.TaskActions
	Canvas  *appstate.CanvasActions
	Timer   *appstate.TimerActions

	Config config.RuntimeConfig
}

// Options configures the runtime context.
type Options struct {
	Config    config.RuntimeConfig
	Format    output.Format
	ColorMode output.ColorMode
}

// New creates a new runtime context.
func New(opts Options) (*Context, error) {
	db, err := storage.Open(storage.Options{
		Path:     opts.Config.Storage.Path,
		InMemory: opts.Config.Storage.InMemory,
	})
	if err != nil {
		return nil, err
	}

	tasks, err := store.NewTaskStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	canvas, err := store.NewCanvasStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	timer, err := store.NewTimerStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	mgr := appstate.New(opts.Config.MemoryConfig())
	taskActions, err := appstate.NewTaskActions(mgr, tasks)
	if err != nil {
		db.Close()
		return nil, err
	}
	canvasActions, err := appstate.NewCanvasActions(mgr, canvas)
	if err != nil {
		db.Close()
		return nil, err
	}
	timerActions, err := appstate.NewTimerActions(mgr, timer)
	if err != nil {
		db.Close()
		return nil, err
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		DB:        db,
		Formatter: formatter,
		Manager:   mgr,
		Tasks:     taskActions,
		Canvas:    canvasActions,
		Timer:     timerActions,
		Config:    opts.Config,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.Manager != nil {
		_ = c.Manager.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// IsJSON reports whether JSON output was requested.
func (c *Context) IsJSON() bool {
	return c.Formatter.IsJSON()
}
