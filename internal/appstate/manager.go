// Package appstate unifies independent stores under one undo/redo
// timeline. The Manager is the process-wide history context: it owns the
// History Manager, the store registry and the recording switch, and is
// injected into consumers rather than imported as ambient global state.
package appstate

import (
	"context"
	"sync"

	"github.com/avelhart/rewind/internal/command"
	rwerr "github.com/avelhart/rewind/internal/errors"
	"github.com/avelhart/rewind/internal/history"
	"github.com/avelhart/rewind/internal/logging"
	"github.com/avelhart/rewind/internal/memory"
)

// Store is the surface a participating store must expose to the manager.
type Store = command.SnapshotTarget

// Manager routes store mutations through the history engine.
type Manager struct {
	history *history.History

	mu     sync.Mutex
	stores map[string]Store
	order  []string
	paused int
	closed bool
}

// New creates a history context with the given capacity configuration.
func New(cfg memory.Config) *Manager {
	m := &Manager{stores: make(map[string]Store)}
	m.history = history.New(memory.New(cfg, m))
	return m
}

// Close disposes the context. Further operations fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.history.Clear()
	return nil
}

// RegisterStore adds a store to the unified timeline. Registration order
// determines checkpoint capture order.
func (m *Manager) RegisterStore(s Store) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return rwerr.ErrClosed
	}
	name := s.Name()
	if _, dup := m.stores[name]; dup {
		return rwerr.NewUserErrorWithField("store", name, "store already registered", "register each store once")
	}
	m.stores[name] = s
	m.order = append(m.order, name)
	logging.Debug("store registered", "store", name)
	return nil
}

// Store implements command.Resolver for compacted checkpoints.
func (m *Manager) Store(name string) (command.SnapshotTarget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[name]
	return s, ok
}

// Execute routes a command into the history. While recording is paused
// the command runs directly against the store and nothing is recorded.
func (m *Manager) Execute(ctx context.Context, cmd command.Command) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return rwerr.ErrClosed
	}
	paused := m.paused > 0
	m.mu.Unlock()

	if paused {
		return cmd.Execute(ctx)
	}
	return m.history.Execute(ctx, cmd)
}

// Undo reverses the most recent recorded action.
func (m *Manager) Undo(ctx context.Context) (bool, error) {
	if m.isClosed() {
		return false, rwerr.ErrClosed
	}
	return m.history.Undo(ctx)
}

// Redo re-applies the most recently undone action.
func (m *Manager) Redo(ctx context.Context) (bool, error) {
	if m.isClosed() {
		return false, rwerr.ErrClosed
	}
	return m.history.Redo(ctx)
}

// CanUndo reports whether an undo is available.
func (m *Manager) CanUndo() bool { return m.history.CanUndo() }

// CanRedo reports whether a redo is available.
func (m *Manager) CanRedo() bool { return m.history.CanRedo() }

// PauseRecording suspends history capture. Calls nest; recording resumes
// only after a matching number of ResumeRecording calls. Changes made
// while paused are not undoable; callers that need an undoable bulk edit
// should use a Batch command or take a checkpoint first.
func (m *Manager) PauseRecording() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused++
}

// ResumeRecording re-enables history capture.
func (m *Manager) ResumeRecording() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paused > 0 {
		m.paused--
	}
}

// Recording reports whether mutations are currently being recorded.
func (m *Manager) Recording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused == 0 && !m.closed
}

// CreateCheckpoint captures a snapshot of every registered store as one
// undoable save point. It records through the history even while
// recording is paused, which is the intended idiom for bulk edits:
// checkpoint, pause, mutate, resume.
func (m *Manager) CreateCheckpoint(ctx context.Context, description string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return rwerr.ErrClosed
	}
	stores := make([]command.SnapshotTarget, 0, len(m.order))
	for _, name := range m.order {
		stores = append(stores, m.stores[name])
	}
	m.mu.Unlock()

	return m.history.Execute(ctx, command.NewCheckpoint(description, stores))
}

// History returns the recorded entries, oldest first, for display.
func (m *Manager) History() []history.Info {
	return m.history.Entries()
}

// UndoStack exposes the underlying history manager for consumers that
// need peek/count access, such as the TUI.
func (m *Manager) UndoStack() *history.History {
	return m.history
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
