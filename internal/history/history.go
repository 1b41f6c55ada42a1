// Package history owns the undo and redo stacks. It executes commands,
// records them as entries, and keeps capacity bounded through a pluggable
// compactor.
//
// Operations are strictly serialized: the stacks are mutex-guarded and a
// command fully settles before either stack changes. The lock is released
// around command execution so long-running store mutations never block
// readers of CanUndo/CanRedo.
package history

import (
	"context"
	"sync"

	"github.com/avelhart/rewind/internal/command"
	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Compactor bounds history growth. After every recorded execute the
// manager hands it the undo stack (oldest first) and adopts whatever
// stack it returns.
type Compactor interface {
	Enforce(undo []*Entry) []*Entry
}

// History manages the undo/redo stacks for one history context.
type History struct {
	mu        sync.Mutex
	undo      []*Entry
	redo      []*Entry
	compactor Compactor
}

// New creates an empty history. A nil compactor disables compaction.
func New(compactor Compactor) *History {
	return &History{compactor: compactor}
}

// Execute validates, runs and records a command.
//
// A failed precondition yields CommandRejected and records nothing. A
// failed execution yields ExecuteFailed and records nothing. On success
// the command is pushed as a new entry, the redo stack is cleared, and
// the compactor enforces capacity.
func (h *History) Execute(ctx context.Context, cmd command.Command) error {
	if !cmd.CanExecute() {
		return &rwerr.CommandRejected{Description: cmd.Description()}
	}
	if err := cmd.Execute(ctx); err != nil {
		return &rwerr.ExecuteFailed{Description: cmd.Description(), Cause: err}
	}

	entry := NewEntry(cmd)

	h.mu.Lock()
	h.undo = append(h.undo, entry)
	h.redo = nil
	if h.compactor != nil {
		h.undo = h.compactor.Enforce(h.undo)
	}
	h.mu.Unlock()
	return nil
}

// Record pushes an already-executed command without running it. Used for
// operations whose forward effect happened outside the manager.
func (h *History) Record(cmd command.Command) {
	entry := NewEntry(cmd)

	h.mu.Lock()
	h.undo = append(h.undo, entry)
	h.redo = nil
	if h.compactor != nil {
		h.undo = h.compactor.Enforce(h.undo)
	}
	h.mu.Unlock()
}

// Undo reverses the most recent entry. It reports false when the undo
// stack is empty. If the command's Undo fails, the entry is pushed back
// onto the undo stack unchanged and the error is returned.
func (h *History) Undo(ctx context.Context) (bool, error) {
	h.mu.Lock()
	if len(h.undo) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	entry := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.mu.Unlock()

	if err := entry.Command.Undo(ctx); err != nil {
		h.mu.Lock()
		h.undo = append(h.undo, entry)
		h.mu.Unlock()
		return false, &rwerr.UndoFailed{Description: entry.Description, Cause: err}
	}

	h.mu.Lock()
	h.redo = append(h.redo, entry)
	h.mu.Unlock()
	return true, nil
}

// Redo re-applies the most recently undone entry. It reports false when
// the redo stack is empty. If re-execution fails, the entry is pushed
// back onto the redo stack unchanged and the error is returned.
func (h *History) Redo(ctx context.Context) (bool, error) {
	h.mu.Lock()
	if len(h.redo) == 0 {
		h.mu.Unlock()
		return false, nil
	}
	entry := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.mu.Unlock()

	if err := entry.Command.Execute(ctx); err != nil {
		h.mu.Lock()
		h.redo = append(h.redo, entry)
		h.mu.Unlock()
		return false, &rwerr.RedoFailed{Description: entry.Description, Cause: err}
	}

	h.mu.Lock()
	h.undo = append(h.undo, entry)
	h.mu.Unlock()
	return true, nil
}

// CanUndo reports whether an undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether a redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// UndoCount returns the number of entries on the undo stack.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// RedoCount returns the number of entries on the redo stack.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

// Entries returns a read-only view of the undo stack, oldest first.
func (h *History) Entries() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Info, len(h.undo))
	for i, e := range h.undo {
		out[i] = e.info()
	}
	return out
}

// PeekUndo returns the entry the next Undo would reverse.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undo) == 0 {
		return Info{}, false
	}
	return h.undo[len(h.undo)-1].info(), true
}

// PeekRedo returns the entry the next Redo would re-apply.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redo) == 0 {
		return Info{}, false
	}
	return h.redo[len(h.redo)-1].info(), true
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = nil
	h.redo = nil
}
