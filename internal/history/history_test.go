package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelhart/rewind/internal/command"
	rwerr "github.com/avelhart/rewind/internal/errors"
)

// stubCmd is a scriptable command for stack tests.
type stubCmd struct {
	desc        string
	canExecute  bool
	failExecute bool
	failUndo    bool

	executed int
	undone   int
}

func newStubCmd(desc string) *stubCmd {
	return &stubCmd{desc: desc, canExecute: true}
}

func (c *stubCmd) CanExecute() bool { return c.canExecute }

func (c *stubCmd) Execute(ctx context.Context) error {
	if c.failExecute {
		return fmt.Errorf("execute refused")
	}
	c.executed++
	return nil
}

func (c *stubCmd) Undo(ctx context.Context) error {
	if c.failUndo {
		return fmt.Errorf("undo refused")
	}
	c.undone++
	return nil
}

func (c *stubCmd) Description() string { return c.desc }

// countingCompactor records invocations and passes the stack through.
type countingCompactor struct {
	calls int
}

func (c *countingCompactor) Enforce(undo []*Entry) []*Entry {
	c.calls++
	return undo
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("success pushes the command and clears redo", func(t *testing.T) {
		h := New(nil)
		first := newStubCmd("first")
		require.NoError(t, h.Execute(ctx, first))
		ok, err := h.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, h.CanRedo())

		require.NoError(t, h.Execute(ctx, newStubCmd("second")))
		assert.False(t, h.CanRedo(), "a new action invalidates the redo stack")
		assert.Equal(t, 1, h.UndoCount())
	})

	t.Run("rejected command records nothing", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("rejected")
		cmd.canExecute = false

		err := h.Execute(ctx, cmd)
		assert.True(t, rwerr.IsRejection(err))
		assert.Equal(t, 0, cmd.executed)
		assert.Equal(t, 0, h.UndoCount())
	})

	t.Run("failed execution records nothing", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("boom")
		cmd.failExecute = true

		err := h.Execute(ctx, cmd)
		var execErr *rwerr.ExecuteFailed
		require.ErrorAs(t, err, &execErr)
		assert.Equal(t, 0, h.UndoCount())
	})

	t.Run("compactor runs after every recorded execute", func(t *testing.T) {
		compactor := &countingCompactor{}
		h := New(compactor)
		require.NoError(t, h.Execute(ctx, newStubCmd("a")))
		require.NoError(t, h.Execute(ctx, newStubCmd("b")))
		assert.Equal(t, 2, compactor.calls)
	})
}

func TestUndo(t *testing.T) {
	ctx := context.Background()

	t.Run("empty stack reports false without error", func(t *testing.T) {
		h := New(nil)
		ok, err := h.Undo(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("undo moves the entry to the redo stack", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("a")
		require.NoError(t, h.Execute(ctx, cmd))

		ok, err := h.Undo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 1, cmd.undone)
		assert.Equal(t, 0, h.UndoCount())
		assert.Equal(t, 1, h.RedoCount())
	})

	t.Run("failed undo re-pushes the entry unchanged", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("sticky")
		cmd.failUndo = true
		require.NoError(t, h.Execute(ctx, cmd))

		ok, err := h.Undo(ctx)
		assert.False(t, ok)
		var undoErr *rwerr.UndoFailed
		require.ErrorAs(t, err, &undoErr)
		assert.Equal(t, "sticky", undoErr.Description)

		assert.Equal(t, 1, h.UndoCount(), "entry must stay on the undo stack")
		assert.Equal(t, 0, h.RedoCount())
	})

	t.Run("undo proceeds newest first", func(t *testing.T) {
		h := New(nil)
		require.NoError(t, h.Execute(ctx, newStubCmd("first")))
		require.NoError(t, h.Execute(ctx, newStubCmd("second")))

		info, ok := h.PeekUndo()
		require.True(t, ok)
		assert.Equal(t, "second", info.Description)

		_, err := h.Undo(ctx)
		require.NoError(t, err)
		info, ok = h.PeekUndo()
		require.True(t, ok)
		assert.Equal(t, "first", info.Description)
	})
}

func TestRedo(t *testing.T) {
	ctx := context.Background()

	t.Run("empty stack reports false without error", func(t *testing.T) {
		h := New(nil)
		ok, err := h.Redo(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("redo re-executes and restores the undo stack", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("a")
		require.NoError(t, h.Execute(ctx, cmd))
		_, err := h.Undo(ctx)
		require.NoError(t, err)

		ok, err := h.Redo(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 2, cmd.executed)
		assert.Equal(t, 1, h.UndoCount())
		assert.Equal(t, 0, h.RedoCount())
	})

	t.Run("failed redo re-pushes the entry unchanged", func(t *testing.T) {
		h := New(nil)
		cmd := newStubCmd("sticky")
		require.NoError(t, h.Execute(ctx, cmd))
		_, err := h.Undo(ctx)
		require.NoError(t, err)

		cmd.failExecute = true
		ok, err := h.Redo(ctx)
		assert.False(t, ok)
		var redoErr *rwerr.RedoFailed
		require.ErrorAs(t, err, &redoErr)
		assert.Equal(t, 1, h.RedoCount(), "entry must stay on the redo stack")
	})

	t.Run("full undo then full redo restores order", func(t *testing.T) {
		h := New(nil)
		for _, d := range []string{"a", "b", "c"} {
			require.NoError(t, h.Execute(ctx, newStubCmd(d)))
		}
		for i := 0; i < 3; i++ {
			ok, err := h.Undo(ctx)
			require.NoError(t, err)
			require.True(t, ok)
		}
		for i := 0; i < 3; i++ {
			ok, err := h.Redo(ctx)
			require.NoError(t, err)
			require.True(t, ok)
		}

		entries := h.Entries()
		require.Len(t, entries, 3)
		assert.Equal(t, "a", entries[0].Description)
		assert.Equal(t, "c", entries[2].Description)
	})
}

func TestEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("entries carry metadata derived from the command", func(t *testing.T) {
		h := New(nil)
		require.NoError(t, h.Execute(ctx, newStubCmd("plain")))

		entries := h.Entries()
		require.Len(t, entries, 1)
		assert.NotEmpty(t, entries[0].ID)
		assert.Equal(t, command.CategoryUser, entries[0].Category)
		assert.False(t, entries[0].Batch)
		assert.False(t, entries[0].Timestamp.IsZero())
	})

	t.Run("clear drops both stacks", func(t *testing.T) {
		h := New(nil)
		require.NoError(t, h.Execute(ctx, newStubCmd("a")))
		_, err := h.Undo(ctx)
		require.NoError(t, err)
		require.NoError(t, h.Execute(ctx, newStubCmd("b")))

		h.Clear()
		assert.False(t, h.CanUndo())
		assert.False(t, h.CanRedo())
	})
}
