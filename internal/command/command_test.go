package command

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelhart/rewind/internal/delta"
	rwerr "github.com/avelhart/rewind/internal/errors"
)

// fakeStore is an in-memory Target/Mover/SnapshotTarget for command tests.
type fakeStore struct {
	name     string
	entities map[string]map[string]any
}

func newFakeStore(name string) *fakeStore {
	return &fakeStore{name: name, entities: make(map[string]map[string]any)}
}

func (s *fakeStore) Name() string { return s.name }

func (s *fakeStore) Insert(id string, entity map[string]any) error {
	if _, exists := s.entities[id]; exists {
		return rwerr.ErrEntityExists
	}
	s.entities[id] = cloneFields(entity)
	return nil
}

func (s *fakeStore) Lookup(id string) (map[string]any, bool) {
	e, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	return cloneFields(e), true
}

func (s *fakeStore) Update(id string, fields map[string]any) (map[string]any, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, rwerr.ErrEntityNotFound
	}
	prev := cloneFields(e)
	for k, v := range fields {
		e[k] = v
	}
	return prev, nil
}

func (s *fakeStore) Replace(id string, entity map[string]any) error {
	s.entities[id] = cloneFields(entity)
	return nil
}

func (s *fakeStore) Remove(id string) (map[string]any, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, rwerr.ErrEntityNotFound
	}
	delete(s.entities, id)
	return e, nil
}

func (s *fakeStore) Place(id string, x, y float64) (float64, float64, error) {
	e, ok := s.entities[id]
	if !ok {
		return 0, 0, rwerr.ErrEntityNotFound
	}
	prevX, _ := e["x"].(float64)
	prevY, _ := e["y"].(float64)
	e["x"] = x
	e["y"] = y
	return prevX, prevY, nil
}

func (s *fakeStore) Snapshot() ([]byte, error) {
	return json.Marshal(s.entities)
}

func (s *fakeStore) Restore(data []byte) error {
	entities := make(map[string]map[string]any)
	if err := json.Unmarshal(data, &entities); err != nil {
		return err
	}
	s.entities = entities
	return nil
}

// fakeResolver resolves stores by name for compacted checkpoints.
type fakeResolver map[string]SnapshotTarget

func (r fakeResolver) Store(name string) (SnapshotTarget, bool) {
	s, ok := r[name]
	return s, ok
}

// failing is a command whose execute or undo can be forced to fail.
type failing struct {
	failExecute bool
	failUndo    bool
	executed    int
	undone      int
}

func (f *failing) CanExecute() bool { return true }

func (f *failing) Execute(ctx context.Context) error {
	if f.failExecute {
		return fmt.Errorf("execute refused")
	}
	f.executed++
	return nil
}

func (f *failing) Undo(ctx context.Context) error {
	if f.failUndo {
		return fmt.Errorf("undo refused")
	}
	f.undone++
	return nil
}

func (f *failing) Description() string { return "failing" }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("execute inserts and undo removes", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewCreate(s, "t1", "Buy milk", map[string]any{"title": "Buy milk"})

		assert.True(t, cmd.CanExecute())
		require.NoError(t, cmd.Execute(ctx))

		got, ok := s.Lookup("t1")
		require.True(t, ok)
		assert.Equal(t, "Buy milk", got["title"])

		require.NoError(t, cmd.Undo(ctx))
		_, ok = s.Lookup("t1")
		assert.False(t, ok)
	})

	t.Run("precondition fails when the id already exists", func(t *testing.T) {
		s := newFakeStore("tasks")
		require.NoError(t, s.Insert("t1", map[string]any{"title": "there"}))

		cmd := NewCreate(s, "t1", "dup", nil)
		assert.False(t, cmd.CanExecute())
	})

	t.Run("caller mutations after construction do not leak in", func(t *testing.T) {
		s := newFakeStore("tasks")
		entity := map[string]any{"title": "original"}
		cmd := NewCreate(s, "t1", "original", entity)
		entity["title"] = "mutated"

		require.NoError(t, cmd.Execute(ctx))
		got, _ := s.Lookup("t1")
		assert.Equal(t, "original", got["title"])
	})

	t.Run("delta segment is a single add at the id", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewCreate(s, "t1", "x", map[string]any{"title": "x"})
		segs := cmd.DeltaSegments()
		require.Len(t, segs, 1)
		assert.Equal(t, "tasks", segs[0].Store)
		require.Len(t, segs[0].Deltas, 1)
		assert.Equal(t, delta.OpAdd, segs[0].Deltas[0].Op)
		assert.Equal(t, []string{"t1"}, segs[0].Deltas[0].Path)
	})

	t.Run("description names the singular store and label", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewCreate(s, "t1", "Buy milk", nil)
		assert.Equal(t, `Create task "Buy milk"`, cmd.Description())
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("undo restores the full previous entity", func(t *testing.T) {
		s := newFakeStore("tasks")
		require.NoError(t, s.Insert("t1", map[string]any{"title": "old", "status": "planned"}))

		cmd := NewUpdate(s, "t1", "old", map[string]any{"title": "new"})
		require.NoError(t, cmd.Execute(ctx))

		got, _ := s.Lookup("t1")
		assert.Equal(t, "new", got["title"])
		assert.Equal(t, "planned", got["status"])

		require.NoError(t, cmd.Undo(ctx))
		got, _ = s.Lookup("t1")
		assert.Equal(t, "old", got["title"])
		assert.Equal(t, "planned", got["status"])
	})

	t.Run("undo before execute is an error", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewUpdate(s, "t1", "x", map[string]any{"title": "x"})
		assert.Error(t, cmd.Undo(ctx))
	})

	t.Run("precondition fails for a missing entity", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewUpdate(s, "missing", "x", nil)
		assert.False(t, cmd.CanExecute())
	})

	t.Run("delta segments carry old values in sorted field order", func(t *testing.T) {
		s := newFakeStore("tasks")
		require.NoError(t, s.Insert("t1", map[string]any{"title": "old"}))

		cmd := NewUpdate(s, "t1", "old", map[string]any{"title": "new", "extra": true})
		require.NoError(t, cmd.Execute(ctx))

		segs := cmd.DeltaSegments()
		require.Len(t, segs, 1)
		require.Len(t, segs[0].Deltas, 2)

		assert.Equal(t, []string{"t1", "extra"}, segs[0].Deltas[0].Path)
		assert.Equal(t, delta.OpAdd, segs[0].Deltas[0].Op)

		assert.Equal(t, []string{"t1", "title"}, segs[0].Deltas[1].Path)
		assert.Equal(t, delta.OpReplace, segs[0].Deltas[1].Op)
		assert.Equal(t, "old", segs[0].Deltas[1].Old)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("undo re-creates the captured snapshot", func(t *testing.T) {
		s := newFakeStore("tasks")
		require.NoError(t, s.Insert("t1", map[string]any{"title": "keeper", "tags": []any{"a"}}))

		cmd := NewDelete(s, "t1", "keeper")
		require.NoError(t, cmd.Execute(ctx))
		_, ok := s.Lookup("t1")
		require.False(t, ok)

		require.NoError(t, cmd.Undo(ctx))
		got, ok := s.Lookup("t1")
		require.True(t, ok)
		assert.Equal(t, "keeper", got["title"])
		assert.Equal(t, []any{"a"}, got["tags"])
	})

	t.Run("undo before execute is an error", func(t *testing.T) {
		s := newFakeStore("tasks")
		cmd := NewDelete(s, "t1", "x")
		assert.Error(t, cmd.Undo(ctx))
	})
}

func TestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("undo restores the previous position", func(t *testing.T) {
		s := newFakeStore("canvas")
		require.NoError(t, s.Insert("n1", map[string]any{"x": 10.0, "y": 20.0}))

		cmd := NewMove(s, "n1", "node", 100, 200)
		require.NoError(t, cmd.Execute(ctx))

		got, _ := s.Lookup("n1")
		assert.Equal(t, 100.0, got["x"])
		assert.Equal(t, 200.0, got["y"])

		require.NoError(t, cmd.Undo(ctx))
		got, _ = s.Lookup("n1")
		assert.Equal(t, 10.0, got["x"])
		assert.Equal(t, 20.0, got["y"])
	})

	t.Run("category follows the store name", func(t *testing.T) {
		s := newFakeStore("canvas")
		cmd := NewMove(s, "n1", "node", 1, 2)
		assert.Equal(t, CategoryCanvas, cmd.Category())
	})
}

func TestBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty batch cannot execute", func(t *testing.T) {
		b := NewBatch("nothing")
		assert.False(t, b.CanExecute())
		assert.ErrorIs(t, b.Execute(ctx), rwerr.ErrEmptyBatch)
	})

	t.Run("precondition covers every sub-command", func(t *testing.T) {
		s := newFakeStore("tasks")
		require.NoError(t, s.Insert("dup", nil))

		b := NewBatch("mixed",
			NewCreate(s, "fresh", "fresh", nil),
			NewCreate(s, "dup", "dup", nil),
		)
		assert.False(t, b.CanExecute())
		_, ok := s.Lookup("fresh")
		assert.False(t, ok, "rejected batch must not run any sub-command")
	})

	t.Run("mid-execute failure rolls back the executed prefix", func(t *testing.T) {
		s := newFakeStore("tasks")
		boom := &failing{failExecute: true}
		b := NewBatch("partial",
			NewCreate(s, "a", "a", nil),
			NewCreate(s, "b", "b", nil),
			boom,
		)

		require.Error(t, b.Execute(ctx))
		_, ok := s.Lookup("a")
		assert.False(t, ok)
		_, ok = s.Lookup("b")
		assert.False(t, ok)
	})

	t.Run("undo reverses sub-commands in reverse order", func(t *testing.T) {
		s := newFakeStore("tasks")
		b := NewBatch("pair",
			NewCreate(s, "a", "a", map[string]any{"n": 1.0}),
			NewUpdate(s, "a", "a", map[string]any{"n": 2.0}),
		)
		require.True(t, b.CanExecute())
		require.NoError(t, b.Execute(ctx))

		got, _ := s.Lookup("a")
		assert.Equal(t, 2.0, got["n"])

		require.NoError(t, b.Undo(ctx))
		_, ok := s.Lookup("a")
		assert.False(t, ok)
	})

	t.Run("delta segments concatenate in execution order", func(t *testing.T) {
		s := newFakeStore("tasks")
		b := NewBatch("pair",
			NewCreate(s, "a", "a", map[string]any{"n": 1.0}),
			NewUpdate(s, "a", "a", map[string]any{"n": 2.0}),
		)
		require.NoError(t, b.Execute(ctx))

		segs := b.DeltaSegments()
		require.Len(t, segs, 2)
		assert.Equal(t, delta.OpAdd, segs[0].Deltas[0].Op)
		assert.Equal(t, delta.OpReplace, segs[1].Deltas[0].Op)
	})

	t.Run("a non-delta sub-command makes the batch non-expressible", func(t *testing.T) {
		b := NewBatch("opaque", &failing{})
		require.NoError(t, b.Execute(ctx))
		assert.Nil(t, b.DeltaSegments())
	})

	t.Run("description falls back to the operation count", func(t *testing.T) {
		b := NewBatch("", &failing{}, &failing{})
		assert.Equal(t, "2 operations", b.Description())
	})
}

func TestCheckpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("undo restores every store to the captured state", func(t *testing.T) {
		tasks := newFakeStore("tasks")
		canvas := newFakeStore("canvas")
		require.NoError(t, tasks.Insert("t1", map[string]any{"title": "before"}))
		require.NoError(t, canvas.Insert("n1", map[string]any{"x": 1.0}))

		ckpt := NewCheckpoint("before edit", []SnapshotTarget{tasks, canvas})
		require.NoError(t, ckpt.Execute(ctx))

		_, err := tasks.Update("t1", map[string]any{"title": "after"})
		require.NoError(t, err)
		_, err = canvas.Remove("n1")
		require.NoError(t, err)
		require.NoError(t, tasks.Insert("t2", map[string]any{"title": "extra"}))

		require.NoError(t, ckpt.Undo(ctx))

		got, ok := tasks.Lookup("t1")
		require.True(t, ok)
		assert.Equal(t, "before", got["title"])
		_, ok = tasks.Lookup("t2")
		assert.False(t, ok)
		_, ok = canvas.Lookup("n1")
		assert.True(t, ok)
	})

	t.Run("description carries the checkpoint marker", func(t *testing.T) {
		ckpt := NewCheckpoint("save point", nil)
		assert.Equal(t, "Checkpoint: save point", ckpt.Description())
	})

	t.Run("undo before execute is an error", func(t *testing.T) {
		ckpt := NewCheckpoint("x", []SnapshotTarget{newFakeStore("tasks")})
		assert.Error(t, ckpt.Undo(ctx))
	})
}

func TestCompacted(t *testing.T) {
	ctx := context.Background()

	// buildChain executes a create and an update against the store and
	// returns their concatenated forward delta chain.
	buildChain := func(t *testing.T, s *fakeStore) []Segment {
		t.Helper()
		create := NewCreate(s, "t1", "x", map[string]any{"title": "v1"})
		require.NoError(t, create.Execute(ctx))
		update := NewUpdate(s, "t1", "x", map[string]any{"title": "v2"})
		require.NoError(t, update.Execute(ctx))
		return append(create.DeltaSegments(), update.DeltaSegments()...)
	}

	t.Run("undo rewinds the store past every represented action", func(t *testing.T) {
		s := newFakeStore("tasks")
		segs := buildChain(t, s)
		ckpt := NewCompacted(fakeResolver{"tasks": s}, segs, 2)

		require.NoError(t, ckpt.Undo(ctx))
		_, ok := s.Lookup("t1")
		assert.False(t, ok, "undoing the chain must remove the created entity")
	})

	t.Run("execute re-applies the forward chain", func(t *testing.T) {
		s := newFakeStore("tasks")
		segs := buildChain(t, s)
		ckpt := NewCompacted(fakeResolver{"tasks": s}, segs, 2)

		require.NoError(t, ckpt.Undo(ctx))
		require.NoError(t, ckpt.Execute(ctx))

		got, ok := s.Lookup("t1")
		require.True(t, ok)
		assert.Equal(t, "v2", got["title"])
	})

	t.Run("cannot execute when a store is unregistered", func(t *testing.T) {
		ckpt := NewCompacted(fakeResolver{}, []Segment{{Store: "ghost"}}, 1)
		assert.False(t, ckpt.CanExecute())
	})

	t.Run("description counts represented actions", func(t *testing.T) {
		ckpt := NewCompacted(fakeResolver{}, nil, 10)
		assert.Equal(t, "Compressed checkpoint (10 actions)", ckpt.Description())
		assert.Equal(t, CategorySystem, ckpt.Category())
	})
}

func TestSingular(t *testing.T) {
	assert.Equal(t, "task", singular("tasks"))
	assert.Equal(t, "node", singular("canvas"))
	assert.Equal(t, "session", singular("timer"))
}
