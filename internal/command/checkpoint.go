package command

import (
	"context"
	"fmt"

	"github.com/avelhart/rewind/internal/delta"
	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Checkpoint captures a full snapshot of every registered store as one
// undoable save point. Execute records state and mutates nothing; Undo
// restores every store to the captured state. A checkpoint is typically
// taken right before a bulk edit performed with recording paused, so one
// undo rolls the whole edit back.
type Checkpoint struct {
	stores []SnapshotTarget
	desc   string

	captured map[string][]byte // store name -> snapshot, set by Execute
}

// NewCheckpoint builds a checkpoint over the given stores. Snapshots are
// taken at execute time, not here.
func NewCheckpoint(desc string, stores []SnapshotTarget) *Checkpoint {
	return &Checkpoint{stores: stores, desc: desc}
}

func (c *Checkpoint) CanExecute() bool {
	return len(c.stores) > 0
}

func (c *Checkpoint) Execute(ctx context.Context) error {
	captured := make(map[string][]byte, len(c.stores))
	for _, s := range c.stores {
		snap, err := s.Snapshot()
		if err != nil {
			return fmt.Errorf("checkpoint %s: %w", s.Name(), err)
		}
		captured[s.Name()] = snap
	}
	c.captured = captured
	return nil
}

func (c *Checkpoint) Undo(ctx context.Context) error {
	if c.captured == nil {
		return rwerr.New("checkpoint has not been executed")
	}
	// Restore in reverse registration order, mirroring capture order.
	for i := len(c.stores) - 1; i >= 0; i-- {
		s := c.stores[i]
		snap, ok := c.captured[s.Name()]
		if !ok {
			continue
		}
		if err := s.Restore(snap); err != nil {
			return fmt.Errorf("restore %s: %w", s.Name(), err)
		}
	}
	return nil
}

func (c *Checkpoint) Description() string {
	return CheckpointPrefix + c.desc
}

func (c *Checkpoint) IsBatch() bool { return true }

func (c *Checkpoint) Payload() any {
	sizes := make(map[string]any, len(c.captured))
	for name, snap := range c.captured {
		sizes[name] = string(snap)
	}
	return sizes
}

// Compacted is the synthetic checkpoint the Memory Manager builds when it
// compresses a run of history entries. Its payload is the concatenation
// of the compressed commands' delta chains; undoing it applies the
// inverted chain and lands on exactly the state undoing every original
// entry would have produced.
type Compacted struct {
	resolver Resolver
	segments []Segment
	count    int // number of original actions represented
}

// NewCompacted builds a compacted checkpoint. The segments must be the
// forward delta chains of the compressed commands, in execution order.
func NewCompacted(resolver Resolver, segments []Segment, count int) *Compacted {
	return &Compacted{resolver: resolver, segments: segments, count: count}
}

func (c *Compacted) CanExecute() bool {
	for _, seg := range c.segments {
		if _, ok := c.resolver.Store(seg.Store); !ok {
			return false
		}
	}
	return true
}

// Execute re-applies the forward delta chain (the redo path; the original
// commands had already run when this checkpoint was constructed).
func (c *Compacted) Execute(ctx context.Context) error {
	for _, seg := range c.segments {
		if err := c.apply(seg.Store, seg.Deltas); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compacted) Undo(ctx context.Context) error {
	for i := len(c.segments) - 1; i >= 0; i-- {
		seg := c.segments[i]
		if err := c.apply(seg.Store, delta.Invert(seg.Deltas)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compacted) apply(store string, ds []delta.Delta) error {
	s, ok := c.resolver.Store(store)
	if !ok {
		return fmt.Errorf("%w: %s", rwerr.ErrStoreNotFound, store)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", store, err)
	}
	next, err := delta.Apply(snap, ds)
	if err != nil {
		return fmt.Errorf("apply deltas to %s: %w", store, err)
	}
	if err := s.Restore(next); err != nil {
		return fmt.Errorf("restore %s: %w", store, err)
	}
	return nil
}

func (c *Compacted) Description() string {
	return fmt.Sprintf("Compressed checkpoint (%d actions)", c.count)
}

func (c *Compacted) Category() string { return CategorySystem }

func (c *Compacted) IsBatch() bool { return true }

func (c *Compacted) Payload() any { return c.segments }

func (c *Compacted) DeltaSegments() []Segment { return c.segments }

// Count returns the number of original actions this checkpoint represents.
func (c *Compacted) Count() int { return c.count }
