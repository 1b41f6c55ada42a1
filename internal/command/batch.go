package command

import (
	"context"
	"fmt"

	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Batch groups several commands into one atomic history unit.
//
// CanExecute holds only when every sub-command's precondition holds, so a
// batch is rejected before any sub-command has run. If a sub-command fails
// mid-execute, the already-executed prefix is undone before the error is
// returned, preserving the at-most-one-commit guarantee.
type Batch struct {
	name string
	cmds []Command
}

// NewBatch builds a batch command over the given sub-commands.
func NewBatch(name string, cmds ...Command) *Batch {
	return &Batch{name: name, cmds: cmds}
}

// Add appends a sub-command. Only valid before the batch executes.
func (b *Batch) Add(cmd Command) {
	b.cmds = append(b.cmds, cmd)
}

// Len returns the number of sub-commands.
func (b *Batch) Len() int { return len(b.cmds) }

func (b *Batch) CanExecute() bool {
	if len(b.cmds) == 0 {
		return false
	}
	for _, cmd := range b.cmds {
		if !cmd.CanExecute() {
			return false
		}
	}
	return true
}

func (b *Batch) Execute(ctx context.Context) error {
	if len(b.cmds) == 0 {
		return rwerr.ErrEmptyBatch
	}
	for i, cmd := range b.cmds {
		if err := cmd.Execute(ctx); err != nil {
			// Roll back the executed prefix in reverse order.
			for j := i - 1; j >= 0; j-- {
				_ = b.cmds[j].Undo(ctx)
			}
			return fmt.Errorf("batch %q step %d: %w", b.name, i, err)
		}
	}
	return nil
}

func (b *Batch) Undo(ctx context.Context) error {
	for i := len(b.cmds) - 1; i >= 0; i-- {
		if err := b.cmds[i].Undo(ctx); err != nil {
			return fmt.Errorf("undo batch %q step %d: %w", b.name, i, err)
		}
	}
	return nil
}

func (b *Batch) Description() string {
	if b.name != "" {
		return b.name
	}
	if len(b.cmds) == 1 {
		return b.cmds[0].Description()
	}
	return fmt.Sprintf("%d operations", len(b.cmds))
}

func (b *Batch) IsBatch() bool { return true }

func (b *Batch) Payload() any {
	payloads := make([]any, 0, len(b.cmds))
	for _, cmd := range b.cmds {
		if p, ok := cmd.(Payloader); ok {
			payloads = append(payloads, p.Payload())
		}
	}
	return payloads
}

// DeltaSegments concatenates sub-command segments in execution order.
// A batch is delta-expressible only if every sub-command is.
func (b *Batch) DeltaSegments() []Segment {
	var out []Segment
	for _, cmd := range b.cmds {
		dp, ok := cmd.(DeltaProvider)
		if !ok {
			return nil
		}
		segs := dp.DeltaSegments()
		if segs == nil {
			return nil
		}
		out = append(out, segs...)
	}
	return out
}
