package command

import (
	"context"
	"fmt"
	"sort"

	"github.com/avelhart/rewind/internal/delta"
	rwerr "github.com/avelhart/rewind/internal/errors"
)

// Create adds a new entity to a store. Undo removes it by the captured id.
type Create struct {
	target Target
	id     string
	entity map[string]any
	label  string
}

// NewCreate builds a create command. The entity map is copied; the caller
// keeps ownership of its argument.
func NewCreate(target Target, id, label string, entity map[string]any) *Create {
	return &Create{
		target: target,
		id:     id,
		entity: cloneFields(entity),
		label:  label,
	}
}

func (c *Create) CanExecute() bool {
	_, exists := c.target.Lookup(c.id)
	return !exists
}

func (c *Create) Execute(ctx context.Context) error {
	return c.target.Insert(c.id, cloneFields(c.entity))
}

func (c *Create) Undo(ctx context.Context) error {
	_, err := c.target.Remove(c.id)
	return err
}

func (c *Create) Description() string {
	return fmt.Sprintf("Create %s %q", singular(c.target.Name()), c.label)
}

func (c *Create) Category() string { return categoryFor(c.target.Name()) }

func (c *Create) Payload() any { return c.entity }

func (c *Create) DeltaSegments() []Segment {
	return []Segment{{
		Store: c.target.Name(),
		Deltas: []delta.Delta{{
			Path:  []string{c.id},
			Op:    delta.OpAdd,
			Value: cloneFields(c.entity),
		}},
	}}
}

// ID returns the id the created entity was inserted under.
func (c *Create) ID() string { return c.id }

// Update merges new field values into an entity. Undo re-applies the full
// previous entity captured at execute time.
type Update struct {
	target Target
	id     string
	fields map[string]any
	label  string

	prev map[string]any // captured by Execute
}

// NewUpdate builds an update command for the given fields.
func NewUpdate(target Target, id, label string, fields map[string]any) *Update {
	return &Update{
		target: target,
		id:     id,
		fields: cloneFields(fields),
		label:  label,
	}
}

func (c *Update) CanExecute() bool {
	_, exists := c.target.Lookup(c.id)
	return exists
}

func (c *Update) Execute(ctx context.Context) error {
	prev, err := c.target.Update(c.id, cloneFields(c.fields))
	if err != nil {
		return err
	}
	c.prev = prev
	return nil
}

func (c *Update) Undo(ctx context.Context) error {
	if c.prev == nil {
		return rwerr.New("update has not been executed")
	}
	return c.target.Replace(c.id, cloneFields(c.prev))
}

func (c *Update) Description() string {
	return fmt.Sprintf("Update %s %q", singular(c.target.Name()), c.label)
}

func (c *Update) Category() string { return categoryFor(c.target.Name()) }

func (c *Update) Payload() any {
	return map[string]any{"fields": c.fields, "prev": c.prev}
}

func (c *Update) DeltaSegments() []Segment {
	keys := make([]string, 0, len(c.fields))
	for k := range c.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ds := make([]delta.Delta, 0, len(keys))
	for _, k := range keys {
		v := c.fields[k]
		old, had := c.prev[k]
		if had {
			ds = append(ds, delta.Delta{
				Path:  []string{c.id, k},
				Op:    delta.OpReplace,
				Value: cloneValue(v),
				Old:   cloneValue(old),
			})
		} else {
			ds = append(ds, delta.Delta{
				Path:  []string{c.id, k},
				Op:    delta.OpAdd,
				Value: cloneValue(v),
			})
		}
	}
	return []Segment{{Store: c.target.Name(), Deltas: ds}}
}

// Delete removes an entity. Undo re-creates it from the full snapshot
// captured at execute time.
type Delete struct {
	target Target
	id     string
	label  string

	snapshot map[string]any // captured by Execute
}

// NewDelete builds a delete command.
func NewDelete(target Target, id, label string) *Delete {
	return &Delete{target: target, id: id, label: label}
}

func (c *Delete) CanExecute() bool {
	_, exists := c.target.Lookup(c.id)
	return exists
}

func (c *Delete) Execute(ctx context.Context) error {
	snap, err := c.target.Remove(c.id)
	if err != nil {
		return err
	}
	c.snapshot = snap
	return nil
}

func (c *Delete) Undo(ctx context.Context) error {
	if c.snapshot == nil {
		return rwerr.New("delete has not been executed")
	}
	return c.target.Insert(c.id, cloneFields(c.snapshot))
}

func (c *Delete) Description() string {
	return fmt.Sprintf("Delete %s %q", singular(c.target.Name()), c.label)
}

func (c *Delete) Category() string { return categoryFor(c.target.Name()) }

func (c *Delete) Payload() any { return c.snapshot }

func (c *Delete) DeltaSegments() []Segment {
	return []Segment{{
		Store: c.target.Name(),
		Deltas: []delta.Delta{{
			Path: []string{c.id},
			Op:   delta.OpRemove,
			Old:  cloneFields(c.snapshot),
		}},
	}}
}

// Move repositions an entity on a store that supports placement. Undo
// restores the previous position captured at execute time.
type Move struct {
	target Mover
	id     string
	label  string
	x, y   float64

	prevX, prevY float64
	executed     bool
}

// NewMove builds a move command.
func NewMove(target Mover, id, label string, x, y float64) *Move {
	return &Move{target: target, id: id, label: label, x: x, y: y}
}

func (c *Move) CanExecute() bool {
	_, exists := c.target.Lookup(c.id)
	return exists
}

func (c *Move) Execute(ctx context.Context) error {
	px, py, err := c.target.Place(c.id, c.x, c.y)
	if err != nil {
		return err
	}
	c.prevX, c.prevY = px, py
	c.executed = true
	return nil
}

func (c *Move) Undo(ctx context.Context) error {
	if !c.executed {
		return rwerr.New("move has not been executed")
	}
	_, _, err := c.target.Place(c.id, c.prevX, c.prevY)
	return err
}

func (c *Move) Description() string {
	return fmt.Sprintf("Move %s %q", singular(c.target.Name()), c.label)
}

func (c *Move) Category() string { return categoryFor(c.target.Name()) }

func (c *Move) Payload() any {
	return map[string]any{"x": c.x, "y": c.y, "prev_x": c.prevX, "prev_y": c.prevY}
}

func (c *Move) DeltaSegments() []Segment {
	return []Segment{{
		Store: c.target.Name(),
		Deltas: []delta.Delta{
			{Path: []string{c.id, "x"}, Op: delta.OpReplace, Value: c.x, Old: c.prevX},
			{Path: []string{c.id, "y"}, Op: delta.OpReplace, Value: c.y, Old: c.prevY},
		},
	}}
}

// singular maps a store name to its display noun ("tasks" -> "task").
func singular(name string) string {
	switch name {
	case "canvas":
		return "node"
	case "timer":
		return "session"
	}
	if len(name) > 1 && name[len(name)-1] == 's' {
		return name[:len(name)-1]
	}
	return name
}
