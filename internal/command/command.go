// Package command defines the reversible unit of work the history engine
// records, plus the standard variants: Create, Update, Delete, Move,
// Batch and Checkpoint.
//
// A command exclusively owns the data it needs to reverse itself. The
// "before" state is captured lazily inside Execute, never at construction,
// since construction may precede the state the command actually runs
// against. Execute and Undo are mutually inverse over observable state.
package command

import (
	"context"

	"github.com/avelhart/rewind/internal/delta"
)

// Entry categories used for history metadata.
const (
	CategoryUser   = "user"
	CategorySystem = "system"
	CategoryCanvas = "canvas"
	CategoryTimer  = "timer"
)

// CheckpointPrefix marks the description of an explicit checkpoint entry.
// Compaction never removes entries carrying a checkpoint marker.
const CheckpointPrefix = "Checkpoint: "

// Command is a self-contained reversible unit of work.
type Command interface {
	// CanExecute is a pure precondition check evaluated before Execute.
	// It must not mutate anything.
	CanExecute() bool

	// Execute performs the forward mutation and captures whatever prior
	// state Undo needs to reverse it exactly.
	Execute(ctx context.Context) error

	// Undo reverses a previously executed command.
	Undo(ctx context.Context) error

	// Description returns a human-readable summary for history display.
	Description() string
}

// Target is the mutation surface a single-store command drives. Each
// registered store implements it, returning enough information for the
// command to construct its own inverse: the created id, the previous
// entity values, or the removed entity's full snapshot.
//
// All returned maps are snapshots owned by the caller, never live views
// into store internals.
type Target interface {
	// Name identifies the store in snapshots and history metadata.
	Name() string

	// Insert adds a new entity. It fails if the id is already present.
	Insert(id string, entity map[string]any) error

	// Lookup returns a deep copy of the entity, if present.
	Lookup(id string) (map[string]any, bool)

	// Update merges fields into the entity and returns a full snapshot
	// of the entity as it was before the merge.
	Update(id string, fields map[string]any) (prev map[string]any, err error)

	// Replace overwrites the whole entity.
	Replace(id string, entity map[string]any) error

	// Remove deletes the entity and returns its full snapshot.
	Remove(id string) (entity map[string]any, err error)
}

// Mover is implemented by targets whose entities have a 2D position.
type Mover interface {
	Target

	// Place moves an entity and returns its previous position.
	Place(id string, x, y float64) (prevX, prevY float64, err error)
}

// SnapshotTarget is the store surface checkpoints operate on.
type SnapshotTarget interface {
	Name() string

	// Snapshot serializes the store's full observable state.
	Snapshot() ([]byte, error)

	// Restore replaces the store's state with a prior snapshot.
	Restore(data []byte) error
}

// Resolver looks up registered stores by name. Compacted checkpoints use
// it so they never hold live store references across their lifetime.
type Resolver interface {
	Store(name string) (SnapshotTarget, bool)
}

// Segment is an ordered run of deltas against one store's snapshot tree.
type Segment struct {
	Store  string        `json:"store"`
	Deltas []delta.Delta `json:"deltas"`
}

// DeltaProvider is implemented by commands whose effect can be expressed
// as snapshot deltas. The Memory Manager compacts runs of such commands
// into a single delta-chain checkpoint. Segments are only meaningful
// after Execute has run.
type DeltaProvider interface {
	DeltaSegments() []Segment
}

// Payloader exposes the captured reversal payload for size accounting.
type Payloader interface {
	Payload() any
}

// Batcher marks commands that represent several grouped actions.
type Batcher interface {
	IsBatch() bool
}

// Categorizer lets a command override the default "user" history category.
type Categorizer interface {
	Category() string
}

// categoryFor maps a store name to a history category.
func categoryFor(store string) string {
	switch store {
	case "canvas":
		return CategoryCanvas
	case "timer":
		return CategoryTimer
	default:
		return CategoryUser
	}
}

// cloneFields returns a shallow-tree deep copy of a field map. Values are
// JSON-shaped (maps, slices, primitives), so copying maps and slices
// recursively is a full copy.
func cloneFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
