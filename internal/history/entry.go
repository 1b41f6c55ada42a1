package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/avelhart/rewind/internal/command"
)

// Entry wraps one executed command with history metadata. Entries move
// between the undo and redo stacks and are destroyed only by compaction
// or eviction.
type Entry struct {
	ID          string
	Description string
	Category    string
	Batch       bool
	Timestamp   time.Time
	Command     command.Command
}

// NewEntry wraps an executed command into a history entry, deriving the
// category and batch flag from the command's optional interfaces.
func NewEntry(cmd command.Command) *Entry {
	e := &Entry{
		ID:          uuid.NewString(),
		Description: cmd.Description(),
		Category:    command.CategoryUser,
		Timestamp:   time.Now(),
		Command:     cmd,
	}
	if c, ok := cmd.(command.Categorizer); ok {
		e.Category = c.Category()
	}
	if b, ok := cmd.(command.Batcher); ok {
		e.Batch = b.IsBatch()
	}
	return e
}

// Info is the read-only projection of an entry exposed to consumers.
type Info struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Batch       bool      `json:"batch,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e *Entry) info() Info {
	return Info{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		Batch:       e.Batch,
		Timestamp:   e.Timestamp,
	}
}
