package store

import (
	"sort"

	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/storage"
)

// TaskStore holds the user's tasks.
type TaskStore struct {
	*base
}

// NewTaskStore creates a task store, loading persisted tasks when db is
// non-nil.
func NewTaskStore(db *storage.DB) (*TaskStore, error) {
	b, err := newBase("tasks", db)
	if err != nil {
		return nil, err
	}
	return &TaskStore{base: b}, nil
}

// Task returns the typed task under id.
func (s *TaskStore) Task(id string) (model.Task, bool) {
	fields, ok := s.Lookup(id)
	if !ok {
		return model.Task{}, false
	}
	t := model.TaskFromFields(fields)
	t.SetKey(id)
	return t, true
}

// Tasks returns all tasks sorted by key.
func (s *TaskStore) Tasks() []model.Task {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Task(id); ok {
			out = append(out, t)
		}
	}
	return out
}
