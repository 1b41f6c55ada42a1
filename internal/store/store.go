// Package store implements the collaborating stores the history engine
// records: tasks, canvas layout and the timer session. Each store keeps
// its entities as JSON-shaped field maps, satisfies the command mutation
// contract (returning the created id, previous values or full snapshot a
// command needs to build its inverse) and the checkpoint snapshot
// contract, and optionally writes through to Badger.
package store

import (
	"encoding/json"
	"fmt"
	"sync"

	rwerr "github.com/avelhart/rewind/internal/errors"
	"github.com/avelhart/rewind/internal/snapshot"
	"github.com/avelhart/rewind/internal/storage"
)

// base holds the entity map and write-through plumbing shared by the
// concrete stores.
type base struct {
	mu       sync.RWMutex
	name     string
	entities map[string]map[string]any
	db       *storage.DB // nil means purely in-memory
}

func newBase(name string, db *storage.DB) (*base, error) {
	s := &base{
		name:     name,
		entities: make(map[string]map[string]any),
		db:       db,
	}
	if db != nil {
		persisted, err := db.List(s.prefix())
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		for id, data := range persisted {
			var entity map[string]any
			if err := json.Unmarshal(data, &entity); err != nil {
				return nil, fmt.Errorf("load %s/%s: %w", name, id, err)
			}
			s.entities[id] = entity
		}
	}
	return s, nil
}

func (s *base) prefix() string {
	return s.name + "/"
}

// Name identifies the store in snapshots and history metadata.
func (s *base) Name() string {
	return s.name
}

// Len returns the number of entities.
func (s *base) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Insert adds a new entity. It fails if the id is already present.
func (s *base) Insert(id string, entity map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[id]; exists {
		return fmt.Errorf("%s %q: %w", s.name, id, rwerr.ErrEntityExists)
	}
	s.entities[id] = cloneEntity(entity)
	return s.persist(id)
}

// Lookup returns a deep copy of the entity, if present.
func (s *base) Lookup(id string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	return cloneEntity(entity), true
}

// Update merges fields into the entity and returns a full snapshot of the
// entity as it was before the merge.
func (s *base) Update(id string, fields map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", s.name, id, rwerr.ErrEntityNotFound)
	}
	prev := cloneEntity(entity)
	for k, v := range fields {
		entity[k] = cloneValue(v)
	}
	if err := s.persist(id); err != nil {
		return nil, err
	}
	return prev, nil
}

// Replace overwrites the whole entity, creating it if absent.
func (s *base) Replace(id string, entity map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities[id] = cloneEntity(entity)
	return s.persist(id)
}

// Remove deletes the entity and returns its full snapshot.
func (s *base) Remove(id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", s.name, id, rwerr.ErrEntityNotFound)
	}
	delete(s.entities, id)
	if s.db != nil {
		if err := s.db.Delete(s.prefix() + id); err != nil {
			return nil, err
		}
	}
	return entity, nil
}

// Snapshot serializes the store's full observable state.
func (s *base) Snapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot.Marshal(s.entities)
}

// Restore replaces the store's state with a prior snapshot.
func (s *base) Restore(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", s.name, rwerr.ErrInvalidSnapshot)
	}
	entities := make(map[string]map[string]any, len(raw))
	for id, v := range raw {
		entity, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s %q: %w", s.name, id, rwerr.ErrInvalidSnapshot)
		}
		entities[id] = entity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = entities
	if s.db == nil {
		return nil
	}
	if err := s.db.DeletePrefix(s.prefix()); err != nil {
		return err
	}
	for id := range entities {
		if err := s.persist(id); err != nil {
			return err
		}
	}
	return nil
}

// persist writes one entity through to the database. Callers hold the
// write lock.
func (s *base) persist(id string) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(s.entities[id])
	if err != nil {
		return err
	}
	return s.db.Set(s.prefix()+id, data)
}

func cloneEntity(m map[string]any) map[string]any {
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
		return cloneEntity(t)
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
