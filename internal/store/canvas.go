package store

import (
	"fmt"
	"sort"

	rwerr "github.com/avelhart/rewind/internal/errors"
	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/storage"
)

// CanvasStore holds the positioned nodes of the layout canvas. It
// additionally supports placement, which backs the Move command.
type CanvasStore struct {
	*base
}

// NewCanvasStore creates a canvas store, loading persisted nodes when db
// is non-nil.
func NewCanvasStore(db *storage.DB) (*CanvasStore, error) {
	b, err := newBase("canvas", db)
	if err != nil {
		return nil, err
	}
	return &CanvasStore{base: b}, nil
}

// Place moves a node and returns its previous position.
func (s *CanvasStore) Place(id string, x, y float64) (prevX, prevY float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entity, ok := s.entities[id]
	if !ok {
		return 0, 0, fmt.Errorf("%s %q: %w", s.name, id, rwerr.ErrEntityNotFound)
	}
	prevX, _ = entity["x"].(float64)
	prevY, _ = entity["y"].(float64)
	entity["x"] = x
	entity["y"] = y
	if err := s.persist(id); err != nil {
		return 0, 0, err
	}
	return prevX, prevY, nil
}

// Node returns the typed node under id.
func (s *CanvasStore) Node(id string) (model.CanvasNode, bool) {
	fields, ok := s.Lookup(id)
	if !ok {
		return model.CanvasNode{}, false
	}
	n := model.CanvasNodeFromFields(fields)
	n.SetKey(id)
	return n, true
}

// Nodes returns all nodes sorted by key.
func (s *CanvasStore) Nodes() []model.CanvasNode {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	out := make([]model.CanvasNode, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}
