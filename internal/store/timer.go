package store

import (
	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/storage"
)

// TimerStore holds the single focus-session entity under
// model.SessionKey.
type TimerStore struct {
	*base
}

// NewTimerStore creates a timer store, loading the persisted session when
// db is non-nil.
func NewTimerStore(db *storage.DB) (*TimerStore, error) {
	b, err := newBase("timer", db)
	if err != nil {
		return nil, err
	}
	return &TimerStore{base: b}, nil
}

// Session returns the current session, if one has ever been started.
func (s *TimerStore) Session() (model.TimerSession, bool) {
	fields, ok := s.Lookup(model.SessionKey)
	if !ok {
		return model.TimerSession{}, false
	}
	sess := model.TimerSessionFromFields(fields)
	sess.SetKey(model.SessionKey)
	return sess, true
}
