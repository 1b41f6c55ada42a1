package model

import "time"

// SessionKey is the well-known id of the single timer session entity.
const SessionKey = "session"

// Timer session states.
const (
	TimerIdle    = "idle"
	TimerRunning = "running"
	TimerStopped = "stopped"
)

// TimerSession tracks the current focus session. The timer store holds a
// single session entity under SessionKey.
type TimerSession struct {
	Key       string     `json:"key"`
	TaskKey   string     `json:"task_key,omitempty"`
	State     string     `json:"state"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	ElapsedMS int64      `json:"elapsed_ms"`
}

// SetKey sets the database key for this session.
func (s *TimerSession) SetKey(key string) {
	s.Key = key
}

// GetKey returns the database key for this session.
func (s *TimerSession) GetKey() string {
	return s.Key
}

// Elapsed returns the accumulated session duration.
func (s *TimerSession) Elapsed() time.Duration {
	d := time.Duration(s.ElapsedMS) * time.Millisecond
	if s.State == TimerRunning && s.StartedAt != nil {
		d += time.Since(*s.StartedAt)
	}
	return d
}

// Fields returns the session as a command field map.
func (s *TimerSession) Fields() map[string]any {
	return toFields(s)
}

// TimerSessionFromFields rebuilds a session from a command field map.
func TimerSessionFromFields(m map[string]any) TimerSession {
	var s TimerSession
	fromFields(m, &s)
	return s
}
