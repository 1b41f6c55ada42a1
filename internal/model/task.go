package model

import "time"

// Task statuses.
const (
	TaskStatusPlanned = "planned"
	TaskStatusActive  = "active"
	TaskStatusDone    = "done"
)

// Task is a unit of work on the user's list.
type Task struct {
	Key    string     `json:"key"`
	Title  string     `json:"title"`
	Status string     `json:"status"`
	Due    *time.Time `json:"due,omitempty"`
	Tags   []string   `json:"tags,omitempty"`
}

// SetKey sets the database key for this task.
func (t *Task) SetKey(key string) {
	t.Key = key
}

// GetKey returns the database key for this task.
func (t *Task) GetKey() string {
	return t.Key
}

// Fields returns the task as a command field map.
func (t *Task) Fields() map[string]any {
	return toFields(t)
}

// TaskFromFields rebuilds a task from a command field map.
func TaskFromFields(m map[string]any) Task {
	var t Task
	fromFields(m, &t)
	return t
}
