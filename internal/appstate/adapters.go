package appstate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avelhart/rewind/internal/command"
	"github.com/avelhart/rewind/internal/model"
	"github.com/avelhart/rewind/internal/store"
)

// The adapters below are the explicit per-store dispatch tables: each
// mutation method maps to one fixed Command variant, resolved here at
// compile time rather than re-derived per call. They are the only way
// callers should mutate a registered store while recording is active.

// TaskActions adapts task mutations into history commands.
type TaskActions struct {
	mgr   *Manager
	tasks *store.TaskStore
}

// NewTaskActions registers the task store and returns its adapter.
func NewTaskActions(mgr *Manager, tasks *store.TaskStore) (*TaskActions, error) {
	if err := mgr.RegisterStore(tasks); err != nil {
		return nil, err
	}
	return &TaskActions{mgr: mgr, tasks: tasks}, nil
}

// CreateTask records a new task and returns its generated key.
func (a *TaskActions) CreateTask(ctx context.Context, t model.Task) (string, error) {
	if t.Key == "" {
		t.Key = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TaskStatusPlanned
	}
	cmd := command.NewCreate(a.tasks, t.Key, t.Title, t.Fields())
	if err := a.mgr.Execute(ctx, cmd); err != nil {
		return "", err
	}
	return t.Key, nil
}

// UpdateTask records a field-level task update.
func (a *TaskActions) UpdateTask(ctx context.Context, key string, fields map[string]any) error {
	cmd := command.NewUpdate(a.tasks, key, a.taskLabel(key), fields)
	return a.mgr.Execute(ctx, cmd)
}

// CompleteTask marks a task done.
func (a *TaskActions) CompleteTask(ctx context.Context, key string) error {
	return a.UpdateTask(ctx, key, map[string]any{"status": model.TaskStatusDone})
}

// DeleteTask records a task deletion.
func (a *TaskActions) DeleteTask(ctx context.Context, key string) error {
	cmd := command.NewDelete(a.tasks, key, a.taskLabel(key))
	return a.mgr.Execute(ctx, cmd)
}

// Store returns the underlying task store for read access.
func (a *TaskActions) Store() *store.TaskStore { return a.tasks }

func (a *TaskActions) taskLabel(key string) string {
	if t, ok := a.tasks.Task(key); ok && t.Title != "" {
		return t.Title
	}
	return key
}

// CanvasActions adapts canvas mutations into history commands.
type CanvasActions struct {
	mgr    *Manager
	canvas *store.CanvasStore
}

// NewCanvasActions registers the canvas store and returns its adapter.
func NewCanvasActions(mgr *Manager, canvas *store.CanvasStore) (*CanvasActions, error) {
	if err := mgr.RegisterStore(canvas); err != nil {
		return nil, err
	}
	return &CanvasActions{mgr: mgr, canvas: canvas}, nil
}

// AddNode records a new canvas node and returns its generated key.
func (a *CanvasActions) AddNode(ctx context.Context, n model.CanvasNode) (string, error) {
	if n.Key == "" {
		n.Key = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = model.NodeKindNote
	}
	cmd := command.NewCreate(a.canvas, n.Key, n.Label, n.Fields())
	if err := a.mgr.Execute(ctx, cmd); err != nil {
		return "", err
	}
	return n.Key, nil
}

// UpdateNode records a field-level node update.
func (a *CanvasActions) UpdateNode(ctx context.Context, key string, fields map[string]any) error {
	cmd := command.NewUpdate(a.canvas, key, a.nodeLabel(key), fields)
	return a.mgr.Execute(ctx, cmd)
}

// MoveNode records a node reposition.
func (a *CanvasActions) MoveNode(ctx context.Context, key string, x, y float64) error {
	cmd := command.NewMove(a.canvas, key, a.nodeLabel(key), x, y)
	return a.mgr.Execute(ctx, cmd)
}

// RemoveNode records a node removal.
func (a *CanvasActions) RemoveNode(ctx context.Context, key string) error {
	cmd := command.NewDelete(a.canvas, key, a.nodeLabel(key))
	return a.mgr.Execute(ctx, cmd)
}

// Store returns the underlying canvas store for read access.
func (a *CanvasActions) Store() *store.CanvasStore { return a.canvas }

func (a *CanvasActions) nodeLabel(key string) string {
	if n, ok := a.canvas.Node(key); ok && n.Label != "" {
		return n.Label
	}
	return key
}

// TimerActions adapts timer-session mutations into history commands.
type TimerActions struct {
	mgr   *Manager
	timer *store.TimerStore
}

// NewTimerActions registers the timer store and returns its adapter.
func NewTimerActions(mgr *Manager, timer *store.TimerStore) (*TimerActions, error) {
	if err := mgr.RegisterStore(timer); err != nil {
		return nil, err
	}
	return &TimerActions{mgr: mgr, timer: timer}, nil
}

// StartSession records the start of a focus session, optionally bound to
// a task.
func (a *TimerActions) StartSession(ctx context.Context, taskKey string) error {
	now := time.Now()

	if _, exists := a.timer.Session(); !exists {
		sess := model.TimerSession{
			Key:       model.SessionKey,
			TaskKey:   taskKey,
			State:     model.TimerRunning,
			StartedAt: &now,
		}
		cmd := command.NewCreate(a.timer, model.SessionKey, "focus session", sess.Fields())
		return a.mgr.Execute(ctx, cmd)
	}

	fields := map[string]any{
		"state":      model.TimerRunning,
		"started_at": now.Format(time.RFC3339Nano),
		"task_key":   taskKey,
	}
	cmd := command.NewUpdate(a.timer, model.SessionKey, "focus session", fields)
	return a.mgr.Execute(ctx, cmd)
}

// StopSession records the end of the running session, folding the run
// into the accumulated elapsed time.
func (a *TimerActions) StopSession(ctx context.Context) error {
	sess, ok := a.timer.Session()
	if !ok {
		cmd := command.NewUpdate(a.timer, model.SessionKey, "focus session", nil)
		return a.mgr.Execute(ctx, cmd) // rejected: no session exists
	}

	elapsed := sess.ElapsedMS
	if sess.State == model.TimerRunning && sess.StartedAt != nil {
		elapsed += time.Since(*sess.StartedAt).Milliseconds()
	}
	fields := map[string]any{
		"state":      model.TimerStopped,
		"elapsed_ms": elapsed,
	}
	cmd := command.NewUpdate(a.timer, model.SessionKey, "focus session", fields)
	return a.mgr.Execute(ctx, cmd)
}

// Store returns the underlying timer store for read access.
func (a *TimerActions) Store() *store.TimerStore { return a.timer }
