// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus represents the current state of a background task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is waiting to be executed
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusRunning indicates the task is currently executing
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusComplete indicates the task finished successfully
	TaskStatusComplete TaskStatus = "Complete"

	// TaskStatusFailed indicates the task returned an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled indicates the task was canceled before finishing
	TaskStatusCanceled TaskStatus = "Canceled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed || s == TaskStatusCanceled
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// Func is the work a task performs.
type Func func(ctx context.Context) (any, error)

// Task is one unit of background work.
type Task struct {
	// ID is a unique identifier for this task
	ID string

	// Description is a human-readable description of what this task does
	Description string

	// Key groups related tasks; the chat view uses the message id.
	Key string

	fn Func

	mu        sync.Mutex
	status    TaskStatus
	startTime time.Time
	endTime   time.Time
	result    any
	err       error
	cancel    context.CancelFunc
}

// NewTask creates a queued task running fn.
func NewTask(description string, fn Func) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		fn:          fn,
		status:      TaskStatusQueued,
	}
}

// WithKey sets the grouping key and returns the task.
func (t *Task) WithKey(key string) *Task {
	t.Key = key
	return t
}

// =============================================================================
// STATUS TRANSITIONS
// =============================================================================

// SetStatus moves the task to status if the transition is valid.
func (t *Task) SetStatus(status TaskStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.setStatusLocked(status)
}

func (t *Task) setStatusLocked(status TaskStatus) error {
	if !isValidTransition(t.status, status) {
		return fmt.Errorf("invalid task transition: %s -> %s", t.status, status)
	}
	t.status = status
	return nil
}

func isValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case TaskStatusQueued:
		return to == TaskStatusRunning || to == TaskStatusCanceled
	case TaskStatusRunning:
		return to.IsTerminal()
	default:
		return false
	}
}

// Status returns the current status.
func (t *Task) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// markStarted moves a queued task to running. It returns false if the task
// was canceled while queued.
func (t *Task) markStarted(cancel context.CancelFunc) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TaskStatusQueued {
		return false
	}
	t.status = TaskStatusRunning
	t.startTime = time.Now()
	t.cancel = cancel
	return true
}

// finish records the result and the terminal status.
func (t *Task) finish(result any, err error, canceled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endTime = time.Now()
	t.result = result
	t.err = err
	t.cancel = nil
	switch {
	case canceled:
		t.status = TaskStatusCanceled
	case err != nil:
		t.status = TaskStatusFailed
	default:
		t.status = TaskStatusComplete
	}
}

// Cancel stops the task. A queued task never runs; a running task has its
// context canceled. It returns false for finished tasks.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.status {
	case TaskStatusQueued:
		t.status = TaskStatusCanceled
		t.endTime = time.Now()
		return true
	case TaskStatusRunning:
		if t.cancel != nil {
			t.cancel()
		}
		return true
	default:
		return false
	}
}

// =============================================================================
// RESULTS
// =============================================================================

// Result returns the value and error produced by the task.
func (t *Task) Result() (any, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.err
}

// Duration returns how long the task ran, or has been running.
func (t *Task) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.startTime.IsZero() {
		return 0
	}
	if t.endTime.IsZero() {
		return time.Since(t.startTime)
	}
	return t.endTime.Sub(t.startTime)
}

// Summary returns a one-line description for logs.
func (t *Task) Summary() string {
	status := t.Status()
	if d := t.Duration(); d > 0 {
		return fmt.Sprintf("%s [%s] %s", t.Description, status, d.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s [%s]", t.Description, status)
}
