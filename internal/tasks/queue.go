// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrQueueClosed is returned by Add after Close.
var ErrQueueClosed = errors.New("task queue closed")

// =============================================================================
// TASK QUEUE
// =============================================================================

// Queue is a FIFO of tasks awaiting the runner.
type Queue struct {
	mu sync.Mutex

	// pending holds queued tasks in submission order
	pending []*Task

	// history holds finished tasks, newest last
	history []*Task

	// maxHistory is the maximum number of finished tasks to keep
	maxHistory int

	// maxQueueSize is the maximum number of queued tasks allowed (0 = unlimited)
	maxQueueSize int

	closed bool

	// done is closed by Close and releases a blocked notification send
	done chan struct{}

	// wake is signalled when a task is added
	wake chan struct{}

	// notifyChan sends notifications when tasks finish
	notifyChan chan TaskNotification
}

// TaskNotification reports a finished task.
type TaskNotification struct {
	TaskID      string
	Key         string
	Description string
	Status      TaskStatus
	Result      any
	Err         error
	Duration    time.Duration
}

// NewQueue creates a new task queue keeping at most maxHistory finished
// tasks.
func NewQueue(maxHistory int) *Queue {
	return NewQueueWithOptions(maxHistory, 0)
}

// NewQueueWithOptions creates a task queue with a bound on queued tasks.
// maxQueueSize of 0 means unlimited.
func NewQueueWithOptions(maxHistory, maxQueueSize int) *Queue {
	return &Queue{
		maxHistory:   maxHistory,
		maxQueueSize: maxQueueSize,
		done:         make(chan struct{}),
		wake:         make(chan struct{}, 1),
		notifyChan:   make(chan TaskNotification, 100),
	}
}

// Add appends task to the queue.
func (q *Queue) Add(task *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.maxQueueSize > 0 && len(q.pending) >= q.maxQueueSize {
		return fmt.Errorf("queue is full: %d queued tasks (max: %d)", len(q.pending), q.maxQueueSize)
	}
	q.pending = append(q.pending, task)

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// next pops the oldest queued task, skipping canceled ones.
func (q *Queue) next() *Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) > 0 {
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		if task.Status() == TaskStatusQueued {
			return task
		}
		q.recordLocked(task)
	}
	return nil
}

// CancelKey cancels every queued or running task with key and returns the
// number canceled.
func (q *Queue) CancelKey(key string, running *Task) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, task := range q.pending {
		if task.Key == key && task.Cancel() {
			n++
		}
	}
	if running != nil && running.Key == key && running.Cancel() {
		n++
	}
	return n
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// History returns finished tasks, oldest first.
func (q *Queue) History() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Task, len(q.history))
	copy(out, q.history)
	return out
}

// Notifications returns the channel of finished-task notifications.
// When the buffer is full the runner waits for a reader, so no
// notification is lost before the queue is closed.
func (q *Queue) Notifications() <-chan TaskNotification {
	return q.notifyChan
}

// Close rejects further Adds and cancels queued tasks.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	for _, task := range q.pending {
		task.Cancel()
	}
	q.pending = nil
	close(q.done)
	close(q.wake)
}

// complete records task and publishes its notification.
func (q *Queue) complete(task *Task) {
	q.mu.Lock()
	q.recordLocked(task)
	q.mu.Unlock()

	result, err := task.Result()
	n := TaskNotification{
		TaskID:      task.ID,
		Key:         task.Key,
		Description: task.Description,
		Status:      task.Status(),
		Result:      result,
		Err:         err,
		Duration:    task.Duration(),
	}
	select {
	case q.notifyChan <- n:
	case <-q.done:
	}
}

func (q *Queue) recordLocked(task *Task) {
	q.history = append(q.history, task)
	if q.maxHistory > 0 && len(q.history) > q.maxHistory {
		q.history = q.history[len(q.history)-q.maxHistory:]
	}
}
