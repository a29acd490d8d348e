// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// =============================================================================
// TASK RUNNER
// =============================================================================

// Runner executes tasks from a queue one at a time.
type Runner struct {
	queue       *Queue
	taskTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	current *Task
}

// NewRunner creates a runner for queue. taskTimeout bounds each task;
// zero means no timeout.
func NewRunner(queue *Queue, taskTimeout time.Duration) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		queue:       queue,
		taskTimeout: taskTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutine.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.processLoop()
}

// Stop closes the queue, cancels the running task and waits for the
// worker to exit.
func (r *Runner) Stop() {
	r.queue.Close()
	r.cancel()
	r.wg.Wait()
}

// Current returns the running task, or nil.
func (r *Runner) Current() *Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CancelKey cancels queued and running tasks with key.
func (r *Runner) CancelKey(key string) int {
	return r.queue.CancelKey(key, r.Current())
}

// =============================================================================
// TASK PROCESSING
// =============================================================================

func (r *Runner) processLoop() {
	defer r.wg.Done()
	for {
		for task := r.queue.next(); task != nil; task = r.queue.next() {
			if r.ctx.Err() != nil {
				return
			}
			r.execute(task)
		}
		select {
		case <-r.ctx.Done():
			return
		case _, ok := <-r.queue.wake:
			if !ok {
				return
			}
		}
	}
}

// execute runs one task, converting panics into task failures.
func (r *Runner) execute(task *Task) {
	ctx, cancel := r.ctx, context.CancelFunc(func() {})
	if r.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.taskTimeout)
	}
	ctx, cancelTask := context.WithCancel(ctx)
	defer cancel()
	defer cancelTask()

	if !task.markStarted(cancelTask) {
		r.queue.complete(task)
		return
	}

	r.mu.Lock()
	r.current = task
	r.mu.Unlock()

	result, err := runSafely(ctx, task.fn)
	canceled := errors.Is(ctx.Err(), context.Canceled)
	task.finish(result, err, canceled)

	r.mu.Lock()
	r.current = nil
	r.mu.Unlock()

	r.queue.complete(task)
}

func runSafely(ctx context.Context, fn Func) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	if fn == nil {
		return nil, errors.New("task has no function")
	}
	return fn(ctx)
}
