// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func noop(ctx context.Context) (any, error) { return nil, nil }

func TestNewTask(t *testing.T) {
	task := NewTask("Test task", noop).WithKey("msg-1")

	if task.ID == "" {
		t.Error("Task ID should not be empty")
	}
	if task.Description != "Test task" {
		t.Errorf("Expected description 'Test task', got '%s'", task.Description)
	}
	if task.Key != "msg-1" {
		t.Errorf("Expected key 'msg-1', got '%s'", task.Key)
	}
	if task.Status() != TaskStatusQueued {
		t.Errorf("Expected status Queued, got %s", task.Status())
	}
}

func TestTaskTransitions(t *testing.T) {
	task := NewTask("Test", noop)

	if err := task.SetStatus(TaskStatusComplete); err == nil {
		t.Error("Queued -> Complete should be rejected")
	}
	if err := task.SetStatus(TaskStatusRunning); err != nil {
		t.Errorf("Queued -> Running: %v", err)
	}
	if err := task.SetStatus(TaskStatusFailed); err != nil {
		t.Errorf("Running -> Failed: %v", err)
	}
	if err := task.SetStatus(TaskStatusRunning); err == nil {
		t.Error("Failed -> Running should be rejected")
	}
}

func TestTaskCancelQueued(t *testing.T) {
	task := NewTask("Test", noop)
	if !task.Cancel() {
		t.Fatal("Cancel() on queued task should succeed")
	}
	if task.Status() != TaskStatusCanceled {
		t.Errorf("Expected Canceled, got %s", task.Status())
	}
	if task.Cancel() {
		t.Error("Cancel() on finished task should fail")
	}
}

func TestQueueMaxSize(t *testing.T) {
	q := NewQueueWithOptions(10, 1)
	if err := q.Add(NewTask("a", noop)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := q.Add(NewTask("b", noop)); err == nil {
		t.Error("Add beyond max size should fail")
	}
	q.Close()
	if err := q.Add(NewTask("c", noop)); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Add after Close: got %v, want ErrQueueClosed", err)
	}
}

func waitNotification(t *testing.T, q *Queue) TaskNotification {
	t.Helper()
	select {
	case n := <-q.Notifications():
		return n
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task notification")
		return TaskNotification{}
	}
}

func TestRunnerRunsInOrder(t *testing.T) {
	q := NewQueue(10)
	r := NewRunner(q, time.Second)
	r.Start()
	defer r.Stop()

	for _, name := range []string{"first", "second", "third"} {
		name := name
		if err := q.Add(NewTask(name, func(ctx context.Context) (any, error) {
			return name, nil
		})); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	for _, want := range []string{"first", "second", "third"} {
		n := waitNotification(t, q)
		if n.Status != TaskStatusComplete {
			t.Errorf("%s: status %s", want, n.Status)
		}
		if n.Result != want {
			t.Errorf("Result = %v, want %s", n.Result, want)
		}
	}
	if got := len(q.History()); got != 3 {
		t.Errorf("History length = %d, want 3", got)
	}
}

func TestRunnerFailureAndPanic(t *testing.T) {
	q := NewQueue(10)
	r := NewRunner(q, time.Second)
	r.Start()
	defer r.Stop()

	boom := errors.New("boom")
	_ = q.Add(NewTask("fails", func(ctx context.Context) (any, error) { return nil, boom }))
	_ = q.Add(NewTask("panics", func(ctx context.Context) (any, error) { panic("bad") }))

	n := waitNotification(t, q)
	if n.Status != TaskStatusFailed || !errors.Is(n.Err, boom) {
		t.Errorf("failing task: status %s err %v", n.Status, n.Err)
	}
	n = waitNotification(t, q)
	if n.Status != TaskStatusFailed || n.Err == nil {
		t.Errorf("panicking task: status %s err %v", n.Status, n.Err)
	}
}

func TestRunnerCancelKey(t *testing.T) {
	q := NewQueue(10)
	r := NewRunner(q, 0)
	r.Start()
	defer r.Stop()

	started := make(chan struct{})
	_ = q.Add(NewTask("blocks", func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}).WithKey("k"))
	<-started

	if n := r.CancelKey("k"); n != 1 {
		t.Errorf("CancelKey = %d, want 1", n)
	}
	n := waitNotification(t, q)
	if n.Status != TaskStatusCanceled {
		t.Errorf("Expected Canceled, got %s", n.Status)
	}
}

func TestRunnerTimeout(t *testing.T) {
	q := NewQueue(10)
	r := NewRunner(q, 20*time.Millisecond)
	r.Start()
	defer r.Stop()

	_ = q.Add(NewTask("slow", func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	n := waitNotification(t, q)
	if n.Status != TaskStatusFailed || !errors.Is(n.Err, context.DeadlineExceeded) {
		t.Errorf("timed out task: status %s err %v", n.Status, n.Err)
	}
}

func TestQueueNotificationsNotDroppedWhenFull(t *testing.T) {
	q := NewQueue(0)
	r := NewRunner(q, time.Second)
	r.Start()
	defer r.Stop()

	const total = 250
	for i := 0; i < total; i++ {
		i := i
		if err := q.Add(NewTask("render", func(ctx context.Context) (any, error) {
			return i, nil
		})); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// Nobody reads until the worker has had time to overflow the buffer.
	time.Sleep(50 * time.Millisecond)

	for want := 0; want < total; want++ {
		n := waitNotification(t, q)
		if n.Result != want {
			t.Fatalf("notification %d: Result = %v", want, n.Result)
		}
	}
}

func TestRunnerStopReleasesBlockedNotification(t *testing.T) {
	q := NewQueue(0)
	r := NewRunner(q, time.Second)
	r.Start()

	for i := 0; i < 150; i++ {
		if err := q.Add(NewTask("unread", noop)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on an unread notification")
	}
}
