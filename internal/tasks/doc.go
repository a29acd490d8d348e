// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks runs background work on a single worker goroutine.
//
// Work is submitted as a Task wrapping a function. The Runner executes
// queued tasks one at a time in submission order, so results are produced
// in the same order the work was requested. The chat view uses it to
// render message bodies off the UI goroutine.
//
// # Key Types
//
//   - Task: one unit of work with status, timing and result
//   - Queue: FIFO of tasks plus completion notifications
//   - Runner: the single worker draining a Queue
//
// # Usage
//
//	q := tasks.NewQueue(50)
//	r := tasks.NewRunner(q, 10*time.Second)
//	r.Start()
//	defer r.Stop()
//
//	task := tasks.NewTask("render", func(ctx context.Context) (any, error) {
//	    return render(ctx, text)
//	})
//	q.Add(task)
//	n := <-q.Notifications()
package tasks
