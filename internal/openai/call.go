// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"sync"
)

// Call is an in-flight request started by SendAsync.
type Call struct {
	cancel context.CancelFunc
	done   chan struct{}

	once sync.Once
	text string
	err  error
}

// SendAsync starts Send on its own goroutine and returns immediately.
// Canceling ctx or calling Cancel aborts the request.
func (c *Client) SendAsync(ctx context.Context, prompt string) *Call {
	ctx, cancel := context.WithCancel(ctx)
	call := &Call{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer cancel()
		text, err := c.Send(ctx, prompt)
		call.finish(text, err)
	}()
	return call
}

func (call *Call) finish(text string, err error) {
	call.once.Do(func() {
		call.text = text
		call.err = err
		close(call.done)
	})
}

// Done is closed when the call completes.
func (call *Call) Done() <-chan struct{} {
	return call.done
}

// Result blocks until the call completes and returns its outcome.
func (call *Call) Result() (string, error) {
	<-call.done
	return call.text, call.err
}

// Wait blocks until the call completes or ctx is done. Returning because
// of ctx does not cancel the call.
func (call *Call) Wait(ctx context.Context) (string, error) {
	select {
	case <-call.done:
		return call.text, call.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Cancel aborts the request. The call still completes, with a canceled
// TransportError.
func (call *Call) Cancel() {
	call.cancel()
}
