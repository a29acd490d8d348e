// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives one message exchange at a time.
//
// The Orchestrator appends the user's message, starts the API call and,
// when the reply arrives, appends the assistant's message or reports the
// failure. Only one exchange is in flight; a second Submit while Sending
// is rejected with ErrBusy.
//
// # Key Types
//
//   - Orchestrator: the Idle/Sending/MissingKey state machine
//   - Exchange: one submitted prompt and its pending API call
//   - Outcome: what Complete did with the result
//   - ReplyMsg: Bubble Tea message carrying a finished call
//
// # Usage
//
// In a Bubble Tea program the call runs in a command and the result is
// applied from Update:
//
//	ex, err := orch.Submit(ctx, input)
//	if err != nil { ... }
//	return m, session.Await(ex)
//
//	case session.ReplyMsg:
//	    outcome := orch.Complete(msg.Exchange, msg.Text, msg.Err)
//
// Line-oriented callers use Run, which blocks until the exchange ends:
//
//	outcome, err := orch.Run(ctx, "hello")
//
// # Failure Handling
//
// Transport, parse and cancellation failures keep the user's message. An
// error reported by the API removes the user's message by its correlation
// id, so the conversation is left as it was before the submission.
package session
