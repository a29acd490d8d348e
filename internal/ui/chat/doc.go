// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the TUI.
//
// The view is a Bubble Tea model that keeps a render projection of the
// stored conversation. Store notifications arrive on the store's goroutine
// and are queued by a bridge; Update drains the queue, so every change to
// the projection happens inside Update. An append adds one trailing row,
// while a removal or clear rebuilds the whole projection.
//
// # Keys
//
// With the input focused, Enter sends and Tab moves to the list. With the
// list focused:
//
//	up/down  select a row
//	d        delete the selected message (asks first)
//	v        view the full text of an assistant message
//	s        share an assistant message (clipboard, else a file)
//	ctrl+l   clear all messages (asks first)
//	esc      cancel the request in flight, or return to the input
package chat
