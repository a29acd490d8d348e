// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ReplyMsg is sent when an exchange's API call finishes.
type ReplyMsg struct {
	Exchange *Exchange
	Text     string
	Err      error
}

// Await returns a command that waits for ex and reports it as a ReplyMsg.
func Await(ex *Exchange) tea.Cmd {
	if ex == nil {
		return nil
	}
	return func() tea.Msg {
		text, err := ex.Result()
		return ReplyMsg{Exchange: ex, Text: text, Err: err}
	}
}
