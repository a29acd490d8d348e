// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/gptchat-tui/internal/session"
	"github.com/jeranaias/gptchat-tui/internal/tasks"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// SettingsChangedMsg reports that client settings were replaced, for
// example after the API key was entered. Client is the new client.
type SettingsChangedMsg struct {
	Client session.Client
	Notice string
}

// ConfigReloadedMsg applies a reloaded application config to the view.
type ConfigReloadedMsg struct {
	ShowTimestamps bool
	Theme          *styles.Theme
	Client         session.Client
	Notice         string
}

// renderDoneMsg carries a rendered message body.
type renderDoneMsg struct {
	id    string
	width int
	body  string
}

// renderBatchMsg carries the renders finished since the last batch.
type renderBatchMsg struct {
	results []renderDoneMsg
}

func (b *renderBatchMsg) add(n tasks.TaskNotification) {
	if res, ok := n.Result.(renderDoneMsg); ok && n.Status == tasks.TaskStatusComplete {
		b.results = append(b.results, res)
	}
}

// renderIdleMsg is returned when the render queue closed.
type renderIdleMsg struct{}

// shareDoneMsg reports the result of a share action.
type shareDoneMsg struct {
	copied bool
	path   string
	err    error
}

// apiKeySavedMsg reports the result of saving an API key.
type apiKeySavedMsg struct {
	client session.Client
	err    error
}
