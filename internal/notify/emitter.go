// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"log/slog"

	"github.com/jeranaias/gptchat-tui/internal/model"
)

// Emitter observes the message store and notifies for each appended
// assistant message, regardless of whether the chat view is focused.
type Emitter struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewEmitter creates an emitter delivering through n.
func NewEmitter(n Notifier, logger *slog.Logger) *Emitter {
	if n == nil {
		n = Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{notifier: n, logger: logger}
}

// OnMessageAppended notifies when msg came from the assistant.
func (e *Emitter) OnMessageAppended(msg model.Message) {
	if msg.IsSentByUser {
		return
	}
	if err := e.notifier.Notify(ForMessage(msg)); err != nil {
		e.logger.Warn("notification failed", "error", err)
	}
}

// OnMessageRemoved is a no-op.
func (e *Emitter) OnMessageRemoved(int) {}

// OnConversationCleared is a no-op.
func (e *Emitter) OnConversationCleared() {}
