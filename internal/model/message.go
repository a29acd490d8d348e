// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TimeLayout is the display layout for message send times (h:mm a).
const TimeLayout = "3:04 PM"

// Message represents a single chat message.
//
// The JSON layout is the persisted layout of the message list and must not
// change: {"text", "isSentByUser", "sentAtEpochMillis"}.
type Message struct {
	// ID is an in-memory correlation id. It is never persisted and is
	// regenerated whenever a conversation is loaded.
	ID string `json:"-"`

	Text              string `json:"text"`
	IsSentByUser      bool   `json:"isSentByUser"`
	SentAtEpochMillis int64  `json:"sentAtEpochMillis"`
}

// NewMessage creates a new message stamped with the given time.
func NewMessage(text string, isSentByUser bool, at time.Time) Message {
	return Message{
		ID:                NewID(),
		Text:              text,
		IsSentByUser:      isSentByUser,
		SentAtEpochMillis: at.UnixMilli(),
	}
}

// NewUserMessage creates a user message sent now.
func NewUserMessage(text string) Message {
	return NewMessage(text, true, time.Now())
}

// NewAssistantMessage creates an assistant message received now.
func NewAssistantMessage(text string) Message {
	return NewMessage(text, false, time.Now())
}

// NewID returns a fresh correlation id.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Role returns the sender role of the message.
func (m Message) Role() Role {
	if m.IsSentByUser {
		return RoleUser
	}
	return RoleAssistant
}

// SentAt returns the send time in the local time zone.
func (m Message) SentAt() time.Time {
	return time.UnixMilli(m.SentAtEpochMillis)
}

// TimeLabel returns the send time formatted as h:mm a (e.g. "3:04 PM").
func (m Message) TimeLabel() string {
	return m.SentAt().Format(TimeLayout)
}

// FirstLine returns the text up to the first line break.
func (m Message) FirstLine() string {
	if i := strings.IndexByte(m.Text, '\n'); i >= 0 {
		return m.Text[:i]
	}
	return m.Text
}

// Preview returns a truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Text) == ""
}
