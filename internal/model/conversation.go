// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an insertion-ordered sequence of messages.
// Sequence order is chronological send order.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation from the given messages.
// Messages without a correlation id are assigned one.
func NewConversation(messages ...Message) *Conversation {
	c := &Conversation{messages: make([]Message, 0, len(messages))}
	for _, m := range messages {
		c.Append(m)
	}
	return c
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	if msg.ID == "" {
		msg.ID = NewID()
	}
	c.messages = append(c.messages, msg)
}

// RemoveAt removes the message at index i, preserving the order of the rest.
// Returns false if i is out of range.
func (c *Conversation) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.messages) {
		return false
	}
	c.messages = append(c.messages[:i], c.messages[i+1:]...)
	return true
}

// IndexOf returns the index of the message with the given correlation id, or -1.
func (c *Conversation) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// RemoveByID removes the message with the given correlation id.
// Returns the index it occupied, or -1 if it was not present.
func (c *Conversation) RemoveByID(id string) int {
	i := c.IndexOf(id)
	if i < 0 {
		return -1
	}
	c.RemoveAt(i)
	return i
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.messages = nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// At returns the message at index i.
func (c *Conversation) At(i int) (Message, bool) {
	if i < 0 || i >= len(c.messages) {
		return Message{}, false
	}
	return c.messages[i], true
}

// Last returns the most recent message.
func (c *Conversation) Last() (Message, bool) {
	return c.At(len(c.messages) - 1)
}

// Messages returns a copy of the messages in order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Snapshot returns an independent copy of the conversation.
func (c *Conversation) Snapshot() *Conversation {
	return &Conversation{messages: c.Messages()}
}

// SectionLabel returns the fast-scroll label for the message at index i:
// "[You]: <first line>" for user messages. Assistant messages have no label.
func (c *Conversation) SectionLabel(i int) (string, bool) {
	m, ok := c.At(i)
	if !ok || !m.IsSentByUser {
		return "", false
	}
	return "[" + RoleUser.DisplayName() + "]: " + m.FirstLine(), true
}
