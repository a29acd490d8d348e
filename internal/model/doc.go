// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: a single chat message (text, sender flag, send time)
//   - Conversation: insertion-ordered sequence of messages
//   - ModelID: closed set of supported OpenAI models
//   - Role: user or assistant
//
// # Usage
//
//	conv := model.NewConversation()
//	msg := model.NewUserMessage("Hello!")
//	conv.Append(msg)
//	conv.RemoveByID(msg.ID)
//
// Message IDs are correlation ids that live only in memory. The persisted
// form of a message is {"text", "isSentByUser", "sentAtEpochMillis"}.
package model
