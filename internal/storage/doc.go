// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides message persistence for gptchat.
//
// The whole conversation is stored as one JSON array under the
// "message_list" key of the preference store. Every mutation rewrites the
// blob; there is no incremental persistence.
//
// # Key Types
//
//   - MessageStore: owner of the conversation state
//   - Observer: insert/remove/clear change notifications
//   - Format: export format (markdown, json, yaml)
//
// # Usage
//
//	store := storage.NewMessageStore(prefsStore)
//	unsubscribe := store.Subscribe(presenter)
//	defer unsubscribe()
//
//	err := store.Append(model.NewUserMessage("hello"))
//	snapshot := store.Conversation()
//
// # Corruption
//
// A malformed blob loads as an empty conversation and is logged; it is
// never reported as an error.
package storage
