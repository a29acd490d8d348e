// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prefs provides the local key-value settings store.
//
// All persisted application state lives in one flat namespace of string
// keys: the message list blob and the individual client settings. The
// store is backed by SQLite (modernc.org/sqlite, pure Go) in the data
// directory; tests use the in-memory implementation.
//
// # Key Types
//
//   - Store: the key-value interface
//   - SQLiteStore: durable implementation
//   - MemoryStore: in-memory implementation
//   - SecureStore: wraps a Store and encrypts secret keys at rest
//   - DirLock: advisory lock that keeps two processes off one data dir
//
// # Usage
//
//	store, err := prefs.OpenSQLite(filepath.Join(dataDir, "prefs.db"))
//	box, err := prefs.OpenSecretBox(filepath.Join(dataDir, "master.key"))
//	secure := prefs.NewSecureStore(store, box, prefs.KeyAPIKey)
//	err = secure.Put(prefs.KeyAPIKey, "sk-...")
package prefs
