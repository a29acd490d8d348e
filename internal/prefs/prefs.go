// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"errors"
	"strconv"
	"strings"
)

// =============================================================================
// KEYS
// =============================================================================

// Persisted keys. The names are part of the on-disk layout.
const (
	KeyMessageList = "message_list"

	KeyAPIKey      = "openai_api_key"
	KeyModel       = "openai_model"
	KeyMaxTokens   = "openai_max_tokens"
	KeyTemperature = "openai_temperature"
	KeyEcho        = "openai_echo"
	KeyAPIURL      = "openai_api_url"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("prefs: store closed")

	// ErrEmptyKey indicates an empty key was supplied.
	ErrEmptyKey = errors.New("prefs: empty key")
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is a flat string key-value store.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Put stores value under key, replacing any previous value.
	Put(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Keys returns all stored keys in lexical order.
	Keys() ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// =============================================================================
// TYPED HELPERS
// =============================================================================

// GetString returns the value for key, or def if absent or unreadable.
func GetString(s Store, key, def string) string {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	return v
}

// GetBool returns the boolean value for key, or def if absent or unparseable.
func GetBool(s Store, key string, def bool) bool {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// PutBool stores a boolean value.
func PutBool(s Store, key string, value bool) error {
	return s.Put(key, strconv.FormatBool(value))
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
