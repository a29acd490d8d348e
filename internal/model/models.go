// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// MODEL ID TYPE
// =============================================================================

// ModelID is the persisted identifier of a supported OpenAI model.
// The set is closed: only the constants below are valid.
type ModelID string

const (
	// TextDavinci003 is served by the completion endpoint.
	TextDavinci003 ModelID = "text-davinci-003"

	// GPT35Turbo is served by the chat-completion endpoint.
	GPT35Turbo ModelID = "gpt-3.5-turbo"
)

// DefaultModel is used when no model, or an unknown model, is stored.
const DefaultModel = GPT35Turbo

// String returns the API identifier.
func (id ModelID) String() string {
	return string(id)
}

// Valid reports whether id is one of the supported models.
func (id ModelID) Valid() bool {
	_, ok := Models[id]
	return ok
}

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo contains display information about a model.
type ModelInfo struct {
	// ID is the model identifier used in API calls
	ID ModelID `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Endpoint names the API surface ("completion" or "chat")
	Endpoint string `json:"endpoint"`

	// Description is a brief explanation of the model
	Description string `json:"description"`
}

// Models is the registry of supported models.
var Models = map[ModelID]ModelInfo{
	TextDavinci003: {
		ID:          TextDavinci003,
		Name:        "Davinci 003",
		Endpoint:    "completion",
		Description: "Text completion model, supports echo",
	},
	GPT35Turbo: {
		ID:          GPT35Turbo,
		Name:        "GPT-3.5 Turbo",
		Endpoint:    "chat",
		Description: "Chat completion model",
	},
}

// =============================================================================
// MODEL LOOKUP FUNCTIONS
// =============================================================================

// ParseModelID parses a stored or user-supplied model identifier.
// Matching is case-insensitive and accepts the enum spellings
// (TEXT_DAVINCI_003, GPT_3_5_TURBO) as well as the API ids.
func ParseModelID(s string) (ModelID, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "text-davinci-003", "text_davinci_003":
		return TextDavinci003, nil
	case "gpt-3.5-turbo", "gpt_3_5_turbo":
		return GPT35Turbo, nil
	}
	return "", fmt.Errorf("unknown model %q (supported: %s)", s, strings.Join(ModelIDs(), ", "))
}

// ModelOrDefault parses s and falls back to DefaultModel on failure.
func ModelOrDefault(s string) ModelID {
	id, err := ParseModelID(s)
	if err != nil {
		return DefaultModel
	}
	return id
}

// GetModelInfo looks up a model by ID.
func GetModelInfo(id ModelID) (ModelInfo, bool) {
	info, ok := Models[id]
	return info, ok
}

// ModelIDs returns a sorted slice of all supported model ids.
func ModelIDs() []string {
	ids := make([]string, 0, len(Models))
	for id := range Models {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	return ids
}
