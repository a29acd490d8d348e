// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jeranaias/gptchat-tui/internal/model"
)

// =============================================================================
// FAMILY VARIANTS
// =============================================================================

// Family is one API surface: its endpoint path, request body and success
// schema. The set is closed; the only implementations are the completion
// and chat families in this file.
type Family interface {
	// Name identifies the family ("completion" or "chat").
	Name() string

	// Path is the endpoint path relative to the base URL.
	Path() string

	// BuildRequest returns the JSON request body for prompt.
	BuildRequest(prompt string, cfg Config) ([]byte, error)

	// ParseResponse extracts the generated text from a success body.
	ParseResponse(body []byte) (string, error)

	sealed()
}

var (
	// Completion is the text-completion family.
	Completion Family = completionFamily{}

	// Chat is the chat-completion family.
	Chat Family = chatFamily{}
)

// FamilyFor returns the family serving id. Unknown ids are served by the
// family of model.DefaultModel.
func FamilyFor(id model.ModelID) Family {
	switch id {
	case model.TextDavinci003:
		return Completion
	case model.GPT35Turbo:
		return Chat
	}
	return FamilyFor(model.DefaultModel)
}

// EndpointFor returns the full endpoint URL for id under baseURL.
func EndpointFor(baseURL string, id model.ModelID) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimSuffix(baseURL, "/") + FamilyFor(id).Path()
}

// =============================================================================
// COMPLETION FAMILY
// =============================================================================

type completionFamily struct{}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Echo        bool    `json:"echo"`
}

type completionResponse struct {
	Choices []struct {
		Text *string `json:"text"`
	} `json:"choices"`
}

func (completionFamily) Name() string { return "completion" }
func (completionFamily) Path() string { return "/completions" }
func (completionFamily) sealed()      {}

func (completionFamily) BuildRequest(prompt string, cfg Config) ([]byte, error) {
	return json.Marshal(completionRequest{
		Model:       cfg.Model.String(),
		Prompt:      prompt,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Echo:        cfg.Echo,
	})
}

func (completionFamily) ParseResponse(body []byte) (string, error) {
	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Text == nil {
		return "", fmt.Errorf("%w: missing choices[0].text", ErrUnexpectedShape)
	}
	return *resp.Choices[0].Text, nil
}

// =============================================================================
// CHAT FAMILY
// =============================================================================

type chatFamily struct{}

// ChatMessage represents a single message in a chat request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (chatFamily) Name() string { return "chat" }
func (chatFamily) Path() string { return "/chat/completions" }
func (chatFamily) sealed()      {}

// BuildRequest sends the prompt as a single user message. Chat completions
// have no echo parameter, so cfg.Echo is ignored.
func (chatFamily) BuildRequest(prompt string, cfg Config) ([]byte, error) {
	return json.Marshal(chatRequest{
		Model:       cfg.Model.String(),
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

func (chatFamily) ParseResponse(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("%w: missing choices[0].message.content", ErrUnexpectedShape)
	}
	return *resp.Choices[0].Message.Content, nil
}

// =============================================================================
// ERROR BODY
// =============================================================================

// apiErrorResponse represents an error response from the API.
type apiErrorResponse struct {
	Error *struct {
		Message *string         `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

// ErrorMessage extracts error.message from an error-shaped body.
// It fails with ErrUnrecognizedBody when the body has no such field.
func ErrorMessage(body []byte) (string, error) {
	apiErr, err := parseAPIError(body)
	if err != nil {
		return "", err
	}
	return apiErr.Message, nil
}

func parseAPIError(body []byte) (*APIError, error) {
	var resp apiErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedBody, err)
	}
	if resp.Error == nil || resp.Error.Message == nil {
		return nil, fmt.Errorf("%w: missing error.message", ErrUnrecognizedBody)
	}
	return &APIError{
		Message: *resp.Error.Message,
		Type:    resp.Error.Type,
		Code:    rawCode(resp.Error.Code),
	}, nil
}

// rawCode renders the code field, which the API sends as a string, a
// number or null.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
