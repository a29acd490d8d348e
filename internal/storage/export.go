// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format is a conversation export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ErrUnknownFormat is returned for unsupported export formats.
// Use errors.Is(err, ErrUnknownFormat) to check for this error.
var ErrUnknownFormat = &ExportError{Message: "unknown export format"}

// ExportError represents an export-related error.
type ExportError struct {
	Message string
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing export errors.
func (e *ExportError) Is(target error) bool {
	t, ok := target.(*ExportError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ParseFormat parses a format name ("md", "markdown", "json", "yaml", "yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file extension, defaulting to
// Markdown.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatMarkdown
}

// =============================================================================
// EXPORT
// =============================================================================

// exportedMessage is the human-oriented export record.
type exportedMessage struct {
	Role   string    `json:"role" yaml:"role"`
	SentAt time.Time `json:"sent_at" yaml:"sent_at"`
	Text   string    `json:"text" yaml:"text"`
}

func exportRecords(conv *model.Conversation) []exportedMessage {
	records := make([]exportedMessage, 0, conv.Len())
	for _, m := range conv.Messages() {
		records = append(records, exportedMessage{
			Role:   m.Role().String(),
			SentAt: m.SentAt(),
			Text:   m.Text,
		})
	}
	return records
}

// ExportMarkdown renders the conversation as Markdown with role labels and
// send times.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString("# Conversation\n\n")
	sb.WriteString("Exported: " + time.Now().Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, m := range conv.Messages() {
		sb.WriteString("**" + m.Role().DisplayName() + "** (" + m.TimeLabel() + "):\n\n")
		sb.WriteString(m.Text)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String()
}

// ExportJSON renders the conversation as pretty-printed JSON.
func ExportJSON(conv *model.Conversation) ([]byte, error) {
	return json.MarshalIndent(exportRecords(conv), "", "  ")
}

// ExportYAML renders the conversation as YAML.
func ExportYAML(conv *model.Conversation) ([]byte, error) {
	return yaml.Marshal(exportRecords(conv))
}

// Export renders conv in the given format.
func Export(conv *model.Conversation, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return []byte(ExportMarkdown(conv)), nil
	case FormatJSON:
		return ExportJSON(conv)
	case FormatYAML:
		return ExportYAML(conv)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ExportToFile writes conv to path atomically.
func ExportToFile(conv *model.Conversation, path string, format Format) error {
	data, err := Export(conv, format)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// ExportMessage writes a single message's text to path atomically.
// Used by the share action when no clipboard is available.
func ExportMessage(msg model.Message, path string) error {
	if err := util.AtomicWriteFile(path, []byte(msg.Text), 0600); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}
