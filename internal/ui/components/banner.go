// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// MissingKeyTitle is the banner headline shown while no API key is set.
const MissingKeyTitle = "OpenAI API key missing"

// RenderMissingKeyBanner renders the persistent missing-key notice
// centered in width x height. hint tells the user how to set the key.
func RenderMissingKeyBanner(theme *styles.Theme, hint string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		MissingKeyTitle,
		"",
		lipgloss.NewStyle().Bold(false).Foreground(styles.TextSecondary).Render(hint),
	)
	box := theme.Banner.Render(content)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderEmptyState renders the placeholder for an empty conversation.
func RenderEmptyState(theme *styles.Theme, width, height int) string {
	text := theme.EmptyState.Render("No messages yet. Type a prompt and press Enter.")
	if width <= 0 || height <= 0 {
		return text
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
