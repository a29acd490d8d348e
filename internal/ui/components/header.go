// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// Header is the title bar.
type Header struct {
	Title string
	Model model.ModelID
	Width int
}

// View renders the header across the full width.
func (h Header) View(theme *styles.Theme) string {
	title := h.Title
	if title == "" {
		title = "gptchat"
	}
	left := theme.HeaderBrand.Render(title)

	info, _ := model.GetModelInfo(model.ModelOrDefault(h.Model.String()))
	right := theme.HeaderModel.Render(info.Name + " (" + info.Endpoint + ")")

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return theme.Header.Width(h.Width).Render(line)
}
