// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE ROW
// =============================================================================

// MessageRow draws one conversation row.
type MessageRow struct {
	Row render.Row

	// Body is the rendered body. Empty means the raw text is shown.
	Body string

	Selected       bool
	ShowTimestamps bool
	Width          int
}

// View renders the row: avatar and time on the first line, the bubble
// below, then footer actions for assistant rows.
func (r MessageRow) View(theme *styles.Theme) string {
	width := r.Width
	if width < 20 {
		width = 20
	}

	avatar, bubble := r.senderStyles(theme)

	header := avatar.Render(r.Row.Avatar)
	if r.ShowTimestamps {
		header += " " + theme.Timestamp.Render(r.Row.Time)
	}

	body := r.Body
	if body == "" {
		body = r.Row.Body
	}
	// Border and padding take four columns.
	bubbleView := bubble.Width(width - 4).Render(body)

	parts := []string{header, bubbleView}
	if len(r.Row.Actions) > 0 {
		actions := make([]string, 0, len(r.Row.Actions))
		for _, a := range r.Row.Actions {
			actions = append(actions,
				theme.FooterKey.Render("["+a.Key+"]")+theme.FooterAction.Render(strings.TrimPrefix(a.Display(), "["+a.Key+"]")))
		}
		parts = append(parts, strings.Join(actions, "  "))
	}

	view := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if r.Selected {
		return theme.SelectedRow.Render(view)
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(view)
}

// senderStyles returns the avatar and bubble styles for the row's sender.
func (r MessageRow) senderStyles(theme *styles.Theme) (avatar, bubble lipgloss.Style) {
	if r.Row.IsSentByUser {
		return theme.UserAvatar, theme.UserBubble
	}
	return theme.AssistantAvatar, theme.AssistantBubble
}
