// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

// Shortcut is one key hint.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the chat view.
type StatusBar struct {
	// Section is the section label of the selected row, if any.
	Section string

	// Busy shows Spinner and BusyText instead of the section label.
	Busy     bool
	Spinner  string
	BusyText string

	Shortcuts []Shortcut
	Width     int
}

// View renders the status bar. Shortcuts are dropped from the right until
// the bar fits.
func (s StatusBar) View(theme *styles.Theme) string {
	inner := s.Width - 2
	if inner < 10 {
		inner = 10
	}

	var left string
	switch {
	case s.Busy:
		left = theme.Spinner.Render(s.Spinner) + " " + theme.ThinkingText.Render(s.BusyText)
	case s.Section != "":
		left = theme.SectionLabel.Render(util.TruncateWidth(s.Section, inner/2))
	}

	hints := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		hints = append(hints, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
	}
	right := strings.Join(hints, "  ")
	for len(hints) > 0 && lipgloss.Width(left)+lipgloss.Width(right)+1 > inner {
		hints = hints[:len(hints)-1]
		right = strings.Join(hints, "  ")
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
