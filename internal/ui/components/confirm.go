// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// ConfirmResultMsg reports the answer to a ConfirmDialog.
type ConfirmResultMsg struct {
	// Action identifies what was being confirmed.
	Action string

	// Target is the id of the affected item, if any.
	Target string

	Confirmed bool
}

// ConfirmDialog is a modal yes/no prompt.
type ConfirmDialog struct {
	Title  string
	Prompt string
	Action string
	Target string
}

// NewConfirmDialog creates a dialog for action on target.
func NewConfirmDialog(title, prompt, action, target string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:  title,
		Prompt: prompt,
		Action: action,
		Target: target,
	}
}

// HandleKey answers the dialog. y or enter confirms, n or esc declines;
// other keys are ignored and return nil.
func (d *ConfirmDialog) HandleKey(msg tea.KeyMsg) tea.Cmd {
	var confirmed bool
	switch msg.String() {
	case "y", "Y", "enter":
		confirmed = true
	case "n", "N", "esc", "q":
		confirmed = false
	default:
		return nil
	}
	result := ConfirmResultMsg{Action: d.Action, Target: d.Target, Confirmed: confirmed}
	return func() tea.Msg { return result }
}

// View renders the dialog centered in width x height.
func (d *ConfirmDialog) View(theme *styles.Theme, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render(d.Title),
		"",
		d.Prompt,
		"",
		theme.ShortcutKey.Render("y")+" "+theme.ShortcutDesc.Render("confirm")+"   "+
			theme.ShortcutKey.Render("n")+" "+theme.ShortcutDesc.Render("cancel"),
	)
	box := theme.Dialog.Render(content)
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
