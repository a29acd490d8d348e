// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/session"
	"github.com/jeranaias/gptchat-tui/internal/ui/components"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// inputHeight is the bordered input box: one line plus top and bottom border.
const inputHeight = 3

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport to the space left by the fixed chrome.
func (m *Model) layout() {
	chrome := lipgloss.Height(m.headerView()) + inputHeight + 1
	if toasts := m.toastsView(); toasts != "" {
		chrome += lipgloss.Height(toasts)
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
}

// refreshViewport redraws the rows. With toBottom the view follows the
// newest row; otherwise the selected row is kept visible.
func (m *Model) refreshViewport(toBottom bool) {
	msgs := m.conv.Messages()
	if len(msgs) == 0 {
		m.rowOffsets = nil
		m.viewport.SetContent("")
		return
	}

	views := make([]string, 0, len(msgs))
	offsets := make([]int, 0, len(msgs))
	line := 0
	for i, msg := range msgs {
		row := components.MessageRow{
			Row:            render.RowFor(msg),
			Body:           m.bodies[msg.ID],
			Selected:       i == m.selected,
			ShowTimestamps: m.showTimestamps,
			Width:          m.rowWidth(),
		}
		view := row.View(m.theme)
		offsets = append(offsets, line)
		line += lipgloss.Height(view) + 1
		views = append(views, view)
	}
	m.rowOffsets = offsets
	m.viewport.SetContent(strings.Join(views, "\n\n"))

	switch {
	case toBottom:
		m.viewport.GotoBottom()
	case m.selected >= 0 && m.selected < len(offsets):
		m.ensureVisible(m.selected, line)
	}
}

// ensureVisible scrolls so the top of row i is on screen.
func (m *Model) ensureVisible(i, total int) {
	top := m.rowOffsets[i]
	bottom := total
	if i+1 < len(m.rowOffsets) {
		bottom = m.rowOffsets[i+1] - 1
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		offset := bottom - m.viewport.Height
		if offset > top {
			offset = top
		}
		m.viewport.SetYOffset(offset)
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat view.
func (m Model) View() string {
	if m.confirm != nil {
		return m.confirm.View(m.theme, m.width, m.height)
	}
	if m.pager != nil {
		return m.pager.View(m.theme)
	}

	parts := []string{m.headerView()}
	switch {
	case m.orch.State() == session.MissingKey:
		parts = append(parts, components.RenderMissingKeyBanner(m.theme, m.keyHint, m.width, m.viewport.Height))
	case m.conv.IsEmpty():
		parts = append(parts, components.RenderEmptyState(m.theme, m.width, m.viewport.Height))
	default:
		parts = append(parts, m.viewport.View())
	}
	if toasts := m.toastsView(); toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, m.inputView(), m.statusView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) headerView() string {
	return components.Header{Model: m.modelID, Width: m.width}.View(m.theme)
}

func (m Model) toastsView() string {
	return components.RenderToasts(m.theme, m.toasts.Toasts(), m.width)
}

func (m Model) inputView() string {
	field := m.input.View()
	if m.orch.State() == session.MissingKey {
		field = m.keyInput.View()
	}
	style := m.theme.InputContainer.Width(m.width - 2)
	if m.focus == focusList {
		style = style.BorderForeground(styles.Overlay)
	}
	return style.Render(field)
}

func (m Model) statusView() string {
	bar := components.StatusBar{
		Busy:      m.orch.State() == session.Sending,
		Spinner:   m.spinner.View(),
		BusyText:  "Requesting... (esc to cancel)",
		Shortcuts: m.shortcuts(),
		Width:     m.width,
	}
	if label, ok := m.conv.SectionLabel(m.selected); ok {
		bar.Section = label
	}
	return bar.View(m.theme)
}

func (m Model) shortcuts() []components.Shortcut {
	bindings := m.keys.ShortHelp()
	if m.focus == focusList {
		bindings = m.keys.ListHelp()
	}
	out := make([]components.Shortcut, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, shortcutFor(b))
	}
	return out
}

func shortcutFor(b key.Binding) components.Shortcut {
	h := b.Help()
	return components.Shortcut{Key: h.Key, Desc: h.Desc}
}
