// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// PagerClosedMsg is sent when the pager is dismissed.
type PagerClosedMsg struct{}

// Pager shows the full text of one message.
type Pager struct {
	Title    string
	viewport viewport.Model
}

// NewPager creates a pager showing content.
func NewPager(title, content string, width, height int) *Pager {
	p := &Pager{Title: title}
	p.viewport = viewport.New(width, pagerBodyHeight(height))
	p.viewport.SetContent(content)
	return p
}

// pagerBodyHeight leaves room for the header and footer lines.
func pagerBodyHeight(height int) int {
	if height-4 < 1 {
		return 1
	}
	return height - 4
}

// SetSize resizes the pager.
func (p *Pager) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = pagerBodyHeight(height)
}

// Update handles scrolling keys. q and esc close the pager.
func (p *Pager) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "v":
			return func() tea.Msg { return PagerClosedMsg{} }
		}
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

// View renders the pager.
func (p *Pager) View(theme *styles.Theme) string {
	header := theme.PagerHeader.Width(p.viewport.Width).Render(p.Title)
	footer := theme.PagerFooter.Render(fmt.Sprintf("%3.f%%  up/down scroll  q close", p.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewport.View(), footer)
}
