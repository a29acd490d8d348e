// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

const (
	// DefaultWrap is used when the caller passes a non-positive width.
	DefaultWrap = 80

	// minWrap keeps narrow terminals readable.
	minWrap = 20
)

// Markdown renders markdown with glamour. Renderers are cached per wrap
// width.
type Markdown struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer. style is "dark", "light" or "auto".
// "auto" queries the terminal on first render, so it must not be used
// while a Bubble Tea program reads stdin; use StyleFor there.
func NewMarkdown(style string) *Markdown {
	return &Markdown{
		style:     style,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// StyleFor returns the fixed glamour style matching a background.
func StyleFor(dark bool) string {
	if dark {
		return "dark"
	}
	return "light"
}

// Style returns the configured style name.
func (m *Markdown) Style() string {
	return m.style
}

// Render renders text wrapped to width. On failure the text is returned
// unchanged together with the error.
func (m *Markdown) Render(text string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWrap
	}
	if width < minWrap {
		width = minWrap
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.rendererLocked(width)
	if err != nil {
		return text, err
	}
	out, err := r.Render(text)
	if err != nil {
		return text, err
	}
	return trimBlankLines(out), nil
}

// MustRender is Render without the error.
func (m *Markdown) MustRender(text string, width int) string {
	out, _ := m.Render(text, width)
	return out
}

func (m *Markdown) rendererLocked(width int) (*glamour.TermRenderer, error) {
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch m.style {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(m.style))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

// trimBlankLines drops the blank margin lines glamour adds around a
// document.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(ansi.Strip(lines[start])) == "" {
		start++
	}
	for end > start && strings.TrimSpace(ansi.Strip(lines[end-1])) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
