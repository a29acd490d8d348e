// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

// =============================================================================
// TOAST TESTS
// =============================================================================

func TestToastManager_ExpiresAndCaps(t *testing.T) {
	m := NewToastManager()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	m.AddStatus("one")
	m.AddError("two")
	m.AddSuccess("three")
	m.AddStatus("four")

	toasts := m.Toasts()
	if len(toasts) != 3 {
		t.Fatalf("expected 3 toasts after cap, got %d", len(toasts))
	}
	if toasts[0].Message != "four" {
		t.Errorf("newest toast should be first, got %q", toasts[0].Message)
	}

	now = now.Add(DefaultToastDuration)
	remaining := m.Tick()
	if len(remaining) != 1 || remaining[0].Message != "two" {
		t.Errorf("only the error toast should survive, got %+v", remaining)
	}

	now = now.Add(ErrorToastDuration)
	if m.Tick(); m.HasToasts() {
		t.Error("all toasts should have expired")
	}
}

func TestRenderToasts(t *testing.T) {
	if RenderToasts(testTheme(), nil, 80) != "" {
		t.Error("no toasts should render empty")
	}
	out := RenderToasts(testTheme(), []Toast{{Message: "rate limited", Kind: ToastKindError}}, 80)
	if !strings.Contains(out, "rate limited") || !strings.Contains(out, styles.StatusIndicators.Error) {
		t.Errorf("toast missing content: %q", out)
	}
}

// =============================================================================
// ROW TESTS
// =============================================================================

func TestMessageRow_AssistantHasActions(t *testing.T) {
	theme := testTheme()
	at := time.Date(2024, 1, 1, 9, 5, 0, 0, time.Local)

	bot := MessageRow{Row: render.RowFor(model.NewMessage("hi there", false, at)), ShowTimestamps: true, Width: 60}
	out := bot.View(theme)
	for _, want := range []string{"AI", "hi there", "9:05 AM", "[v]", "iew", "[s]", "hare"} {
		if !strings.Contains(out, want) {
			t.Errorf("assistant row missing %q:\n%s", want, out)
		}
	}

	user := MessageRow{Row: render.RowFor(model.NewMessage("hello", true, at)), Width: 60}
	out = user.View(theme)
	if strings.Contains(out, "[v]") || strings.Contains(out, "9:05 AM") {
		t.Errorf("user row without timestamps should have no actions or time:\n%s", out)
	}
}

func TestMessageRow_StylesBySender(t *testing.T) {
	theme := testTheme()

	// An assistant row without actions still gets assistant styling.
	bot := MessageRow{Row: render.Row{Avatar: "AI", Body: "hi"}}
	_, bubble := bot.senderStyles(theme)
	if bubble.GetBorderTopForeground() != theme.AssistantBubble.GetBorderTopForeground() {
		t.Error("assistant row without actions should use the assistant bubble")
	}

	user := MessageRow{Row: render.RowFor(model.NewUserMessage("hello"))}
	_, bubble = user.senderStyles(theme)
	if bubble.GetBorderTopForeground() != theme.UserBubble.GetBorderTopForeground() {
		t.Error("user row should use the user bubble")
	}
}

func TestMessageRow_FitsWidth(t *testing.T) {
	row := MessageRow{Row: render.RowFor(model.NewAssistantMessage(strings.Repeat("word ", 50))), Width: 40}
	for _, line := range strings.Split(row.View(testTheme()), "\n") {
		if w := lipgloss.Width(line); w > 41 {
			t.Errorf("line width %d exceeds row width: %q", w, line)
		}
	}
}

// =============================================================================
// STATUS BAR TESTS
// =============================================================================

func TestStatusBar(t *testing.T) {
	theme := testTheme()
	bar := StatusBar{
		Section:   "[You]: hello",
		Shortcuts: []Shortcut{{"enter", "send"}, {"d", "delete"}},
		Width:     80,
	}
	out := bar.View(theme)
	if !strings.Contains(out, "[You]: hello") || !strings.Contains(out, "send") {
		t.Errorf("status bar missing content: %q", out)
	}

	bar.Busy, bar.Spinner, bar.BusyText = true, "*", "Requesting"
	if out := bar.View(theme); strings.Contains(out, "[You]") || !strings.Contains(out, "Requesting") {
		t.Errorf("busy status bar should replace section label: %q", out)
	}

	bar.Width = 20
	if w := lipgloss.Width(bar.View(theme)); w > 20 {
		t.Errorf("narrow status bar width = %d", w)
	}
}

// =============================================================================
// DIALOG AND PAGER TESTS
// =============================================================================

func TestConfirmDialog(t *testing.T) {
	d := NewConfirmDialog("Delete message", "Delete this message?", "delete", "id-1")

	if cmd := d.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("unrelated keys should be ignored")
	}

	res := d.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})().(ConfirmResultMsg)
	if !res.Confirmed || res.Action != "delete" || res.Target != "id-1" {
		t.Errorf("confirm result = %+v", res)
	}

	res = d.HandleKey(tea.KeyMsg{Type: tea.KeyEsc})().(ConfirmResultMsg)
	if res.Confirmed {
		t.Error("esc should decline")
	}

	if out := d.View(testTheme(), 0, 0); !strings.Contains(out, "Delete this message?") {
		t.Errorf("dialog missing prompt: %q", out)
	}
}

func TestPager(t *testing.T) {
	p := NewPager("Assistant 3:04 PM", "line 1\nline 2", 40, 10)
	if out := p.View(testTheme()); !strings.Contains(out, "line 2") || !strings.Contains(out, "Assistant") {
		t.Errorf("pager view = %q", out)
	}
	cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should close the pager")
	}
	if _, ok := cmd().(PagerClosedMsg); !ok {
		t.Error("expected PagerClosedMsg")
	}
}

func TestBanners(t *testing.T) {
	out := RenderMissingKeyBanner(testTheme(), "gptchat settings set api-key <key>", 80, 20)
	if !strings.Contains(out, MissingKeyTitle) || !strings.Contains(out, "api-key") {
		t.Errorf("banner = %q", out)
	}
	if out := RenderEmptyState(testTheme(), 0, 0); !strings.Contains(out, "No messages") {
		t.Errorf("empty state = %q", out)
	}
}

func TestHeader(t *testing.T) {
	out := Header{Model: model.TextDavinci003, Width: 60}.View(testTheme())
	if !strings.Contains(out, "gptchat") || !strings.Contains(out, "completion") {
		t.Errorf("header = %q", out)
	}
}
