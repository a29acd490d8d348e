// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/jeranaias/gptchat-tui/internal/model"
)

func TestRowFor(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 4, 0, 0, time.Local)

	user := RowFor(model.NewMessage("hello", true, at))
	if !user.IsSentByUser || user.Avatar != "You" || user.Sender != "You" {
		t.Errorf("user row = %+v", user)
	}
	if user.Time != "3:04 PM" {
		t.Errorf("user time = %q, want 3:04 PM", user.Time)
	}
	if len(user.Actions) != 0 {
		t.Errorf("user rows have no actions, got %v", user.Actions)
	}

	bot := RowFor(model.NewMessage("hi", false, at))
	if bot.IsSentByUser || bot.Sender != "Assistant" || bot.Body != "hi" {
		t.Errorf("assistant row = %+v", bot)
	}
	if len(bot.Actions) != 2 || bot.Actions[0].Display() != "[v]iew" || bot.Actions[1].Display() != "[s]hare" {
		t.Errorf("assistant actions = %+v", bot.Actions)
	}
}

func TestRowForIsPure(t *testing.T) {
	msg := model.NewMessage("same", false, time.Unix(0, 0))
	a, b := RowFor(msg), RowFor(msg)
	a.Actions[0].Key = "x"
	if b.Actions[0].Key != "v" {
		t.Error("rows must not share action slices")
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("line one\nline two", 100); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
	if got := Preview(strings.Repeat("a", 50), 10); len([]rune(got)) > 10 {
		t.Errorf("Preview too wide: %q", got)
	}
}

func TestMarkdownRender(t *testing.T) {
	md := NewMarkdown("dark")
	out, err := md.Render("# Title\n\nSome **bold** text.", 40)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(ansi.Strip(out), "Title") || !strings.Contains(ansi.Strip(out), "bold") {
		t.Errorf("rendered output missing content: %q", out)
	}
	if strings.HasPrefix(out, "\n") || strings.HasSuffix(out, "\n") {
		t.Errorf("rendered output should be trimmed: %q", out)
	}
}

func TestHighlightAscii(t *testing.T) {
	code := "func main() {}"
	if got := Highlight(code, "go", termenv.Ascii, true); got != code {
		t.Errorf("Ascii profile should return plain text, got %q", got)
	}
	if got := Highlight(code, "go", termenv.ANSI256, true); !strings.Contains(got, "\x1b[") {
		t.Errorf("ANSI256 profile should add escapes, got %q", got)
	}
}

func TestTrimBlankLines(t *testing.T) {
	in := "\x1b[0m  \x1b[0m\n  body line\n\x1b[38;5;252m \x1b[0m\n"
	if got := trimBlankLines(in); got != "  body line" {
		t.Errorf("trimBlankLines = %q", got)
	}
}

func TestStyleFor(t *testing.T) {
	if got := StyleFor(true); got != "dark" {
		t.Errorf("StyleFor(true) = %q", got)
	}
	if got := StyleFor(false); got != "light" {
		t.Errorf("StyleFor(false) = %q", got)
	}
	if got := NewMarkdown(StyleFor(false)).Style(); got != "light" {
		t.Errorf("Style() = %q", got)
	}
}
