// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/storage"
)

// ClipboardFunc copies text to the system clipboard.
type ClipboardFunc func(text string) error

// systemClipboard uses atotto/clipboard.
func systemClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard not supported on this system")
	}
	return clipboard.WriteAll(text)
}

// shareCmd copies msg to the clipboard. When that fails the message is
// exported as markdown into dir instead.
func shareCmd(msg model.Message, copyFn ClipboardFunc, dir string) tea.Cmd {
	return func() tea.Msg {
		if err := copyFn(msg.Text); err == nil {
			return shareDoneMsg{copied: true}
		}
		path := filepath.Join(dir, sharedFileName(msg, time.Now()))
		if err := storage.ExportMessage(msg, path); err != nil {
			return shareDoneMsg{err: err}
		}
		return shareDoneMsg{path: path}
	}
}

// sharedFileName names the export of msg, e.g. shared-20240301-150405.md.
func sharedFileName(msg model.Message, now time.Time) string {
	at := msg.SentAt()
	if msg.SentAtEpochMillis == 0 {
		at = now
	}
	return "shared-" + at.Format("20060102-150405") + ".md"
}
