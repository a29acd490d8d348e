// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"os"
	"sync"
)

// LockedFile is a terminal file whose writes are serialized. The TUI
// renderer and the Terminal notifier share one, so an OSC sequence is
// never written inside a frame. Fd and Read come from the embedded file,
// which keeps raw mode and size queries working.
type LockedFile struct {
	*os.File
	mu sync.Mutex
}

// NewLockedFile wraps f.
func NewLockedFile(f *os.File) *LockedFile {
	return &LockedFile{File: f}
}

// Write implements io.Writer.
func (l *LockedFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.File.Write(p)
}

// WriteString implements io.StringWriter.
func (l *LockedFile) WriteString(s string) (int, error) {
	return l.Write([]byte(s))
}
