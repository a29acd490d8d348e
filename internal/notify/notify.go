// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package notify

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/muesli/termenv"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

const (
	// AssistantTitle is the fixed title of reply notifications.
	AssistantTitle = "Assistant"

	// IntentOpenChat asks the receiver to bring the chat view forward.
	IntentOpenChat = "open-chat"

	// maxBodyWidth bounds the body written to the terminal.
	maxBodyWidth = 200
)

// Notification is a single local notification.
type Notification struct {
	Title  string
	Body   string
	Intent string
}

// ForMessage builds the reply notification for msg.
func ForMessage(msg model.Message) Notification {
	return Notification{
		Title:  AssistantTitle,
		Body:   msg.Text,
		Intent: IntentOpenChat,
	}
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification) error
}

// Func adapts a function to Notifier.
type Func func(n Notification) error

// Notify implements Notifier.
func (f Func) Notify(n Notification) error {
	return f(n)
}

// =============================================================================
// TERMINAL
// =============================================================================

// Terminal writes OSC 777 notifications to a terminal.
type Terminal struct {
	mu  sync.Mutex
	out *termenv.Output
}

// NewTerminal creates a terminal notifier writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{out: termenv.NewOutput(w)}
}

// Notify implements Notifier. The body is flattened to one line since the
// escape sequence cannot carry line breaks.
func (t *Terminal) Notify(n Notification) error {
	body := util.TruncateWidth(util.SingleLine(n.Body), maxBodyWidth)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.out.Notify(n.Title, body)
	return nil
}

// =============================================================================
// LOG
// =============================================================================

// Log records notifications to a logger. It is used when the terminal
// cannot display them.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a logging notifier. A nil logger uses slog.Default.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Notify implements Notifier.
func (l *Log) Notify(n Notification) error {
	l.logger.Info("notification",
		"title", n.Title,
		"intent", n.Intent,
		"body_len", util.RuneLen(n.Body))
	return nil
}

// =============================================================================
// COMBINATORS
// =============================================================================

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(Notification) error { return nil }

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

// Sent returns a copy of the recorded notifications.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}
