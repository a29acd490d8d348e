// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/peterh/liner"

	"github.com/jeranaias/gptchat-tui/internal/session"
)

// HistoryFileName holds REPL input history inside the config directory.
const HistoryFileName = "chat_history"

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of input.
type LineReader interface {
	ReadInput(prompt string) (string, error)
	Close()
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a liner-backed reader with history kept in dir.
func NewChatCLI(dir string) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, HistoryFileName),
	}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput reads a line and records it in the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves the history with 0600 permissions and restores the terminal.
func (c *ChatCLI) Close() {
	if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		_, _ = c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// Repl is the line-oriented chat loop.
type Repl struct {
	app    *App
	reader LineReader
	out    io.Writer

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRepl creates a REPL reading from reader.
func NewRepl(app *App, reader LineReader) *Repl {
	return &Repl{app: app, reader: reader, out: app.Out}
}

// HandleChat runs the interactive chat.
func HandleChat(ctx context.Context, app *App, args Args) error {
	if !IsTTY() {
		return &UsageError{Message: "chat needs an interactive terminal; use 'gptchat ask' for piped input"}
	}
	reader := NewChatCLI(app.Dir)
	defer reader.Close()

	r := NewRepl(app, reader)

	// Ctrl+C while a request is in flight cancels it.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if r.CancelCurrent() {
				fmt.Fprintln(app.Err, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	return r.Run(ctx)
}

// Run reads lines until /exit or end of input.
func (r *Repl) Run(ctx context.Context) error {
	r.printWelcome()
	for {
		input, err := r.reader.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt (liner.ErrPromptAborted) or EOF.
			fmt.Fprintln(r.out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := r.handleSlashCommand(input)
			if err != nil {
				DisplayError(r.out, err, false)
			}
			if !cont {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		r.send(ctx, input)
	}
}

// CancelCurrent aborts the request in flight. It reports whether one was
// running.
func (r *Repl) CancelCurrent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	r.cancel = nil
	return true
}

func (r *Repl) send(ctx context.Context, input string) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	fmt.Fprintln(r.out, DimStyle.Render("requesting..."))
	outcome, err := r.app.Session.Run(ctx, input)
	switch {
	case errors.Is(err, session.ErrMissingKey):
		fmt.Fprintln(r.out, WarningStyle.Render(err.Error()+": run 'gptchat settings set api-key <key>'"))
		return
	case err != nil:
		DisplayError(r.out, err, false)
		return
	}

	switch outcome.Kind {
	case session.Replied:
		fmt.Fprintln(r.out, AssistantStyle.Render("assistant>")+" "+outcome.Reply.Text)
	case session.Canceled:
		fmt.Fprintln(r.out, WarningStyle.Render(outcome.Notice))
	default:
		msg := outcome.Notice
		if outcome.RolledBack {
			msg += " (message removed)"
		}
		fmt.Fprintln(r.out, ErrorStyle.Render("[ERROR]")+" "+msg)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand runs a /command. It returns false to end the REPL.
func (r *Repl) handleSlashCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/exit", "/quit", "/q":
		return false, nil
	case "/help", "/?":
		r.printHelp()
	case "/history", "/h":
		printHistory(r.out, r.app)
	case "/clear":
		if err := r.app.Messages.Clear(); err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("Conversation cleared"))
	case "/delete", "/del":
		if len(args) == 0 {
			return true, ErrMissingArgument("N", "/delete N")
		}
		if err := deleteMessage(r.app, args[0]); err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("Message "+args[0]+" deleted"))
	case "/model":
		fmt.Fprintln(r.out, r.app.Settings.Model.String())
	default:
		return true, &UsageError{Message: "unknown command " + name + " (try /help)"}
	}
	return true, nil
}

func (r *Repl) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render("gptchat "+Version))
	fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Model"), ValueStyle.Render(r.app.Settings.Model.String()))
	fmt.Fprintf(r.out, "%s %d\n", RenderLabel("Messages"), r.app.Messages.Len())
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, /exit to quit."))
	fmt.Fprintln(r.out)
}

func (r *Repl) printHelp() {
	fmt.Fprintln(r.out, `Commands:
  /history     Show the conversation
  /delete N    Delete message N
  /clear       Delete every message
  /model       Show the model in use
  /exit        Quit`)
}
