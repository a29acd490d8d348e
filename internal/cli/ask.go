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
	"strings"
	"syscall"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/session"
)

const askUsage = `gptchat ask "prompt" [--save]`

// HandleAsk sends one prompt and prints the reply. With --save the
// exchange goes through the orchestrator and is kept in the history;
// otherwise the stored conversation is not touched.
func HandleAsk(ctx context.Context, app *App, args Args) error {
	parser := NewArgParser(args.Raw, "save")
	prompt := strings.TrimSpace(args.Query)
	if prompt == "" && !IsTTY() {
		prompt = readInput(os.Stdin)
	}
	if prompt == "" {
		return ErrMissingArgument("prompt", askUsage)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reply string
	if parser.BoolFlag("save") {
		outcome, err := app.Session.Run(ctx, prompt)
		if err != nil {
			return err
		}
		if !outcome.OK() {
			return outcomeError(outcome)
		}
		reply = outcome.Reply.Text
	} else {
		if !app.Client.IsConfigured() {
			return session.ErrMissingKey
		}
		text, err := app.Client.SendAsync(ctx, prompt).Wait(ctx)
		if err != nil {
			return err
		}
		reply = text
	}

	if args.JSON {
		return NewJSONResponse("ask", map[string]string{
			"model": app.Settings.Model.String(),
			"reply": reply,
		}).Print(app.Out)
	}
	printReply(app, reply)
	return nil
}

// outcomeError turns a failed outcome into the error to report.
func outcomeError(o session.Outcome) error {
	if o.Err != nil {
		return o.Err
	}
	return errors.New(o.Notice)
}

// printReply renders reply as markdown when stdout is a terminal.
func printReply(app *App, reply string) {
	if !IsStdoutTTY() {
		fmt.Fprintln(app.Out, reply)
		return
	}
	md := render.NewMarkdown(app.Config.UI.Theme)
	width := app.Config.UI.WordWrap
	if width <= 0 {
		width = GetTerminalWidth() - 2
	}
	out, err := md.Render(reply, width)
	if err != nil {
		app.Logger.Debug("markdown render failed", "error", err)
	}
	fmt.Fprintln(app.Out, out)
}

// readInput reads a piped prompt.
func readInput(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, openai.MaxResponseSize))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// transcriptLine formats one message for plain-text output.
func transcriptLine(index int, msg model.Message) string {
	who := UserStyle.Render("[" + msg.Role().DisplayName() + "]")
	if !msg.IsSentByUser {
		who = AssistantStyle.Render("[" + msg.Role().DisplayName() + "]")
	}
	return fmt.Sprintf("%3d %s %s %s", index+1, DimStyle.Render(msg.TimeLabel()), who, msg.Text)
}
