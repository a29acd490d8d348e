// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/jeranaias/gptchat-tui/internal/storage"
)

const historyUsage = "gptchat history [show|clear --confirm|delete N|export FILE [--format md|json|yaml]]"

// historyEntry is the --json form of a stored message.
type historyEntry struct {
	Index             int    `json:"index"`
	Role              string `json:"role"`
	Text              string `json:"text"`
	SentAtEpochMillis int64  `json:"sentAtEpochMillis"`
}

// HandleHistory manages the stored conversation.
func HandleHistory(app *App, args Args) error {
	parser := NewArgParser(args.Raw, "confirm")

	switch parser.Subcommand() {
	case "", "show", "list", "ls":
		if args.JSON {
			return NewJSONResponse("history show", historyEntries(app)).Print(app.Out)
		}
		printHistory(app.Out, app)
		return nil

	case "clear":
		if !parser.BoolFlag("confirm") {
			return &UsageError{Message: "history clear deletes every message; pass --confirm", Usage: historyUsage}
		}
		if err := app.Messages.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, SuccessStyle.Render("Conversation cleared"))
		return nil

	case "delete", "rm":
		n := parser.Positional(1)
		if n == "" {
			return ErrMissingArgument("N", historyUsage)
		}
		if err := deleteMessage(app, n); err != nil {
			return err
		}
		fmt.Fprintln(app.Out, SuccessStyle.Render("Message "+n+" deleted"))
		return nil

	case "export":
		path := parser.Positional(1)
		if path == "" {
			return ErrMissingArgument("FILE", historyUsage)
		}
		format := storage.FormatFromPath(path)
		if f := parser.Flag("format"); f != "" {
			parsed, err := storage.ParseFormat(f)
			if err != nil {
				return &UsageError{Message: err.Error(), Usage: historyUsage}
			}
			format = parsed
		}
		conv := app.Messages.Conversation()
		if err := storage.ExportToFile(conv, path, format); err != nil {
			return err
		}
		fmt.Fprintf(app.Out, "%s %d messages to %s\n", SuccessStyle.Render("Exported"), conv.Len(), path)
		return nil

	default:
		return &UsageError{Message: "unknown history subcommand: " + parser.Subcommand(), Usage: historyUsage}
	}
}

// deleteMessage removes the message with 1-based position n.
func deleteMessage(app *App, n string) error {
	index, err := ParsePositiveInt(n, "message number")
	if err != nil {
		return err
	}
	// RemoveAt clears everything on a bad index, so check first.
	if index > app.Messages.Len() {
		return &NotFoundError{Resource: "message", ID: n}
	}
	return app.Messages.RemoveAt(index - 1)
}

func historyEntries(app *App) []historyEntry {
	msgs := app.Messages.Conversation().Messages()
	out := make([]historyEntry, len(msgs))
	for i, msg := range msgs {
		out[i] = historyEntry{
			Index:             i + 1,
			Role:              msg.Role().String(),
			Text:              msg.Text,
			SentAtEpochMillis: msg.SentAtEpochMillis,
		}
	}
	return out
}

// printHistory writes the conversation as numbered lines.
func printHistory(w io.Writer, app *App) {
	conv := app.Messages.Conversation()
	if conv.IsEmpty() {
		fmt.Fprintln(w, DimStyle.Render("No messages."))
		return
	}
	for i, msg := range conv.Messages() {
		fmt.Fprintln(w, transcriptLine(i, msg))
	}
}
