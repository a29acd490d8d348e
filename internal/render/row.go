// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

// Row is everything a list row shows for one message.
type Row struct {
	// IsSentByUser selects user or assistant styling.
	IsSentByUser bool

	// Avatar is the short sender badge.
	Avatar string

	// Sender is the display name of the sender.
	Sender string

	// Body is the raw markdown text.
	Body string

	// Time is the send time as h:mm a.
	Time string

	// Actions lists footer actions; only assistant rows have them.
	Actions []Action
}

// Action is a footer control on a row.
type Action struct {
	Key   string
	Label string
}

var assistantActions = []Action{
	{Key: "v", Label: "view"},
	{Key: "s", Label: "share"},
}

// RowFor maps msg to its row. It depends on nothing but msg.
func RowFor(msg model.Message) Row {
	row := Row{
		IsSentByUser: msg.IsSentByUser,
		Sender:       msg.Role().DisplayName(),
		Body:         msg.Text,
		Time:         msg.TimeLabel(),
	}
	if msg.IsSentByUser {
		row.Avatar = "You"
		return row
	}
	row.Avatar = "AI"
	row.Actions = append([]Action(nil), assistantActions...)
	return row
}

// Display returns the action as shown in the footer, e.g. "[v]iew".
func (a Action) Display() string {
	return "[" + a.Key + "]" + trimPrefix(a.Label, a.Key)
}

func trimPrefix(label, key string) string {
	if len(label) >= len(key) && label[:len(key)] == key {
		return label[len(key):]
	}
	return " " + label
}

// Preview returns a single-line preview of text no wider than width cells.
func Preview(text string, width int) string {
	return util.TruncateWidth(util.SingleLine(text), width)
}
