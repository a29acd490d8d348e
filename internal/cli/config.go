// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/gptchat-tui/internal/config"
)

const configUsage = "gptchat config [show | get KEY | set KEY VALUE | path]"

// HandleConfig shows and edits config.toml.
func HandleConfig(app *App, args Args) error {
	parser := NewArgParser(args.Raw)
	path := config.PathIn(app.Dir)

	switch parser.Subcommand() {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config show", app.Config).Print(app.Out)
		}
		fmt.Fprintln(app.Out, TitleStyle.Render("Configuration"))
		for _, key := range config.GetAllKeys() {
			v, err := app.Config.Get(key)
			if err != nil {
				continue
			}
			fmt.Fprintf(app.Out, "%s %s\n", LabelStyle.Width(28).Render(key), ValueStyle.Render(fmt.Sprint(v)))
		}
		fmt.Fprintln(app.Out)
		fmt.Fprintln(app.Out, DimStyle.Render("File: "+path))
		return nil

	case "get":
		key := parser.Positional(1)
		if key == "" {
			return ErrMissingArgument("KEY", configUsage)
		}
		v, err := app.Config.Get(key)
		if err != nil {
			return &UsageError{Message: err.Error(), Usage: "keys: " + strings.Join(config.GetAllKeys(), ", ")}
		}
		fmt.Fprintln(app.Out, v)
		return nil

	case "set":
		key := parser.Positional(1)
		value := strings.Join(parser.PositionalFrom(2), " ")
		if key == "" || value == "" {
			return ErrMissingArgument("KEY VALUE", configUsage)
		}
		next := app.Config.Clone()
		if err := next.Set(key, value); err != nil {
			return &UsageError{Message: err.Error(), Usage: configUsage}
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := config.SaveTOML(next, path); err != nil {
			return err
		}
		app.Config = next
		fmt.Fprintf(app.Out, "%s %s = %s\n", SuccessStyle.Render("Set"), key, value)
		return nil

	case "path":
		fmt.Fprintln(app.Out, path)
		return nil

	default:
		return &UsageError{Message: "unknown config subcommand: " + parser.Subcommand(), Usage: configUsage}
	}
}
