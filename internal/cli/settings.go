// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/gptchat-tui/internal/config"
	"github.com/jeranaias/gptchat-tui/internal/model"
)

const settingsUsage = "gptchat settings [show | set NAME VALUE | unset api-key|api-url]"

// HandleSettings shows and changes the OpenAI client settings.
func HandleSettings(app *App, args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return showSettings(app, args.JSON)

	case "set":
		name := parser.Positional(1)
		if name == "" {
			return ErrMissingArgument("NAME", settingsUsage)
		}
		value := strings.Join(parser.PositionalFrom(2), " ")
		if value == "" && name != "api-url" {
			return ErrMissingArgument("VALUE", settingsUsage)
		}
		if err := config.SetSetting(app.Prefs, name, value); err != nil {
			return err
		}
		if _, err := app.ReloadSettings(); err != nil {
			app.Logger.Warn("settings reloaded with errors", "error", err)
		}
		fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Set"), name)
		return nil

	case "unset":
		name := parser.Positional(1)
		if name != "api-key" && name != "api-url" {
			return &UsageError{Message: "only api-key and api-url can be unset", Usage: settingsUsage}
		}
		if err := config.SetSetting(app.Prefs, name, ""); err != nil {
			return err
		}
		_, _ = app.ReloadSettings()
		fmt.Fprintf(app.Out, "%s %s\n", SuccessStyle.Render("Unset"), name)
		return nil

	default:
		return &UsageError{Message: "unknown settings subcommand: " + parser.Subcommand(), Usage: settingsUsage}
	}
}

func showSettings(app *App, jsonMode bool) error {
	pairs := app.Settings.Display()
	if jsonMode {
		data := make(map[string]string, len(pairs)+1)
		for _, p := range pairs {
			data[p[0]] = p[1]
		}
		data["endpoint"] = app.Client.Endpoint()
		return NewJSONResponse("settings show", data).Print(app.Out)
	}

	fmt.Fprintln(app.Out, TitleStyle.Render("OpenAI settings"))
	for _, p := range pairs {
		fmt.Fprintf(app.Out, "%s %s\n", RenderLabel(p[0]), ValueStyle.Render(p[1]))
	}
	info, _ := model.GetModelInfo(app.Settings.Model)
	fmt.Fprintf(app.Out, "%s %s (%s)\n", RenderLabel("endpoint"), ValueStyle.Render(app.Client.Endpoint()), info.Endpoint)
	if !app.Settings.HasAPIKey() {
		fmt.Fprintln(app.Out)
		fmt.Fprintln(app.Out, WarningStyle.Render("No API key set. Run: gptchat settings set api-key <key>"))
	}
	return nil
}
