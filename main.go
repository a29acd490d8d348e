// gptchat - chat with OpenAI models from the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gptchat-tui/internal/cli"
	"github.com/jeranaias/gptchat-tui/internal/config"
	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/ui/chat"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	}

	app, err := cli.Open(args, os.Stdout, os.Stderr)
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		return cli.ExitCode(err)
	}
	defer app.Close()

	ctx := context.Background()
	if cmd == cli.CmdTUI {
		err = runTUI(ctx, app)
	} else {
		err = cli.Execute(ctx, app, cmd, args)
	}
	if err != nil {
		app.Logger.Error("command failed", "command", cmd.String(), "error", err)
		cli.DisplayError(os.Stderr, err, args.JSON)
		return cli.ExitCode(err)
	}
	return cli.ExitSuccess
}

// runTUI starts the chat view and watches config.toml while it runs.
func runTUI(ctx context.Context, app *cli.App) error {
	cfg := app.Config
	dataDir := cfg.DataDir(app.Dir)

	// Detect the background before the program takes over the terminal.
	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))

	m := chat.New(chat.Options{
		Store:          app.Messages,
		Orchestrator:   app.Session,
		Theme:          theme,
		Markdown:       render.NewMarkdown(render.StyleFor(theme.IsDark)),
		Model:          app.Settings.Model,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		ShareDir:       dataDir,
		SaveAPIKey:     app.SaveAPIKey,
		Context:        ctx,
		Logger:         app.Logger,
	})
	defer m.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if app.Terminal != nil {
		// Frames and reply notifications share one serialized writer.
		opts = append(opts, tea.WithOutput(app.Terminal))
	}
	p := tea.NewProgram(m, opts...)

	watcher, err := config.NewWatcher(app.Dir, config.DefaultDebounce, app.Logger, func(next *config.Config, err error) {
		if err != nil {
			p.Send(chat.SettingsChangedMsg{Notice: "config.toml not reloaded: " + err.Error()})
			return
		}
		client, serr := app.ClientFor(next)
		if serr != nil {
			app.Logger.Warn("settings reloaded with errors", "error", serr)
		}
		mode := styles.ParseMode(next.UI.Theme)
		if mode == styles.ModeAuto {
			mode = theme.Resolved()
		}
		p.Send(chat.ConfigReloadedMsg{
			ShowTimestamps: next.UI.ShowTimestamps,
			Theme:          styles.NewTheme(mode),
			Client:         client,
			Notice:         "Configuration reloaded",
		})
	})
	if err != nil {
		app.Logger.Warn("config watcher unavailable", "error", err)
	} else {
		if err := watcher.Watch(); err != nil {
			app.Logger.Warn("config watcher unavailable", "error", err)
		}
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
