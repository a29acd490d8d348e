// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdSettings
	CmdConfig
	CmdHistory
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdAsk:
		return "ask"
	case CmdChat:
		return "chat"
	case CmdSettings:
		return "settings"
	case CmdConfig:
		return "config"
	case CmdHistory:
		return "history"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	DataDir  string
	Verbose  bool
	NoNotify bool
	JSON     bool
	Model    string

	// Command-specific
	Query      string
	Subcommand string

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `gptchat - chat with OpenAI models from the terminal

Usage:
  gptchat                          Start the TUI (default)
  gptchat ask "prompt"             Send one prompt and print the reply
    --save                         Keep the exchange in the history
  gptchat chat                     Interactive line-oriented chat
  gptchat settings show            Show OpenAI client settings
  gptchat settings set NAME VALUE  Change a setting
                                   (api-key, api-url, model, max-tokens,
                                    temperature, echo)
  gptchat config show              Show config.toml values
  gptchat config get KEY           Print one value (e.g. ui.theme)
  gptchat config set KEY VALUE     Change a value and save config.toml
  gptchat config path              Print the config file path
  gptchat history show             Print the stored conversation
  gptchat history clear --confirm  Delete every message
  gptchat history delete N         Delete message N (1-based)
  gptchat history export FILE      Export the conversation
    --format md|json|yaml          Export format (default: from extension)
  gptchat version                  Show version information

Global Flags:
  --data-dir DIR   Use DIR instead of ~/.gptchat
  --model NAME     Override the model for this run
  --no-notify      Do not send reply notifications
  --json           JSON output (settings show, history show)
  -v, --verbose    Debug logging

Models:
  gpt-3.5-turbo      chat completions endpoint (default)
  text-davinci-003   completions endpoint

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "gptchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses argv (without the program name) and returns the command
// and its arguments.
func Parse(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	word := remaining[0]
	cmd := strings.ToLower(word)
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 {
		parsedArgs.Subcommand = strings.ToLower(remaining[0])
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "ask":
		parsedArgs.Subcommand = ""
		parsedArgs.Query = strings.Join(NewArgParser(remaining, "save").Positionals(), " ")
		return CmdAsk, parsedArgs
	case "chat", "repl":
		parsedArgs.Subcommand = ""
		return CmdChat, parsedArgs
	case "settings", "set":
		return CmdSettings, parsedArgs
	case "config", "cfg":
		return CmdConfig, parsedArgs
	case "history", "hist":
		return CmdHistory, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		// Unknown words are treated as a prompt for ask.
		parsedArgs.Subcommand = ""
		parsedArgs.Raw = append([]string{word}, remaining...)
		parsedArgs.Query = strings.Join(parsedArgs.Raw, " ")
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			parsedArgs.Verbose = true
		case arg == "--no-notify":
			parsedArgs.NoNotify = true
		case arg == "--json":
			parsedArgs.JSON = true
		case arg == "--data-dir" || arg == "--model":
			if i+1 < len(args) {
				i++
				if arg == "--model" {
					parsedArgs.Model = args[i]
				} else {
					parsedArgs.DataDir = args[i]
				}
			}
		case strings.HasPrefix(arg, "--data-dir="):
			parsedArgs.DataDir = strings.TrimPrefix(arg, "--data-dir=")
		case strings.HasPrefix(arg, "--model="):
			parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsedArgs
}

// Execute runs a non-TUI command against app.
func Execute(ctx context.Context, app *App, cmd Command, args Args) error {
	switch cmd {
	case CmdAsk:
		return HandleAsk(ctx, app, args)
	case CmdChat:
		return HandleChat(ctx, app, args)
	case CmdSettings:
		return HandleSettings(app, args)
	case CmdConfig:
		return HandleConfig(app, args)
	case CmdHistory:
		return HandleHistory(app, args)
	case CmdVersion:
		PrintVersion(app.Out)
		return nil
	case CmdHelp:
		PrintUsage(app.Out)
		return nil
	default:
		return &UsageError{Message: "command " + cmd.String() + " needs the TUI"}
	}
}
