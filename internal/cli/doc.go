// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// gptchat.
//
// Commands:
//
//	gptchat                      Start the TUI (default)
//	gptchat ask "prompt"         Send one prompt and print the reply
//	gptchat chat                 Line-oriented chat (REPL)
//	gptchat settings [show|set]  OpenAI client settings
//	gptchat config [show|get|set|path]
//	gptchat history [show|clear|delete|export]
//	gptchat version
//
// Every command works on the same App: the preference store, the message
// store and the send orchestrator wired from the configuration directory.
package cli
