// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across gptchat packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: terminal-cell aware truncation (go-runewidth)
//   - SingleLine: collapse multi-line text for one-line previews
//
// Secrets:
//   - Fingerprint, MaskSecret: log-safe representations of API keys
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
