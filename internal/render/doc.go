// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns messages into terminal text.
//
// Markdown bodies are rendered with glamour, raw text shown in the pager
// is highlighted with chroma, and RowFor maps a message to the parts of
// its list row. Nothing here touches the UI state; every function is safe
// to call from background workers.
package render
