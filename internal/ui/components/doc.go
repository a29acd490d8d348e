// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the gptchat TUI.
//
// # Components
//
//   - MessageRow: one conversation row (avatar, body, time, actions)
//   - Header: title bar with the active model
//   - StatusBar: section label, request state and key hints
//   - ConfirmDialog: yes/no prompt for deletions
//   - Pager: full-text view of one message
//   - ToastManager: auto-dismissing notices
//   - RenderMissingKeyBanner: shown while no API key is configured
package components
