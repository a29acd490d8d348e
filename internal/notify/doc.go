// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify posts desktop notifications when assistant replies arrive.
//
// A Notifier delivers one Notification. The terminal notifier emits the
// OSC 777 escape sequence, which terminals such as iTerm2, kitty and
// WezTerm turn into a desktop notification. Emitter subscribes to the
// message store and notifies for every appended assistant message.
package notify
