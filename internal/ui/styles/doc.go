// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the gptchat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The ui.theme setting can force one side.

# Color System (colors.go)

	Purple  - assistant avatar and accents
	Cyan    - user avatar, brand, selection ring
	Emerald - success notices
	Amber   - warnings, the missing-key banner
	Rose    - errors

Message bubbles use semantic tokens:

	UserBubbleBg      - background for user messages
	AssistantBubbleBg - background for assistant messages

# Theme System (theme.go)

	theme := styles.NewTheme(styles.ModeAuto)
	row := theme.AssistantBubble.Width(60).Render(body)
*/
package styles
