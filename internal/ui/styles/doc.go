// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the helix TUI.

# Color System (colors.go)

Every color is a Lip Gloss AdaptiveColor, resolved against the theme's
background setting:

	Accent    - brand, focused pane borders, the selected step
	Info      - user messages and key hints
	Success   - save confirmations
	Warning   - "Saving..." and "Not saved" panel suffixes
	Danger    - destructive prompts and failures

# Theme System (theme.go)

A Theme is built for a mode taken from the ui.theme config key:

	theme := styles.NewTheme(styles.ModeAuto)
	theme.PaneFocused.Render(body)
	theme.GlamourStyle() // "dark" or "light", for assistant markdown

ModeDark and ModeLight pin the background; ModeAuto asks the terminal
through termenv.
*/
package styles
