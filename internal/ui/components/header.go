// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/ui/styles"
	"github.com/jeranaias/helix-tui/internal/util"
)

// AppTitle is shown at the left of the header.
const AppTitle = "Helix Chat"

// Header is the title bar with the sign-in/sign-out control.
type Header struct {
	Title string
	// User is the signed-in user's label; empty when signed out.
	User   string
	SignIn string // key that toggles sign-in, e.g. "ctrl+o"
	Width  int
}

// NewHeader creates a header with the default title.
func NewHeader(signInKey string) Header {
	return Header{Title: AppTitle, SignIn: signInKey, Width: 80}
}

// Control returns the sign-in/sign-out hint.
func (h Header) Control() string {
	if h.User == "" {
		return h.SignIn + " sign in"
	}
	return h.SignIn + " sign out"
}

// View renders the header across Width cells.
func (h Header) View(theme *styles.Theme) string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - theme.Header.GetHorizontalFrameSize()

	left := theme.HeaderTitle.Render(h.Title)

	var right []string
	if h.User != "" {
		right = append(right, theme.HeaderUser.Render(h.User))
	}
	right = append(right, theme.HelpKey.Render(h.Control()))
	rightStr := strings.Join(right, theme.HelpDesc.Render("  |  "))

	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if gap < 1 {
		// Narrow terminal: drop the user label first, then truncate.
		rightStr = theme.HelpKey.Render(h.Control())
		gap = inner - lipgloss.Width(left) - lipgloss.Width(rightStr)
		if gap < 1 {
			left = theme.HeaderTitle.Render(util.TruncateWidth(h.Title, max(inner-lipgloss.Width(rightStr)-1, 1)))
			gap = max(inner-lipgloss.Width(left)-lipgloss.Width(rightStr), 1)
		}
	}

	return theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightStr)
}
