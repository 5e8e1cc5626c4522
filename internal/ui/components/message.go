// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

// =============================================================================
// CONVERSATION FEED
// =============================================================================

// Feed renders the message history. Assistant replies are rendered as
// markdown when Markdown is set.
type Feed struct {
	Markdown bool

	theme *styles.Theme

	// glamour renderers are bound to a wrap width, so one is kept per width.
	md      *glamour.TermRenderer
	mdWidth int
}

// NewFeed creates a feed renderer.
func NewFeed(theme *styles.Theme, markdown bool) *Feed {
	return &Feed{theme: theme, Markdown: markdown}
}

// SetTheme switches the theme and drops the cached markdown renderer.
func (f *Feed) SetTheme(theme *styles.Theme) {
	f.theme = theme
	f.md = nil
}

// Render draws every message, oldest first, wrapped to width.
func (f *Feed) Render(msgs []model.Message, width int) string {
	if width < 10 {
		width = 10
	}
	blocks := make([]string, 0, len(msgs))
	for _, m := range msgs {
		blocks = append(blocks, f.RenderMessage(m, width))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderMessage draws one message with its sender label.
func (f *Feed) RenderMessage(m model.Message, width int) string {
	t := f.theme
	if m.IsUser() {
		bubble := t.UserBubble
		body := bubble.Width(width - bubble.GetHorizontalBorderSize()).Render(m.Text)
		return lipgloss.JoinVertical(lipgloss.Left, t.UserLabel.Render(m.Sender.DisplayName()), body)
	}

	bubble := t.AssistantBubble
	inner := width - bubble.GetHorizontalFrameSize()
	text := m.Text
	if f.Markdown {
		text = f.markdown(m.Text, inner)
	}
	body := bubble.Width(width - bubble.GetHorizontalBorderSize()).Render(text)
	return lipgloss.JoinVertical(lipgloss.Left, t.AssistantLabel.Render(m.Sender.DisplayName()), body)
}

// markdown renders text with glamour, falling back to the raw text.
func (f *Feed) markdown(text string, width int) string {
	if f.md == nil || f.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(f.theme.GlamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		f.md, f.mdWidth = r, width
	}
	out, err := f.md.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
