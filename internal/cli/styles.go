// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Accent)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(28)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Danger).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Warning)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Accent).
			Bold(true)

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(styles.UserBubbleBorder).
			Bold(true)

	AssistantLabelStyle = lipgloss.NewStyle().
				Foreground(styles.AssistantBubbleBorder).
				Bold(true)

	StepNumberStyle = lipgloss.NewStyle().
			Foreground(styles.Accent).
			Bold(true)
)

// RenderSeparator renders a horizontal rule, 60 cells by default.
func RenderSeparator(width ...int) string {
	w := 60
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return DimStyle.Render(strings.Repeat("─", w))
}

// RenderLabel renders a left column label.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}
