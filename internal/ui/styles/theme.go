// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode selects the background the palette is resolved against.
type Mode string

const (
	ModeDark  Mode = "dark"
	ModeLight Mode = "light"
	ModeAuto  Mode = "auto"
)

// ParseMode maps a ui.theme value to a Mode. Unknown values mean auto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDark:
		return ModeDark
	case ModeLight:
		return ModeLight
	default:
		return ModeAuto
	}
}

// Theme holds all the styled components for the application.
type Theme struct {
	Mode         Mode
	IsDark       bool
	ColorProfile termenv.Profile

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	// ==========================================================================
	// PANES
	// ==========================================================================

	Pane             lipgloss.Style
	PaneFocused      lipgloss.Style
	PaneTitle        lipgloss.Style
	PaneTitleFocused lipgloss.Style
	PaneTitleSuffix  lipgloss.Style

	// ==========================================================================
	// CONVERSATION
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Status          lipgloss.Style
	Spinner         lipgloss.Style
	InputPrompt     lipgloss.Style

	// ==========================================================================
	// SEQUENCE EDITOR
	// ==========================================================================

	StepNumber   lipgloss.Style
	StepTitle    lipgloss.Style
	StepContent  lipgloss.Style
	StepSelected lipgloss.Style
	FieldLabel   lipgloss.Style
	Placeholder  lipgloss.Style

	// ==========================================================================
	// MODAL
	// ==========================================================================

	Modal       lipgloss.Style
	ModalTitle  lipgloss.Style
	ModalDanger lipgloss.Style
	ModalHint   lipgloss.Style

	// ==========================================================================
	// HELP AND FEEDBACK
	// ==========================================================================

	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style
	ErrorText   lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
}

// NewTheme creates a theme for stdout.
func NewTheme(mode Mode) *Theme {
	return NewThemeFor(lipgloss.NewRenderer(os.Stdout), mode)
}

// NewThemeFor creates a theme bound to r. Dark and light modes override the
// renderer's background detection.
func NewThemeFor(r *lipgloss.Renderer, mode Mode) *Theme {
	switch mode {
	case ModeDark:
		r.SetHasDarkBackground(true)
	case ModeLight:
		r.SetHasDarkBackground(false)
	default:
		mode = ModeAuto
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       r.HasDarkBackground(),
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.initStyles()
	return t
}

// Renderer returns the renderer styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// NewStyle returns an empty style bound to the theme's renderer.
func (t *Theme) NewStyle() lipgloss.Style {
	return t.renderer.NewStyle()
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	s := t.renderer.NewStyle

	t.Header = s().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = s().
		Bold(true).
		Foreground(Accent)
	t.HeaderUser = s().
		Foreground(TextSecondary)

	pane := s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)
	t.Pane = pane
	t.PaneFocused = pane.BorderForeground(Accent)
	t.PaneTitle = s().
		Bold(true).
		Foreground(TextSecondary)
	t.PaneTitleFocused = s().
		Bold(true).
		Foreground(Accent)
	t.PaneTitleSuffix = s().
		Italic(true).
		Foreground(Warning)

	t.UserLabel = s().
		Bold(true).
		Foreground(Info)
	t.AssistantLabel = s().
		Bold(true).
		Foreground(Accent)
	t.UserBubble = s().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).BorderRight(false).BorderBottom(false).
		BorderForeground(UserBubbleBorder).
		PaddingLeft(1)
	t.AssistantBubble = s().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderTop(false).BorderRight(false).BorderBottom(false).
		BorderForeground(AssistantBubbleBorder).
		PaddingLeft(1)
	t.Status = s().
		Italic(true).
		Foreground(TextMuted)
	t.Spinner = s().
		Foreground(Accent)
	t.InputPrompt = s().
		Bold(true).
		Foreground(Info)

	t.StepNumber = s().
		Bold(true).
		Foreground(Accent)
	t.StepTitle = s().
		Bold(true).
		Foreground(TextPrimary)
	t.StepContent = s().
		Foreground(TextSecondary)
	t.StepSelected = s().
		Background(AccentDeep)
	t.FieldLabel = s().
		Foreground(TextMuted)
	t.Placeholder = s().
		Italic(true).
		Foreground(TextMuted)

	t.Modal = s().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Accent).
		Padding(1, 2)
	t.ModalTitle = s().
		Bold(true).
		Foreground(Accent).
		MarginBottom(1)
	t.ModalDanger = s().
		Bold(true).
		Foreground(Danger).
		MarginBottom(1)
	t.ModalHint = s().
		Foreground(TextMuted).
		MarginTop(1)

	t.HelpKey = s().
		Bold(true).
		Foreground(Info)
	t.HelpDesc = s().
		Foreground(TextMuted)
	t.ErrorText = s().
		Foreground(Danger)
	t.SuccessText = s().
		Foreground(Success)
	t.WarningText = s().
		Foreground(Warning)
}
