// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
	"github.com/jeranaias/helix-tui/internal/util"
)

// =============================================================================
// SEQUENCE PANEL
// =============================================================================

// SequencePanel renders the step list of the active sequence.
type SequencePanel struct {
	Steps       []model.Step
	Placeholder string

	// Selected is the index into Steps of the step being edited, -1 for none.
	Selected int
	Field    model.StepField
	// Editor replaces the selected field's text when non-empty.
	Editor string

	Width int
}

// View renders the steps, or the placeholder when there are none.
func (p SequencePanel) View(theme *styles.Theme) string {
	if len(p.Steps) == 0 {
		return theme.Placeholder.Render(p.Placeholder)
	}
	width := max(p.Width, 10)

	blocks := make([]string, 0, len(p.Steps))
	for i, st := range p.Steps {
		blocks = append(blocks, p.renderStep(theme, i, st, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (p SequencePanel) renderStep(theme *styles.Theme, i int, st model.Step, width int) string {
	selected := i == p.Selected
	num := theme.StepNumber.Render(strconv.Itoa(st.Number) + ".")
	indent := lipgloss.Width(num) + 1
	textWidth := max(width-indent, 4)

	title := theme.StepTitle.Render(util.TruncateWidth(st.Title, textWidth))
	content := theme.StepContent.Width(textWidth).Render(st.Content)

	if selected && p.Editor != "" {
		label := theme.FieldLabel.Render(p.Field.Label() + ":")
		if p.Field == model.FieldTitle {
			title = lipgloss.JoinVertical(lipgloss.Left, label, p.Editor)
		} else {
			content = lipgloss.JoinVertical(lipgloss.Left, label, p.Editor)
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, title, content)
	row := lipgloss.JoinHorizontal(lipgloss.Top, num+" ", body)
	if selected && p.Editor == "" {
		row = theme.StepSelected.Render(row)
	}
	return row
}

// =============================================================================
// PANE
// =============================================================================

// PaneTitle styles a panel heading; a trailing " (...)" suffix is
// highlighted.
func PaneTitle(theme *styles.Theme, title string, focused bool) string {
	base, suffix := title, ""
	if i := strings.Index(title, " ("); i >= 0 {
		base, suffix = title[:i], title[i:]
	}
	style := theme.PaneTitle
	if focused {
		style = theme.PaneTitleFocused
	}
	out := style.Render(base)
	if suffix != "" {
		out += theme.PaneTitleSuffix.Render(suffix)
	}
	return out
}

// Pane draws a bordered panel of the given outer size holding title and body.
func Pane(theme *styles.Theme, title, body string, focused bool, width, height int) string {
	style := theme.Pane
	if focused {
		style = theme.PaneFocused
	}
	innerW := max(width-style.GetHorizontalFrameSize(), 1)
	innerH := max(height-style.GetVerticalFrameSize(), 1)

	content := lipgloss.JoinVertical(lipgloss.Left, PaneTitle(theme, title, focused), body)
	content = lipgloss.NewStyle().MaxHeight(innerH).Render(content)

	return style.
		Width(innerW + style.GetHorizontalPadding()).
		Height(innerH).
		Render(content)
}
