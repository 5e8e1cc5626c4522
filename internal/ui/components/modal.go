// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

// ModalKind selects how a modal is answered.
type ModalKind int

const (
	// ModalConfirm asks yes/no.
	ModalConfirm ModalKind = iota
	// ModalAck reports a result and waits for dismissal.
	ModalAck
)

// Modal is a centered dialog drawn over the whole screen.
type Modal struct {
	Kind   ModalKind
	Title  string
	Body   string
	Danger bool
}

// Hint is the answer line shown under the body.
func (m Modal) Hint() string {
	if m.Kind == ModalConfirm {
		return "y confirm  ·  n cancel"
	}
	return "enter dismiss"
}

// View renders the modal centered in a width x height area.
func (m Modal) View(theme *styles.Theme, width, height int) string {
	titleStyle := theme.ModalTitle
	if m.Danger {
		titleStyle = theme.ModalDanger
	}
	boxWidth := min(max(width-8, 20), 60)
	inner := boxWidth - theme.Modal.GetHorizontalFrameSize()

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.Title),
		theme.NewStyle().Width(inner).Render(m.Body),
		theme.ModalHint.Render(m.Hint()),
	)
	box := theme.Modal.Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
