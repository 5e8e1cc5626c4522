// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

func plainTheme() *styles.Theme {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return styles.NewThemeFor(r, styles.ModeDark)
}

// =============================================================================
// HEADER
// =============================================================================

func TestHeader_SignedOutAndIn(t *testing.T) {
	theme := plainTheme()
	h := NewHeader("ctrl+o")
	h.Width = 60

	out := h.View(theme)
	assert.Contains(t, out, AppTitle)
	assert.Contains(t, out, "ctrl+o sign in")
	assert.Equal(t, 60, lipgloss.Width(out))

	h.User = "Ada (ada)"
	out = h.View(theme)
	assert.Contains(t, out, "Ada (ada)")
	assert.Contains(t, out, "ctrl+o sign out")
	assert.Equal(t, 60, lipgloss.Width(out))
}

func TestHeader_NarrowDropsUser(t *testing.T) {
	h := NewHeader("ctrl+o")
	h.User = "someone-with-a-long-name"
	h.Width = 34

	out := h.View(plainTheme())
	assert.NotContains(t, out, "someone-with-a-long-name")
	assert.Contains(t, out, "sign out")
}

// =============================================================================
// FEED
// =============================================================================

func TestFeed_RendersLabelsInOrder(t *testing.T) {
	f := NewFeed(plainTheme(), false)
	out := f.Render([]model.Message{
		model.NewAssistantMessage("How can I help?"),
		model.NewUserMessage("make tea"),
	}, 40)

	helix := strings.Index(out, "Helix")
	you := strings.Index(out, "You")
	assert.True(t, helix >= 0 && you > helix, "assistant label should precede user label:\n%s", out)
	assert.Contains(t, out, "How can I help?")
	assert.Contains(t, out, "make tea")
}

func TestFeed_WrapsToWidth(t *testing.T) {
	f := NewFeed(plainTheme(), false)
	out := f.Render([]model.Message{model.NewUserMessage(strings.Repeat("word ", 30))}, 30)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 30)
	}
}

func TestFeed_Markdown(t *testing.T) {
	f := NewFeed(plainTheme(), true)
	out := f.RenderMessage(model.NewAssistantMessage("# Plan\n\nsome **bold** text"), 50)
	assert.Contains(t, out, "Plan")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "Helix")
}

// =============================================================================
// SEQUENCE PANEL
// =============================================================================

func TestSequencePanel_Placeholder(t *testing.T) {
	p := SequencePanel{Placeholder: "No sequence generated.", Selected: -1, Width: 40}
	assert.Equal(t, "No sequence generated.", p.View(plainTheme()))
}

func TestSequencePanel_StepsAndEditor(t *testing.T) {
	p := SequencePanel{
		Steps: []model.Step{
			{Number: 1, Title: "Boil water", Content: "Fill the kettle."},
			{Number: 2, Title: "Steep", Content: "Three minutes."},
		},
		Selected: 1,
		Field:    model.FieldContent,
		Editor:   "EDITOR",
		Width:    40,
	}
	out := p.View(plainTheme())
	assert.Contains(t, out, "1.")
	assert.Contains(t, out, "Boil water")
	assert.Contains(t, out, "Fill the kettle.")
	assert.Contains(t, out, "Steep")
	assert.Contains(t, out, "content:")
	assert.Contains(t, out, "EDITOR")
	assert.NotContains(t, out, "Three minutes.", "the editor replaces the selected field")
}

func TestPaneTitleSuffix(t *testing.T) {
	theme := plainTheme()
	assert.Equal(t, "Sequence (Saving...)", PaneTitle(theme, "Sequence (Saving...)", true))
	assert.Equal(t, "Sequence", PaneTitle(theme, "Sequence", false))
}

func TestPane_Size(t *testing.T) {
	out := Pane(plainTheme(), "Title", "a\nb\nc\nd\ne\nf", true, 30, 6)
	assert.Equal(t, 30, lipgloss.Width(out))
	assert.Equal(t, 6, lipgloss.Height(out))
	assert.Contains(t, out, "Title")
}

// =============================================================================
// MODAL AND HELP
// =============================================================================

func TestModal(t *testing.T) {
	theme := plainTheme()
	confirm := Modal{Kind: ModalConfirm, Title: "Delete chat history?", Body: "This cannot be undone.", Danger: true}
	out := confirm.View(theme, 80, 20)
	assert.Contains(t, out, "Delete chat history?")
	assert.Contains(t, out, "y confirm")
	assert.Equal(t, 20, lipgloss.Height(out))

	ack := Modal{Kind: ModalAck, Title: "History", Body: "Chat history deleted."}
	assert.Contains(t, ack.View(theme, 80, 20), "enter dismiss")
}

func TestStatusLine(t *testing.T) {
	theme := plainTheme()
	assert.Equal(t, " ", StatusLine(theme, "*", ""))
	assert.Equal(t, "* Adding step...", StatusLine(theme, "*", "Adding step..."))
}

func TestHelpBar_FitsWidth(t *testing.T) {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete history")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
	theme := plainTheme()

	full := HelpBar(theme, bindings, 200)
	assert.Contains(t, full, "ctrl+c quit")

	short := HelpBar(theme, bindings, 20)
	assert.Equal(t, "tab switch pane", short)

	bindings[0].SetEnabled(false)
	assert.NotContains(t, HelpBar(theme, bindings, 200), "switch pane")
}
