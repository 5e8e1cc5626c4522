// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/ui/components"
	"github.com/jeranaias/helix-tui/internal/workspace"
)

// ConversationTitle heads the conversation pane.
const ConversationTitle = "Conversation"

// Layout constants, in cells.
const (
	minWidth     = 40
	minHeight    = 12
	paneFrame    = 4 // rounded border plus horizontal padding
	stepIndent   = 4 // room for the step number column
	chrome       = 2 // header and footer lines
	chatOverhead = 5 // pane borders, title, status and input lines
	seqOverhead  = 3 // pane borders and title
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) paneWidths() (chat, seq int) {
	w := max(m.width, minWidth)
	chat = w * 3 / 5
	return chat, w - chat
}

func (m Model) bodyHeight() int {
	return max(m.height, minHeight) - chrome
}

// layout sizes every widget for the current window.
func (m *Model) layout() {
	chatW, seqW := m.paneWidths()
	bodyH := m.bodyHeight()

	chatInner := max(chatW-paneFrame, 1)
	m.feedView.Width = chatInner
	m.feedView.Height = max(bodyH-chatOverhead, 1)
	m.input.Width = max(chatInner-lipgloss.Width(m.input.Prompt)-1, 1)

	seqInner := max(seqW-paneFrame, 1)
	m.seqView.Width = seqInner
	m.seqView.Height = max(bodyH-seqOverhead, 1)
	m.titleEditor.Width = max(seqInner-stepIndent-1, 1)
	m.contentEditor.SetWidth(max(seqInner-stepIndent, 1))

	m.header.Width = max(m.width, minWidth)
}

// refresh re-renders viewport contents from session state.
func (m *Model) refresh() {
	snap := m.deps.State.Snapshot()

	if snap.UserID != "" {
		label := m.user.Label()
		if label == "" {
			label = snap.UserID
		}
		m.header.User = label
	} else {
		m.header.User = ""
	}

	if !m.feedRendered || snap.Version != m.feedVersion || m.feedView.Width != m.feedWidth {
		atBottom := m.feedView.AtBottom()
		m.feedView.SetContent(m.feed.Render(snap.Messages, m.feedView.Width))
		if len(snap.Messages) != m.msgCount || atBottom {
			m.feedView.GotoBottom()
		}
		m.feedRendered = true
		m.feedVersion = snap.Version
		m.feedWidth = m.feedView.Width
		m.msgCount = len(snap.Messages)
	}

	panel := components.SequencePanel{
		Steps:       snap.Sequence.Steps,
		Placeholder: workspace.Placeholder,
		Selected:    -1,
		Field:       m.field,
		Width:       m.seqView.Width,
	}
	if m.focus == paneSequence && len(panel.Steps) > 0 {
		panel.Selected = m.sel
		panel.Editor = m.editorView()
	}
	m.seqView.SetContent(panel.View(m.theme))

	if panel.Selected > 0 {
		above := panel
		above.Steps = panel.Steps[:panel.Selected]
		above.Selected = -1
		top := lipgloss.Height(above.View(m.theme)) + 1
		if top < m.seqView.YOffset || top >= m.seqView.YOffset+m.seqView.Height {
			m.seqView.SetYOffset(top)
		}
	} else if panel.Selected == 0 {
		m.seqView.GotoTop()
	}
}

func (m Model) editorView() string {
	if m.field == model.FieldTitle {
		return m.titleEditor.View()
	}
	return m.contentEditor.View()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, max(m.height, minHeight))
	}

	snap := m.deps.State.Snapshot()
	chatW, seqW := m.paneWidths()
	bodyH := m.bodyHeight()

	chatBody := lipgloss.JoinVertical(lipgloss.Left,
		m.feedView.View(),
		components.StatusLine(m.theme, m.spin.View(), snap.Status),
		m.input.View(),
	)
	chat := components.Pane(m.theme, ConversationTitle, chatBody, m.focus == paneChat, chatW, bodyH)
	seq := components.Pane(m.theme, workspace.PanelTitle(snap), m.seqView.View(), m.focus == paneSequence, seqW, bodyH)

	footer := m.footer()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(m.theme),
		lipgloss.JoinHorizontal(lipgloss.Top, chat, seq),
		footer,
	)
}

func (m Model) footer() string {
	if m.notice != "" {
		return m.theme.WarningText.Render(m.notice)
	}
	bindings := m.keys.ChatHelp()
	if m.focus == paneSequence {
		bindings = m.keys.SequenceHelp()
	}
	return components.HelpBar(m.theme, bindings, max(m.width, minWidth))
}
