// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/identity"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/ui/components"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

// Modal text.
const (
	DeleteConfirmTitle = "Delete chat history?"
	DeleteConfirmBody  = "All messages and sequences stored for this account will be removed."
	DeleteResultTitle  = "Chat history"
)

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case signedInMsg:
		return m.handleSignedIn(msg)

	case historyMsg:
		m.deps.Bootstrap.Apply(msg.res)
		m.syncEditor()

	case classifiedMsg:
		// The chat request is issued only once classification has resolved.
		m.deps.Conversation.AwaitReply(msg.cycle, msg.intent)
		cmd = m.fetchCmd(msg.cycle)

	case replyMsg:
		m.deps.Conversation.Resolve(msg.cycle, msg.reply, msg.err)
		m.syncEditor()

	case deleteDoneMsg:
		ack := m.deps.Bootstrap.CompleteDelete(msg.err)
		m.modal = &components.Modal{
			Kind:   components.ModalAck,
			Title:  DeleteResultTitle,
			Body:   ack.Message,
			Danger: !ack.OK,
		}
		m.syncEditor()

	case StateChangedMsg:
		// Save status changed; refresh below picks it up.

	case ConfigChangedMsg:
		cmd = m.applyConfig(msg.Config)

	case flushedMsg:
		m.logger.Info("pending saves flushed on quit", "count", msg.saved)
		m.cancel()
		return m, tea.Quit

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
	}

	m.refresh()
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.notice = "Saving pending edits..."
		return m, m.flushCmd()
	}
	if m.modal != nil {
		return m.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == paneChat {
			m.focus = paneSequence
		} else {
			m.focus = paneChat
		}
		m.syncEditor()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.SignInOut):
		return m.toggleSignIn()

	case key.Matches(msg, m.keys.DeleteHistory):
		if m.deps.State.UserID() == "" {
			return m, nil
		}
		m.modal = &components.Modal{
			Kind:   components.ModalConfirm,
			Title:  DeleteConfirmTitle,
			Body:   DeleteConfirmBody,
			Danger: true,
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyReply):
		return m.copyLastReply()
	}

	if m.focus == paneChat {
		return m.handleChatKey(msg)
	}
	return m.handleSequenceKey(msg)
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal.Kind {
	case components.ModalConfirm:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.modal = nil
			return m, m.deleteCmd()
		case key.Matches(msg, m.keys.Cancel):
			m.modal = nil
		}
	case components.ModalAck:
		if key.Matches(msg, m.keys.Dismiss) {
			m.modal = nil
		}
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		cy, err := m.deps.Conversation.Submit(m.input.Value())
		if err != nil {
			m.logger.Debug("submit ignored", "reason", err)
			return m, nil
		}
		m.input.Reset()
		m.refresh()
		return m, m.classifyCmd(cy)

	case key.Matches(msg, m.keys.ScrollUp):
		m.feedView.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.feedView.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSequenceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	steps := m.deps.State.Sequence().Steps
	if len(steps) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.moveField(1)
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.moveField(-1)
		m.refresh()
		return m, nil
	}

	if m.sel >= len(steps) {
		m.syncEditor()
	}
	number := steps[m.sel].Number
	if m.lossy {
		return m, m.showNotice(lossyNotice)
	}

	var cmd tea.Cmd
	if m.field == model.FieldTitle {
		before := m.titleEditor.Value()
		m.titleEditor, cmd = m.titleEditor.Update(msg)
		if v := m.titleEditor.Value(); v != before {
			m.edit(number, v)
		}
	} else {
		before := m.contentEditor.Value()
		m.contentEditor, cmd = m.contentEditor.Update(msg)
		if v := m.contentEditor.Value(); v != before {
			m.edit(number, v)
		}
	}
	m.refresh()
	return m, cmd
}

func (m *Model) edit(stepNumber int, value string) {
	if err := m.deps.Workspace.Edit(stepNumber, m.field, value); err != nil {
		m.logger.Debug("edit rejected", "step", stepNumber, "error", err)
	}
}

// =============================================================================
// SESSION ACTIONS
// =============================================================================

func (m Model) handleSignedIn(msg signedInMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("sign-in failed", "error", msg.err)
		cmd := m.showNotice("Sign-in failed: " + msg.err.Error())
		m.refresh()
		return m, cmd
	}

	m.user = msg.user
	var cmd tea.Cmd
	if m.deps.Bootstrap.SetIdentity(msg.user.ID) {
		cmd = m.loadCmd()
	}
	m.syncEditor()
	m.refresh()
	return m, cmd
}

func (m Model) toggleSignIn() (tea.Model, tea.Cmd) {
	if m.deps.State.UserID() == "" {
		return m, m.signInCmd()
	}
	m.deps.Identity.SignOut()
	m.deps.Bootstrap.SignOut()
	m.user = identity.User{}
	m.syncEditor()
	cmd := m.showNotice("Signed out.")
	m.refresh()
	return m, cmd
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	last, ok := m.deps.State.LastAssistantMessage()
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	if err := m.deps.Clipboard(last.Text); err != nil {
		m.logger.Warn("clipboard write failed", "error", err)
		cmd = m.showNotice("Copy failed: " + err.Error())
	} else {
		cmd = m.showNotice("Copied last reply.")
	}
	m.refresh()
	return m, cmd
}

func (m *Model) applyConfig(cfg *config.Config) tea.Cmd {
	if cfg == nil {
		return nil
	}
	m.theme = styles.NewThemeFor(m.theme.Renderer(), styles.ParseMode(cfg.UI.Theme))
	m.feed.SetTheme(m.theme)
	m.feed.Markdown = cfg.UI.RenderMarkdown
	m.feedRendered = false
	return m.showNotice("Configuration reloaded.")
}

// =============================================================================
// SEQUENCE SELECTION
// =============================================================================

// moveField steps through (step, field) pairs in reading order, wrapping.
func (m *Model) moveField(delta int) {
	steps := m.deps.State.Sequence().Steps
	if len(steps) == 0 {
		return
	}
	n := len(steps) * 2
	pos := m.sel * 2
	if m.field == model.FieldContent {
		pos++
	}
	pos = ((pos+delta)%n + n) % n
	m.sel = pos / 2
	m.field = model.FieldTitle
	if pos%2 == 1 {
		m.field = model.FieldContent
	}
	m.loadEditor()
}

// syncEditor clamps the selection to the current sequence and reloads the
// editor from state.
func (m *Model) syncEditor() {
	steps := m.deps.State.Sequence().Steps
	if m.sel >= len(steps) {
		m.sel = max(len(steps)-1, 0)
	}
	m.loadEditor()
}

func (m *Model) loadEditor() {
	steps := m.deps.State.Sequence().Steps
	editing := m.focus == paneSequence && len(steps) > 0

	if m.focus == paneChat {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.titleEditor.Blur()
	m.contentEditor.Blur()
	m.lossy = false
	if !editing {
		return
	}

	// The editors rewrite tabs and some control characters. Text they would
	// change is shown but not editable, so a keystroke never saves it altered.
	value := m.field.Get(steps[m.sel])
	if m.field == model.FieldTitle {
		m.titleEditor.SetValue(value)
		m.titleEditor.CursorEnd()
		m.titleEditor.Focus()
		m.lossy = m.titleEditor.Value() != value
	} else {
		m.contentEditor.SetValue(value)
		m.contentEditor.Focus()
		m.lossy = m.contentEditor.Value() != value
	}
	if m.lossy {
		m.logger.Debug("step field not editable in place", "step", steps[m.sel].Number, "field", m.field)
	}
}
