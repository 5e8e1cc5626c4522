// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/helix-tui/internal/conversation"
)

// =============================================================================
// ASYNC COMMANDS
// =============================================================================
//
// Each command does only I/O and returns a message; the result is applied to
// session state in Update.

func (m Model) signInCmd() tea.Cmd {
	ctx, provider := m.ctx, m.deps.Identity
	return func() tea.Msg {
		u, err := provider.SignIn(ctx)
		return signedInMsg{user: u, err: err}
	}
}

func (m Model) loadCmd() tea.Cmd {
	ctx, b := m.ctx, m.deps.Bootstrap
	return func() tea.Msg {
		return historyMsg{res: b.Fetch(ctx)}
	}
}

func (m Model) classifyCmd(cy *conversation.Cycle) tea.Cmd {
	ctx, conv := m.ctx, m.deps.Conversation
	return func() tea.Msg {
		return classifiedMsg{cycle: cy, intent: conv.Classify(ctx, cy)}
	}
}

func (m Model) fetchCmd(cy *conversation.Cycle) tea.Cmd {
	ctx, conv := m.ctx, m.deps.Conversation
	return func() tea.Msg {
		reply, err := conv.Fetch(ctx, cy)
		return replyMsg{cycle: cy, reply: reply, err: err}
	}
}

func (m Model) deleteCmd() tea.Cmd {
	ctx, b := m.ctx, m.deps.Bootstrap
	return func() tea.Msg {
		return deleteDoneMsg{err: b.RequestDelete(ctx)}
	}
}

// flushCmd sends pending step saves before the program exits. Each save is
// bounded by the workspace save timeout.
func (m Model) flushCmd() tea.Cmd {
	ws := m.deps.Workspace
	return func() tea.Msg {
		return flushedMsg{saved: ws.Flush()}
	}
}

// showNotice puts text in the footer and schedules its removal.
func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}
