// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/conversation"
	"github.com/jeranaias/helix-tui/internal/identity"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
)

// =============================================================================
// SEND CYCLE
// =============================================================================

// classifiedMsg carries the intent of a submitted message.
type classifiedMsg struct {
	cycle  *conversation.Cycle
	intent model.Intent
}

// replyMsg carries the chat reply, or the error, for a cycle.
type replyMsg struct {
	cycle *conversation.Cycle
	reply *backend.ChatReply
	err   error
}

// =============================================================================
// SESSION
// =============================================================================

// signedInMsg reports the result of the identity provider's SignIn.
type signedInMsg struct {
	user identity.User
	err  error
}

// historyMsg carries a fetched history.
type historyMsg struct {
	res session.LoadResult
}

// deleteDoneMsg reports the backend result of a history deletion.
type deleteDoneMsg struct {
	err error
}

// =============================================================================
// EXTERNAL EVENTS
// =============================================================================

// StateChangedMsg tells the program that state changed off the event loop,
// e.g. a step save started or finished.
type StateChangedMsg struct{}

// ConfigChangedMsg delivers a reloaded configuration.
type ConfigChangedMsg struct {
	Config *config.Config
}

// =============================================================================
// UI HOUSEKEEPING
// =============================================================================

// flushedMsg follows the final flush of pending saves on quit.
type flushedMsg struct {
	saved int
}

// clearNoticeMsg hides the notice with the given id if it is still shown.
type clearNoticeMsg struct {
	id int
}
