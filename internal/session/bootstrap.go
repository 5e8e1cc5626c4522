// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jeranaias/helix-tui/internal/backend"
)

// ErrNoIdentity is returned by operations that need a signed-in user.
var ErrNoIdentity = errors.New("no signed-in user")

// HistoryAPI is the part of the sync client Bootstrap uses.
type HistoryAPI interface {
	LoadHistory(ctx context.Context, userID string) (*backend.History, error)
	DeleteHistory(ctx context.Context, userID string) error
}

// SaveCanceler drops debounced step saves that have not fired yet.
type SaveCanceler interface {
	CancelPending() int
}

// Ack is the outcome of a history deletion, shown to the user until dismissed.
type Ack struct {
	OK      bool
	Message string
	Err     error
}

// LoadResult carries a fetched history back to Apply.
type LoadResult struct {
	Epoch   uint64
	UserID  string
	History *backend.History
	Err     error
}

// Bootstrap drives the session lifecycle for identity transitions:
// none to present loads history once, present to none discards state.
type Bootstrap struct {
	mu       sync.Mutex
	state    *State
	api      HistoryAPI
	saves    SaveCanceler
	logger   *slog.Logger
	loadedID string // identity whose history load has been issued
}

// NewBootstrap creates a Bootstrap. A nil logger uses slog.Default().
func NewBootstrap(state *State, api HistoryAPI, logger *slog.Logger) *Bootstrap {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrap{state: state, api: api, logger: logger}
}

// WithSaves registers the workspace so identity changes drop its pending saves.
func (b *Bootstrap) WithSaves(c SaveCanceler) *Bootstrap {
	b.saves = c
	return b
}

// State returns the managed state.
func (b *Bootstrap) State() *State {
	return b.state
}

// =============================================================================
// IDENTITY TRANSITIONS
// =============================================================================

// SetIdentity reacts to the identity provider. An empty userID signs out.
// A new non-empty identity starts a fresh session and returns true: the
// caller must then load history once. Repeating the current identity is a
// no-op and returns false.
func (b *Bootstrap) SetIdentity(userID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if userID == "" {
		b.signOutLocked()
		return false
	}
	if userID == b.loadedID {
		return false
	}

	b.cancelSaves()
	b.state.Begin(userID)
	b.loadedID = userID
	b.logger.Info("session started", "user", userID)
	return true
}

// SignOut discards the session state and drops pending saves.
func (b *Bootstrap) SignOut() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signOutLocked()
}

func (b *Bootstrap) signOutLocked() {
	if b.loadedID == "" && b.state.UserID() == "" {
		return
	}
	b.cancelSaves()
	b.state.Begin("")
	b.logger.Info("session ended", "user", b.loadedID)
	b.loadedID = ""
}

func (b *Bootstrap) cancelSaves() {
	if b.saves == nil {
		return
	}
	if n := b.saves.CancelPending(); n > 0 {
		b.logger.Info("dropped pending step saves", "count", n)
	}
}

// =============================================================================
// HISTORY LOAD
// =============================================================================

// Fetch loads the stored history for the current identity. It does not touch
// state; pass the result to Apply.
func (b *Bootstrap) Fetch(ctx context.Context) LoadResult {
	epoch := b.state.Epoch()
	userID := b.state.UserID()
	if userID == "" {
		return LoadResult{Epoch: epoch, Err: ErrNoIdentity}
	}
	h, err := b.api.LoadHistory(ctx, userID)
	return LoadResult{Epoch: epoch, UserID: userID, History: h, Err: err}
}

// Apply installs a fetched history. Failures are logged and leave the initial
// state in place. Results for a session that has since ended are dropped.
// It reports whether the state changed.
func (b *Bootstrap) Apply(res LoadResult) bool {
	if res.Err != nil {
		b.logger.Warn("history load failed, keeping initial state",
			"user", res.UserID, "error", res.Err)
		return false
	}

	seq, ok := res.History.Active()
	applied := b.state.Restore(res.Epoch, Restored{
		Messages:    res.History.Messages(),
		HasMessages: res.History.HasMessages(),
		Sequence:    seq,
		HasSequence: ok,
	})
	if !applied {
		b.logger.Debug("discarding history for ended session", "user", res.UserID)
		return false
	}
	b.logger.Info("history loaded",
		"user", res.UserID,
		"messages", len(res.History.ChatHistory),
		"sequences", len(res.History.Sequences))
	return true
}

// Load is Fetch followed by Apply.
func (b *Bootstrap) Load(ctx context.Context) bool {
	return b.Apply(b.Fetch(ctx))
}

// =============================================================================
// HISTORY DELETION
// =============================================================================

// RequestDelete asks the backend to delete the current user's history.
// It does not touch state; pass the error to CompleteDelete.
func (b *Bootstrap) RequestDelete(ctx context.Context) error {
	userID := b.state.UserID()
	if userID == "" {
		return ErrNoIdentity
	}
	return b.api.DeleteHistory(ctx, userID)
}

// CompleteDelete clears messages and the sequence whatever err is, and
// returns the acknowledgment to show.
func (b *Bootstrap) CompleteDelete(err error) Ack {
	b.cancelSaves()
	b.state.Clear()

	if err != nil {
		b.logger.Error("history deletion failed", "user", b.state.UserID(), "error", err)
		return Ack{OK: false, Message: fmt.Sprintf("Failed to delete chat history: %v", err), Err: err}
	}
	b.logger.Info("history deleted", "user", b.state.UserID())
	return Ack{OK: true, Message: "Chat history deleted."}
}

// DeleteHistory is RequestDelete followed by CompleteDelete.
func (b *Bootstrap) DeleteHistory(ctx context.Context) Ack {
	return b.CompleteDelete(b.RequestDelete(ctx))
}
