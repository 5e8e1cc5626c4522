// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	"github.com/jeranaias/helix-tui/internal/model"
)

// DefaultGreeting is the assistant message a fresh session starts with.
const DefaultGreeting = "How can I help?"

// Config holds configuration for session state.
type Config struct {
	// Greeting is the single assistant message of a fresh session.
	// Empty means the feed starts empty.
	Greeting string
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{Greeting: DefaultGreeting}
}

// =============================================================================
// STATE
// =============================================================================

// State is the session state for one user. All methods are safe for
// concurrent use; readers get copies.
type State struct {
	mu sync.RWMutex

	cfg    Config
	epoch  uint64
	userID string

	messages []model.Message
	sequence model.Sequence
	unsynced bool // local step edits with no sequence id to save them under

	saving int    // step saves in flight
	status string // transient status, "" when none

	version uint64 // bumped on every mutation
}

// Snapshot is a consistent, detached copy of State for rendering.
type Snapshot struct {
	UserID   string
	Messages []model.Message
	Sequence model.Sequence
	Unsynced bool
	Saving   bool
	Status   string
	Epoch    uint64
	Version  uint64
}

// NewState creates state in its initial form: no user, the greeting, no sequence.
func NewState(cfg Config) *State {
	s := &State{cfg: cfg}
	s.resetLocked()
	return s
}

// resetLocked restores initial values except epoch and user. Caller holds mu.
func (s *State) resetLocked() {
	s.messages = nil
	if s.cfg.Greeting != "" {
		s.messages = []model.Message{model.NewAssistantMessage(s.cfg.Greeting)}
	}
	s.sequence = model.Sequence{}
	s.unsynced = false
	s.saving = 0
	s.status = ""
	s.version++
}

// Snapshot returns a copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		UserID:   s.userID,
		Messages: append([]model.Message(nil), s.messages...),
		Sequence: s.sequence.Clone(),
		Unsynced: s.unsynced,
		Saving:   s.saving > 0,
		Status:   s.status,
		Epoch:    s.epoch,
		Version:  s.version,
	}
}

// =============================================================================
// IDENTITY
// =============================================================================

// UserID returns the signed-in user, or "" when signed out.
func (s *State) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Epoch returns the identity epoch.
func (s *State) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// Begin starts a fresh session for userID ("" for signed out) and returns the
// new epoch. Everything from the previous session is discarded.
func (s *State) Begin(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.userID = userID
	s.resetLocked()
	return s.epoch
}

// =============================================================================
// MESSAGES
// =============================================================================

// Messages returns a copy of the feed in chronological order.
func (s *State) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Message(nil), s.messages...)
}

// Append adds messages to the end of the feed.
func (s *State) Append(msgs ...model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
	s.version++
}

// AppendIf appends msgs only while epoch is current. It reports whether it did.
func (s *State) AppendIf(epoch uint64, msgs ...model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.messages = append(s.messages, msgs...)
	s.version++
	return true
}

// LastAssistantMessage returns the newest assistant message, if any.
func (s *State) LastAssistantMessage() (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if !s.messages[i].IsUser() {
			return s.messages[i], true
		}
	}
	return model.Message{}, false
}

// =============================================================================
// SEQUENCE
// =============================================================================

// Sequence returns a copy of the active sequence.
func (s *State) Sequence() model.Sequence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence.Clone()
}

// SetSequence replaces the active sequence wholesale. An empty step list
// clears the id too. Any unsynced mark is dropped.
func (s *State) SetSequence(seq model.Sequence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setSequenceLocked(seq)
}

func (s *State) setSequenceLocked(seq model.Sequence) {
	if seq.IsEmpty() {
		seq = model.Sequence{}
	}
	s.sequence = seq.Clone()
	s.unsynced = false
	s.version++
}

// EditStep sets one field of one step and returns the sequence id the edit
// belongs to ("" when there is none to persist under).
func (s *State) EditStep(stepNumber int, field model.StepField, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.sequence.WithEdit(stepNumber, field, value)
	if err != nil {
		return "", err
	}
	s.sequence = next
	if !next.HasID() {
		s.unsynced = true
	}
	s.version++
	return next.ID, nil
}

// Unsynced reports whether local edits exist that cannot be saved.
func (s *State) Unsynced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsynced
}

// =============================================================================
// TRANSIENT STATUS
// =============================================================================

// Status returns the transient status, or "".
func (s *State) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus shows a transient status.
func (s *State) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.version++
}

// ClearStatus removes the transient status.
func (s *State) ClearStatus() {
	s.SetStatus("")
}

// =============================================================================
// SAVE TRACKING
// =============================================================================

// BeginSave marks one step save as in flight and returns the epoch to pass
// to EndSave.
func (s *State) BeginSave() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving++
	s.version++
	return s.epoch
}

// EndSave marks one step save as settled. Saves begun before the current
// session started were already dropped from the count by Begin.
func (s *State) EndSave(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return
	}
	if s.saving > 0 {
		s.saving--
	}
	s.version++
}

// Saving reports whether any step save is in flight.
func (s *State) Saving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saving > 0
}

// =============================================================================
// HISTORY
// =============================================================================

// Restored is what a history load contributes to the state.
type Restored struct {
	Messages    []model.Message
	HasMessages bool // replace the feed, even with an empty list
	Sequence    model.Sequence
	HasSequence bool
}

// Restore applies a history load. It does nothing unless epoch is current,
// and reports whether it applied.
func (s *State) Restore(epoch uint64, r Restored) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	if r.HasMessages {
		s.messages = append([]model.Message(nil), r.Messages...)
	}
	if r.HasSequence {
		s.setSequenceLocked(r.Sequence)
	}
	s.version++
	return true
}

// Clear empties the feed and the sequence, keeping the user.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.sequence = model.Sequence{}
	s.unsynced = false
	s.status = ""
	s.version++
}
