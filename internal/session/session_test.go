// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/model"
)

// fakeAPI is an in-memory HistoryAPI.
type fakeAPI struct {
	mu        sync.Mutex
	history   *backend.History
	loadErr   error
	deleteErr error
	loads     []string
	deletes   []string
}

func (f *fakeAPI) LoadHistory(_ context.Context, userID string) (*backend.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, userID)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.history, nil
}

func (f *fakeAPI) DeleteHistory(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, userID)
	return f.deleteErr
}

type fakeSaves struct{ cancels int }

func (f *fakeSaves) CancelPending() int {
	f.cancels++
	return 0
}

func storedHistory() *backend.History {
	return &backend.History{
		ChatHistory: []backend.HistoryEntry{
			{Message: "plan my garden", Sender: model.SenderUser},
			{Message: "Here you go.", Sender: model.SenderAssistant},
		},
		Sequences: []model.Sequence{
			model.NewSequence("s1", []model.Step{{Number: 1, Title: "A", Content: "B"}}),
			model.NewSequence("s0", []model.Step{{Number: 1, Title: "old"}}),
		},
	}
}

// =============================================================================
// STATE TESTS
// =============================================================================

func TestNewState_Initial(t *testing.T) {
	s := NewState(DefaultConfig())
	snap := s.Snapshot()

	assert.Equal(t, "", snap.UserID)
	assert.Equal(t, []model.Message{model.NewAssistantMessage("How can I help?")}, snap.Messages)
	assert.True(t, snap.Sequence.IsEmpty())
	assert.False(t, snap.Saving)
	assert.Empty(t, snap.Status)
}

func TestState_SetSequenceEmptyClearsID(t *testing.T) {
	s := NewState(DefaultConfig())
	s.SetSequence(model.NewSequence("s1", []model.Step{{Number: 1}}))
	require.Equal(t, "s1", s.Sequence().ID)

	s.SetSequence(model.Sequence{ID: "s2"})
	assert.Equal(t, model.Sequence{}, s.Sequence())
}

func TestState_EditStep(t *testing.T) {
	s := NewState(DefaultConfig())
	s.SetSequence(model.NewSequence("s1", []model.Step{{Number: 3, Title: "A", Content: "B"}}))

	id, err := s.EditStep(3, model.FieldContent, "C")
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
	assert.Equal(t, "C", s.Sequence().Steps[0].Content)
	assert.Equal(t, 3, s.Sequence().Steps[0].Number)
	assert.False(t, s.Unsynced())

	_, err = s.EditStep(4, model.FieldContent, "x")
	assert.ErrorIs(t, err, model.ErrNoSuchStep)
}

func TestState_EditWithoutIDMarksUnsynced(t *testing.T) {
	s := NewState(DefaultConfig())
	s.SetSequence(model.NewSequence("", []model.Step{{Number: 1}}))

	id, err := s.EditStep(1, model.FieldTitle, "local")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.True(t, s.Unsynced())

	s.SetSequence(model.NewSequence("s9", []model.Step{{Number: 1}}))
	assert.False(t, s.Unsynced(), "adopting a sequence clears the mark")
}

func TestState_SaveCounting(t *testing.T) {
	s := NewState(DefaultConfig())
	e := s.BeginSave()
	s.BeginSave()
	s.EndSave(e)
	assert.True(t, s.Saving())
	s.EndSave(e)
	assert.False(t, s.Saving())
	s.EndSave(e)
	assert.False(t, s.Saving(), "count never goes negative")
}

func TestState_SaveFromEndedSessionKeepsNewCount(t *testing.T) {
	s := NewState(DefaultConfig())
	s.Begin("alice")
	old := s.BeginSave()

	s.Begin("bob")
	cur := s.BeginSave()
	s.EndSave(old)
	assert.True(t, s.Saving(), "a save from the previous session must not settle this one")

	s.EndSave(cur)
	assert.False(t, s.Saving())
}

func TestState_AppendIfStaleEpoch(t *testing.T) {
	s := NewState(DefaultConfig())
	epoch := s.Begin("u1")
	s.Begin("u2")

	assert.False(t, s.AppendIf(epoch, model.NewAssistantMessage("late")))
	assert.Len(t, s.Messages(), 1)
}

func TestState_LastAssistantMessage(t *testing.T) {
	s := NewState(Config{})
	_, ok := s.LastAssistantMessage()
	assert.False(t, ok)

	s.Append(model.NewAssistantMessage("one"), model.NewUserMessage("q"), model.NewAssistantMessage("two"), model.NewUserMessage("q2"))
	msg, ok := s.LastAssistantMessage()
	require.True(t, ok)
	assert.Equal(t, "two", msg.Text)
}

// =============================================================================
// BOOTSTRAP TESTS
// =============================================================================

func TestBootstrap_LoadsOncePerIdentity(t *testing.T) {
	api := &fakeAPI{history: storedHistory()}
	boot := NewBootstrap(NewState(DefaultConfig()), api, nil)

	require.True(t, boot.SetIdentity("u1"))
	require.True(t, boot.Load(context.Background()))
	assert.False(t, boot.SetIdentity("u1"), "same identity must not reload")

	snap := boot.State().Snapshot()
	assert.Equal(t, "u1", snap.UserID)
	assert.Equal(t, []model.Message{
		model.NewUserMessage("plan my garden"),
		model.NewAssistantMessage("Here you go."),
	}, snap.Messages)
	assert.Equal(t, "s1", snap.Sequence.ID)
	assert.Equal(t, []model.Step{{Number: 1, Title: "A", Content: "B"}}, snap.Sequence.Steps)
	assert.Equal(t, []string{"u1"}, api.loads)
}

func TestBootstrap_LoadFailureKeepsInitialState(t *testing.T) {
	api := &fakeAPI{loadErr: &backend.TransportError{Op: backend.OpLoad, Err: errors.New("refused")}}
	boot := NewBootstrap(NewState(DefaultConfig()), api, nil)

	boot.SetIdentity("u1")
	assert.False(t, boot.Load(context.Background()))

	snap := boot.State().Snapshot()
	assert.Equal(t, []model.Message{model.NewAssistantMessage(DefaultGreeting)}, snap.Messages)
	assert.True(t, snap.Sequence.IsEmpty())
}

func TestBootstrap_NoSequencesLeavesDefault(t *testing.T) {
	api := &fakeAPI{history: &backend.History{ChatHistory: []backend.HistoryEntry{}}}
	boot := NewBootstrap(NewState(DefaultConfig()), api, nil)

	boot.SetIdentity("u1")
	require.True(t, boot.Load(context.Background()))

	snap := boot.State().Snapshot()
	assert.Empty(t, snap.Messages, "an empty stored history replaces the greeting")
	assert.True(t, snap.Sequence.IsEmpty())
}

func TestBootstrap_StaleLoadDropped(t *testing.T) {
	api := &fakeAPI{history: storedHistory()}
	boot := NewBootstrap(NewState(DefaultConfig()), api, nil)

	boot.SetIdentity("u1")
	res := boot.Fetch(context.Background())
	boot.SetIdentity("u2")

	assert.False(t, boot.Apply(res), "u1's history must not land in u2's session")
	assert.Equal(t, "u2", boot.State().UserID())
	assert.True(t, boot.State().Sequence().IsEmpty())
}

func TestBootstrap_SignOutDiscards(t *testing.T) {
	api := &fakeAPI{history: storedHistory()}
	saves := &fakeSaves{}
	boot := NewBootstrap(NewState(DefaultConfig()), api, nil).WithSaves(saves)

	boot.SetIdentity("u1")
	boot.Load(context.Background())
	boot.SetIdentity("")

	snap := boot.State().Snapshot()
	assert.Empty(t, snap.UserID)
	assert.Len(t, snap.Messages, 1)
	assert.True(t, snap.Sequence.IsEmpty())
	assert.GreaterOrEqual(t, saves.cancels, 2)

	assert.True(t, boot.SetIdentity("u1"), "signing back in loads again")
}

func TestBootstrap_FetchWithoutIdentity(t *testing.T) {
	boot := NewBootstrap(NewState(DefaultConfig()), &fakeAPI{}, nil)
	res := boot.Fetch(context.Background())
	assert.ErrorIs(t, res.Err, ErrNoIdentity)
}

func TestBootstrap_DeleteHistory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &fakeAPI{history: storedHistory()}
		boot := NewBootstrap(NewState(DefaultConfig()), api, nil)
		boot.SetIdentity("u1")
		boot.Load(context.Background())

		ack := boot.DeleteHistory(context.Background())
		assert.True(t, ack.OK)
		assert.Equal(t, "Chat history deleted.", ack.Message)

		snap := boot.State().Snapshot()
		assert.Empty(t, snap.Messages)
		assert.Empty(t, snap.Sequence.Steps)
		assert.Empty(t, snap.Sequence.ID)
		assert.Equal(t, "u1", snap.UserID)
		assert.Equal(t, []string{"u1"}, api.deletes)
	})

	t.Run("failure still resets", func(t *testing.T) {
		api := &fakeAPI{history: storedHistory(), deleteErr: errors.New("HTTP 500")}
		boot := NewBootstrap(NewState(DefaultConfig()), api, nil)
		boot.SetIdentity("u1")
		boot.Load(context.Background())

		ack := boot.DeleteHistory(context.Background())
		assert.False(t, ack.OK)
		assert.Error(t, ack.Err)
		assert.Contains(t, ack.Message, "Failed to delete chat history")

		snap := boot.State().Snapshot()
		assert.Empty(t, snap.Messages)
		assert.True(t, snap.Sequence.IsEmpty())
	})
}
