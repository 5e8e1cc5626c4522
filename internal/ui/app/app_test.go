// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"io"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/conversation"
	"github.com/jeranaias/helix-tui/internal/identity"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
	"github.com/jeranaias/helix-tui/internal/ui/components"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
	"github.com/jeranaias/helix-tui/internal/workspace"
)

// =============================================================================
// FAKES AND HARNESS
// =============================================================================

type fakeAPI struct {
	mu sync.Mutex

	intent    model.Intent
	reply     *backend.ChatReply
	chatErr   error
	history   *backend.History
	loadErr   error
	deleteErr error

	loads   int
	updates []backend.StepUpdate
	deleted []string
}

func (f *fakeAPI) ClassifyIntent(ctx context.Context, text string) model.Intent {
	return f.intent
}

func (f *fakeAPI) SendMessage(ctx context.Context, userID, text string) (*backend.ChatReply, error) {
	return f.reply, f.chatErr
}

func (f *fakeAPI) LoadHistory(ctx context.Context, userID string) (*backend.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.history == nil {
		return &backend.History{}, f.loadErr
	}
	return f.history, f.loadErr
}

func (f *fakeAPI) DeleteHistory(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return f.deleteErr
}

func (f *fakeAPI) UpdateStep(ctx context.Context, u backend.StepUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeAPI) gotUpdates() []backend.StepUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.StepUpdate(nil), f.updates...)
}

type harness struct {
	t       *testing.T
	m       Model
	api     *fakeAPI
	state   *session.State
	ws      *workspace.Controller
	copied  []string
	copyErr error
}

func newHarness(t *testing.T, api *fakeAPI) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	state := session.NewState(session.DefaultConfig())
	ws := workspace.New(state, api, workspace.Config{SaveDelay: time.Hour, SaveTimeout: time.Second}, logger)
	t.Cleanup(func() { ws.CancelPending() })

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)

	h := &harness{t: t, api: api, state: state, ws: ws}
	h.m = New(Deps{
		State:        state,
		Bootstrap:    session.NewBootstrap(state, api, logger).WithSaves(ws),
		Conversation: conversation.New(state, api, conversation.Config{}, logger),
		Workspace:    ws,
		Identity:     identity.NewStatic("alice", "Alice"),
		Theme:        styles.NewThemeFor(r, styles.ModeDark),
		Logger:       logger,
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return h.copyErr
		},
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// send delivers msg to Update and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run executes cmd and delivers its message, returning the next command.
func (h *harness) run(cmd tea.Cmd) tea.Cmd {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	return h.send(cmd())
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	return h.send(tea.KeyMsg{Type: k})
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// signIn runs sign-in and the history load it triggers.
func (h *harness) signIn() {
	h.t.Helper()
	load := h.run(h.m.signInCmd())
	require.NotNil(h.t, load, "a new identity must trigger a history load")
	h.run(load)
}

func sequenceWithID() model.Sequence {
	return model.NewSequence("s1", []model.Step{
		{Number: 1, Title: "Boil", Content: "Fill kettle"},
		{Number: 2, Title: "Steep", Content: "Three minutes"},
	})
}

// =============================================================================
// SESSION
// =============================================================================

func TestSignIn_LoadsHistoryOncePerIdentity(t *testing.T) {
	api := &fakeAPI{history: &backend.History{
		ChatHistory: []backend.HistoryEntry{{Message: "earlier", Sender: model.SenderUser}},
		Sequences:   []model.Sequence{sequenceWithID()},
	}}
	h := newHarness(t, api)
	h.signIn()

	assert.Equal(t, []model.Message{model.NewUserMessage("earlier")}, h.state.Messages())
	assert.Equal(t, "s1", h.state.Sequence().ID)
	assert.Equal(t, 1, api.loads)

	// Same identity again: no second load.
	assert.Nil(t, h.run(h.m.signInCmd()))
	assert.Equal(t, 1, api.loads)
}

func TestSignIn_LoadFailureKeepsGreeting(t *testing.T) {
	h := newHarness(t, &fakeAPI{loadErr: errors.New("down")})
	h.signIn()

	msgs := h.state.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, session.DefaultGreeting, msgs[0].Text)
	assert.True(t, h.state.Sequence().IsEmpty())
}

func TestSignOutAndBackIn(t *testing.T) {
	api := &fakeAPI{}
	h := newHarness(t, api)
	h.signIn()

	assert.NotNil(t, h.key(tea.KeyCtrlO), "sign-out schedules the notice timer")
	assert.Empty(t, h.state.UserID())
	assert.Equal(t, "Signed out.", h.m.Notice())

	signIn := h.key(tea.KeyCtrlO)
	require.NotNil(t, signIn)
	load := h.run(signIn)
	require.NotNil(t, load)
	h.run(load)
	assert.Equal(t, "alice", h.state.UserID())
	assert.Equal(t, 2, api.loads)
}

// =============================================================================
// SEND CYCLE
// =============================================================================

func TestSubmit_ClassifyThenSend(t *testing.T) {
	seqID := "seq-9"
	api := &fakeAPI{
		intent: model.IntentAddStep,
		reply: &backend.ChatReply{
			Reply:      "Added.",
			Sequence:   []model.Step{{Number: 1, Title: "Only"}},
			SequenceID: &seqID,
		},
	}
	h := newHarness(t, api)
	h.signIn()

	h.typeText("add a step")
	classify := h.key(tea.KeyEnter)
	require.NotNil(t, classify)
	assert.Len(t, h.state.Messages(), 2, "user message is appended at submit")
	assert.Empty(t, h.m.input.Value(), "input clears after submit")

	msg := classify()
	cm, ok := msg.(classifiedMsg)
	require.True(t, ok, "the first command only classifies, got %T", msg)
	assert.Equal(t, model.IntentAddStep, cm.intent)

	fetch := h.send(msg)
	require.NotNil(t, fetch)
	assert.Equal(t, "Adding step...", h.state.Status())

	h.run(fetch)
	msgs := h.state.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, model.NewAssistantMessage("Added."), msgs[2])
	assert.Equal(t, "seq-9", h.state.Sequence().ID)
	assert.Empty(t, h.state.Status())
}

func TestSubmit_FailureAppendsFallback(t *testing.T) {
	h := newHarness(t, &fakeAPI{intent: model.IntentNewSequence, chatErr: errors.New("boom")})
	h.signIn()
	h.state.SetSequence(sequenceWithID())

	h.typeText("hello")
	fetch := h.run(h.key(tea.KeyEnter))
	h.run(fetch)

	msgs := h.state.Messages()
	assert.Equal(t, conversation.FallbackReply, msgs[len(msgs)-1].Text)
	assert.Equal(t, "s1", h.state.Sequence().ID, "failure leaves the sequence alone")
}

func TestSubmit_IgnoredWhileBusyOrBlank(t *testing.T) {
	h := newHarness(t, &fakeAPI{intent: model.IntentNewSequence, reply: &backend.ChatReply{Reply: "ok"}})
	h.signIn()

	assert.Nil(t, h.key(tea.KeyEnter), "blank input is ignored")
	assert.Len(t, h.state.Messages(), 1)

	h.typeText("first")
	require.NotNil(t, h.key(tea.KeyEnter))
	h.typeText("second")
	assert.Nil(t, h.key(tea.KeyEnter), "a pending reply blocks another submit")
	assert.Len(t, h.state.Messages(), 2)
	assert.Equal(t, "second", h.m.input.Value(), "ignored input is kept")
}

func TestSubmit_RequiresIdentity(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.typeText("hello")
	assert.Nil(t, h.key(tea.KeyEnter))
	assert.Len(t, h.state.Messages(), 1)
}

func TestReplyAfterSignOutIsDropped(t *testing.T) {
	h := newHarness(t, &fakeAPI{intent: model.IntentNewSequence, reply: &backend.ChatReply{Reply: "late"}})
	h.signIn()

	h.typeText("hello")
	fetch := h.run(h.key(tea.KeyEnter))
	h.key(tea.KeyCtrlO)
	h.run(fetch)

	for _, m := range h.state.Messages() {
		assert.NotEqual(t, "late", m.Text)
	}
}

// =============================================================================
// SEQUENCE EDITING
// =============================================================================

func TestEnterInSequencePaneDoesNotSubmit(t *testing.T) {
	h := newHarness(t, &fakeAPI{history: &backend.History{Sequences: []model.Sequence{sequenceWithID()}}})
	h.signIn()

	h.key(tea.KeyTab)
	assert.Equal(t, "sequence", h.m.Focused())
	assert.Nil(t, h.key(tea.KeyEnter))
	assert.Len(t, h.state.Messages(), 1)
}

func TestEditingStepsSchedulesSavesAndFlushesOnQuit(t *testing.T) {
	api := &fakeAPI{history: &backend.History{Sequences: []model.Sequence{sequenceWithID()}}}
	h := newHarness(t, api)
	h.signIn()

	h.key(tea.KeyTab)
	n, field, ok := h.m.Selection()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.FieldTitle, field)

	h.typeText("!")
	assert.Equal(t, "Boil!", h.state.Sequence().Steps[0].Title)

	h.key(tea.KeyCtrlN)
	_, field, _ = h.m.Selection()
	assert.Equal(t, model.FieldContent, field)
	h.typeText("?")
	assert.Equal(t, "Fill kettle?", h.state.Sequence().Steps[0].Content)
	assert.Equal(t, 2, h.ws.Pending())

	h.key(tea.KeyCtrlN)
	n, field, _ = h.m.Selection()
	assert.Equal(t, 2, n)
	assert.Equal(t, model.FieldTitle, field)

	h.key(tea.KeyCtrlP)
	h.key(tea.KeyCtrlP)
	h.key(tea.KeyCtrlP)
	n, field, _ = h.m.Selection()
	assert.Equal(t, 2, n, "moving back from the first field wraps to the last")
	assert.Equal(t, model.FieldContent, field)

	quit := h.key(tea.KeyCtrlC)
	require.NotNil(t, quit)
	final := h.run(quit)
	require.NotNil(t, final)
	assert.IsType(t, tea.QuitMsg{}, final())

	updates := api.gotUpdates()
	require.Len(t, updates, 2)
	values := map[model.StepField]string{}
	for _, u := range updates {
		assert.Equal(t, "s1", u.SequenceID)
		values[u.Field] = u.Value
	}
	assert.Equal(t, "Boil!", values[model.FieldTitle])
	assert.Equal(t, "Fill kettle?", values[model.FieldContent])
}

func TestEditKeepsLongStepText(t *testing.T) {
	title := strings.Repeat("t", 250)
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	content := strings.Join(lines, "\n")
	api := &fakeAPI{history: &backend.History{Sequences: []model.Sequence{
		model.NewSequence("s1", []model.Step{{Number: 1, Title: title, Content: content}}),
	}}}
	h := newHarness(t, api)
	h.signIn()

	h.key(tea.KeyTab)
	h.typeText("!")
	assert.Equal(t, title+"!", h.state.Sequence().Steps[0].Title)

	h.key(tea.KeyCtrlN)
	h.typeText("z")
	assert.Equal(t, content+"z", h.state.Sequence().Steps[0].Content)

	h.ws.Flush()
	values := map[model.StepField]string{}
	for _, u := range api.gotUpdates() {
		values[u.Field] = u.Value
	}
	assert.Equal(t, title+"!", values[model.FieldTitle])
	assert.Equal(t, content+"z", values[model.FieldContent])
}

func TestEditRefusedWhenEditorWouldAlterText(t *testing.T) {
	api := &fakeAPI{history: &backend.History{Sequences: []model.Sequence{
		model.NewSequence("s1", []model.Step{{Number: 1, Title: "a\tb", Content: "Fill kettle"}}),
	}}}
	h := newHarness(t, api)
	h.signIn()

	h.key(tea.KeyTab)
	h.typeText("c")
	assert.Equal(t, "a\tb", h.state.Sequence().Steps[0].Title)
	assert.Zero(t, h.ws.Pending())
	assert.Equal(t, lossyNotice, h.m.Notice())

	h.key(tea.KeyCtrlN)
	h.typeText("!")
	assert.Equal(t, "Fill kettle!", h.state.Sequence().Steps[0].Content, "other fields stay editable")
}

func TestSequencePaneIgnoresKeysWithoutSteps(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.signIn()
	h.key(tea.KeyTab)
	h.typeText("x")
	_, _, ok := h.m.Selection()
	assert.False(t, ok)
	assert.Zero(t, h.ws.Pending())
}

// =============================================================================
// DELETE, COPY, CONFIG, VIEW
// =============================================================================

func TestDeleteHistory_ConfirmThenAcknowledge(t *testing.T) {
	api := &fakeAPI{history: &backend.History{
		ChatHistory: []backend.HistoryEntry{{Message: "x", Sender: model.SenderUser}},
		Sequences:   []model.Sequence{sequenceWithID()},
	}}
	h := newHarness(t, api)
	h.signIn()

	h.key(tea.KeyCtrlX)
	require.NotNil(t, h.m.Modal())
	assert.Equal(t, components.ModalConfirm, h.m.Modal().Kind)
	h.typeText("n")
	assert.Nil(t, h.m.Modal())
	assert.Empty(t, api.deleted)

	h.key(tea.KeyCtrlX)
	del := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	require.NotNil(t, del)
	h.run(del)

	require.NotNil(t, h.m.Modal())
	assert.Equal(t, components.ModalAck, h.m.Modal().Kind)
	assert.Equal(t, "Chat history deleted.", h.m.Modal().Body)
	assert.Equal(t, []string{"alice"}, api.deleted)
	assert.Empty(t, h.state.Messages())
	assert.True(t, h.state.Sequence().IsEmpty())

	// Other keys do not reach the panes while the acknowledgment is open.
	h.typeText("q")
	assert.NotNil(t, h.m.Modal())
	assert.Empty(t, h.m.input.Value())

	h.key(tea.KeyEnter)
	assert.Nil(t, h.m.Modal())
}

func TestDeleteHistory_FailureIsReported(t *testing.T) {
	h := newHarness(t, &fakeAPI{deleteErr: errors.New("forbidden")})
	h.signIn()

	h.key(tea.KeyCtrlX)
	h.run(h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}))
	require.NotNil(t, h.m.Modal())
	assert.Contains(t, h.m.Modal().Body, "Failed to delete chat history")
	assert.True(t, h.m.Modal().Danger)
}

func TestDeleteHistory_NeedsIdentity(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.key(tea.KeyCtrlX)
	assert.Nil(t, h.m.Modal())
}

func TestCopyLastReply(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.signIn()

	h.key(tea.KeyCtrlY)
	assert.Equal(t, []string{session.DefaultGreeting}, h.copied)
	assert.Equal(t, "Copied last reply.", h.m.Notice())

	h.copyErr = errors.New("no clipboard")
	h.key(tea.KeyCtrlY)
	assert.Contains(t, h.m.Notice(), "Copy failed")
}

func TestNoticeClearsOnlyForCurrentID(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.signIn()
	h.key(tea.KeyCtrlY)
	id := h.m.noticeID

	h.send(clearNoticeMsg{id: id - 1})
	assert.NotEmpty(t, h.m.Notice())
	h.send(clearNoticeMsg{id: id})
	assert.Empty(t, h.m.Notice())
}

func TestConfigChangeReappliesTheme(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	require.True(t, h.m.theme.IsDark)

	cfg := config.Default()
	cfg.UI.Theme = "light"
	h.send(ConfigChangedMsg{Config: cfg})
	assert.False(t, h.m.theme.IsDark)
	assert.Equal(t, "Configuration reloaded.", h.m.Notice())
}

func TestView(t *testing.T) {
	h := newHarness(t, &fakeAPI{})
	h.signIn()

	out := h.m.View()
	assert.Contains(t, out, components.AppTitle)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, ConversationTitle)
	assert.Contains(t, out, workspace.Title)
	assert.Contains(t, out, workspace.Placeholder)
	assert.Contains(t, out, session.DefaultGreeting)

	h.state.SetSequence(sequenceWithID())
	h.send(StateChangedMsg{})
	out = h.m.View()
	assert.Contains(t, out, "Steep")
	assert.NotContains(t, out, workspace.Placeholder)
}
