// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the Bubble Tea program: a conversation pane and a sequence
// editor pane over one session.
//
// Update is the only place session state is stepped. Network calls run as
// tea.Cmd goroutines and come back as messages, so classify, send, load and
// delete never block the event loop, and their results are applied in the
// order Update receives them.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/helix-tui/internal/conversation"
	"github.com/jeranaias/helix-tui/internal/identity"
	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
	"github.com/jeranaias/helix-tui/internal/ui/components"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
	"github.com/jeranaias/helix-tui/internal/workspace"
)

// NoticeDuration is how long a footer notice stays up.
const NoticeDuration = 3 * time.Second

// InputCharLimit bounds a single chat message.
const InputCharLimit = 4000

const lossyNotice = "This field has characters the editor would change; edit it elsewhere."

// pane identifies which half of the screen has focus.
type pane int

const (
	paneChat pane = iota
	paneSequence
)

// Deps wires the program to one session.
type Deps struct {
	State        *session.State
	Bootstrap    *session.Bootstrap
	Conversation *conversation.Controller
	Workspace    *workspace.Controller
	Identity     identity.Provider

	Theme    *styles.Theme
	Markdown bool
	Logger   *slog.Logger

	// Clipboard writes text to the system clipboard. Nil uses the OS clipboard.
	Clipboard func(string) error
}

// Model is the program state.
type Model struct {
	deps   Deps
	keys   KeyMap
	logger *slog.Logger

	// ctx is cancelled when the program quits; in-flight commands see it.
	ctx    context.Context
	cancel context.CancelFunc

	theme  *styles.Theme
	feed   *components.Feed
	header components.Header

	width  int
	height int
	focus  pane

	input         textinput.Model
	feedView      viewport.Model
	seqView       viewport.Model
	spin          spinner.Model
	titleEditor   textinput.Model
	contentEditor textarea.Model

	// sel indexes the active sequence's steps; field is the edited field.
	sel   int
	field model.StepField
	// lossy is set when the editor could not hold the field's text unchanged.
	lossy bool

	modal *components.Modal
	user  identity.User

	notice   string
	noticeID int

	feedRendered bool
	feedVersion  uint64
	feedWidth    int
	msgCount     int

	quitting bool
}

// New builds the program model. Deps fields Theme, Logger and Clipboard take
// defaults when nil.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Theme == nil {
		deps.Theme = styles.NewTheme(styles.ModeAuto)
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.WriteAll
	}
	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = InputCharLimit
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	title := textinput.New()
	title.Prompt = ""
	title.CharLimit = 0

	content := textarea.New()
	content.Prompt = ""
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.MaxHeight = 0
	content.SetHeight(4)

	keys := DefaultKeyMap()
	return Model{
		deps:          deps,
		keys:          keys,
		logger:        deps.Logger,
		ctx:           ctx,
		cancel:        cancel,
		theme:         deps.Theme,
		feed:          components.NewFeed(deps.Theme, deps.Markdown),
		header:        components.NewHeader(keys.SignInOut.Help().Key),
		input:         input,
		feedView:      viewport.New(0, 0),
		seqView:       viewport.New(0, 0),
		spin:          spin,
		titleEditor:   title,
		contentEditor: content,
		field:         model.FieldTitle,
	}
}

// Init starts the cursor blink, the spinner and sign-in.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.signInCmd())
}

// Focused names the pane that has focus.
func (m Model) Focused() string {
	if m.focus == paneSequence {
		return "sequence"
	}
	return "conversation"
}

// Modal returns the open modal, or nil.
func (m Model) Modal() *components.Modal {
	return m.modal
}

// Notice returns the footer notice, "" when none.
func (m Model) Notice() string {
	return m.notice
}

// Selection returns the selected step number and field, ok false when the
// sequence is empty.
func (m Model) Selection() (int, model.StepField, bool) {
	steps := m.deps.State.Sequence().Steps
	if len(steps) == 0 || m.sel >= len(steps) {
		return 0, m.field, false
	}
	return steps[m.sel].Number, m.field, true
}
