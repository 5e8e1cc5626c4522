// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the program.
type KeyMap struct {
	// Conversation pane
	Submit     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Sequence pane
	NextField key.Binding
	PrevField key.Binding

	// Global
	SwitchPane    key.Binding
	DeleteHistory key.Binding
	SignInOut     key.Binding
	CopyReply     key.Binding
	Quit          key.Binding

	// Modals
	Confirm key.Binding
	Cancel  key.Binding
	Dismiss key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		NextField: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "prev field"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		DeleteHistory: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "delete history"),
		),
		SignInOut: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "sign in/out"),
		),
		CopyReply: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy reply"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "dismiss"),
		),
	}
}

// ChatHelp lists the bindings shown while the conversation pane has focus.
func (k KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.SwitchPane, k.CopyReply, k.SignInOut, k.DeleteHistory, k.ScrollUp, k.Quit}
}

// SequenceHelp lists the bindings shown while the sequence pane has focus.
func (k KeyMap) SequenceHelp() []key.Binding {
	return []key.Binding{k.NextField, k.PrevField, k.SwitchPane, k.SignInOut, k.DeleteHistory, k.Quit}
}
