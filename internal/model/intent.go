// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Intent is the classifier's label for what a user message asks for.
type Intent string

const (
	IntentAddStep       Intent = "add_step"
	IntentEditStep      Intent = "edit_step"
	IntentNewSequence   Intent = "new_sequence"
	IntentClarification Intent = "clarification"
)

// DefaultIntent is used whenever classification is unavailable.
const DefaultIntent = IntentNewSequence

// ParseIntent returns the Intent for s and whether s was a known label.
// Unknown labels map to DefaultIntent.
func ParseIntent(s string) (Intent, bool) {
	switch i := Intent(s); i {
	case IntentAddStep, IntentEditStep, IntentNewSequence, IntentClarification:
		return i, true
	default:
		return DefaultIntent, false
	}
}

// StatusText is the transient status shown while a reply for this intent is
// awaited.
func (i Intent) StatusText() string {
	switch i {
	case IntentAddStep:
		return "Adding step..."
	case IntentEditStep:
		return "Editing step..."
	default:
		return "Generating sequence..."
	}
}

// String returns the wire label.
func (i Intent) String() string {
	return string(i)
}
