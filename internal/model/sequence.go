// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// ErrDuplicateStep is returned when two steps share a StepNumber.
var ErrDuplicateStep = errors.New("duplicate step number")

// ErrNoSuchStep is returned when an edit names a StepNumber that is not present.
var ErrNoSuchStep = errors.New("no such step")

// =============================================================================
// STEP TYPES
// =============================================================================

// Step is one item of a Sequence. Number is its identity and never changes.
type Step struct {
	Number  int    `json:"stepNumber"`
	Title   string `json:"stepTitle"`
	Content string `json:"stepContent"`
}

// StepField names an editable part of a Step.
type StepField string

const (
	FieldTitle   StepField = "stepTitle"
	FieldContent StepField = "stepContent"
)

// ParseStepField accepts the wire names and the short forms "title"/"content".
func ParseStepField(s string) (StepField, error) {
	switch s {
	case "stepTitle", "title":
		return FieldTitle, nil
	case "stepContent", "content":
		return FieldContent, nil
	default:
		return "", fmt.Errorf("unknown step field %q", s)
	}
}

// Label is the short human name of the field.
func (f StepField) Label() string {
	if f == FieldTitle {
		return "title"
	}
	return "content"
}

// Get returns the field value of st.
func (f StepField) Get(st Step) string {
	if f == FieldTitle {
		return st.Title
	}
	return st.Content
}

// =============================================================================
// SEQUENCE TYPE
// =============================================================================

// Sequence is an ordered list of steps with a server-assigned id.
// The zero value is the "no sequence" state.
type Sequence struct {
	ID    string `json:"sequence_id"`
	Steps []Step `json:"steps"`
}

// NewSequence builds a Sequence. Steps are copied.
func NewSequence(id string, steps []Step) Sequence {
	return Sequence{ID: id, Steps: append([]Step(nil), steps...)}
}

// IsEmpty reports whether there is nothing to show. An id with no steps
// counts as empty.
func (s Sequence) IsEmpty() bool {
	return len(s.Steps) == 0
}

// HasID reports whether edits to this sequence can be persisted.
func (s Sequence) HasID() bool {
	return s.ID != ""
}

// Clone returns a deep copy.
func (s Sequence) Clone() Sequence {
	return NewSequence(s.ID, s.Steps)
}

// Validate checks that step numbers are unique.
func (s Sequence) Validate() error {
	seen := make(map[int]bool, len(s.Steps))
	for _, st := range s.Steps {
		if seen[st.Number] {
			return fmt.Errorf("%w: %d", ErrDuplicateStep, st.Number)
		}
		seen[st.Number] = true
	}
	return nil
}

// Index returns the position of the step numbered n, or -1.
func (s Sequence) Index(n int) int {
	for i, st := range s.Steps {
		if st.Number == n {
			return i
		}
	}
	return -1
}

// WithEdit returns a copy with field of step n set to value.
// The step number and the order of steps are unchanged.
func (s Sequence) WithEdit(n int, field StepField, value string) (Sequence, error) {
	i := s.Index(n)
	if i < 0 {
		return s, fmt.Errorf("%w: %d", ErrNoSuchStep, n)
	}
	out := s.Clone()
	switch field {
	case FieldTitle:
		out.Steps[i].Title = value
	case FieldContent:
		out.Steps[i].Content = value
	default:
		return s, fmt.Errorf("unknown step field %q", field)
	}
	return out, nil
}
