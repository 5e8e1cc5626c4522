// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseSender(t *testing.T) {
	tests := []struct {
		in   string
		want Sender
	}{
		{"user", SenderUser},
		{"USER", SenderUser},
		{"assistant", SenderAssistant},
		{"ai", SenderAssistant},
		{"", SenderAssistant},
	}
	for _, tt := range tests {
		if got := ParseSender(tt.in); got != tt.want {
			t.Errorf("ParseSender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSender_JSON(t *testing.T) {
	var msgs []Message
	data := `[{"text":"hi","sender":"user"},{"text":"hello","sender":"ai"}]`
	if err := json.Unmarshal([]byte(data), &msgs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !msgs[0].IsUser() || msgs[1].Sender != SenderAssistant {
		t.Errorf("senders = %q, %q", msgs[0].Sender, msgs[1].Sender)
	}

	out, err := json.Marshal(msgs[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"text":"hello","sender":"assistant"}` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestIntent_StatusText(t *testing.T) {
	tests := []struct {
		intent Intent
		want   string
	}{
		{IntentAddStep, "Adding step..."},
		{IntentEditStep, "Editing step..."},
		{IntentNewSequence, "Generating sequence..."},
		{IntentClarification, "Generating sequence..."},
		{Intent("bogus"), "Generating sequence..."},
	}
	for _, tt := range tests {
		t.Run(string(tt.intent), func(t *testing.T) {
			if got := tt.intent.StatusText(); got != tt.want {
				t.Errorf("StatusText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	if i, ok := ParseIntent("edit_step"); !ok || i != IntentEditStep {
		t.Errorf("ParseIntent(edit_step) = %q, %v", i, ok)
	}
	if i, ok := ParseIntent("summarize"); ok || i != IntentNewSequence {
		t.Errorf("ParseIntent(summarize) = %q, %v", i, ok)
	}
}

func TestSequence_IsEmpty(t *testing.T) {
	if !(Sequence{}).IsEmpty() {
		t.Error("zero sequence should be empty")
	}
	if !(Sequence{ID: "s1"}).IsEmpty() {
		t.Error("id without steps should render as empty")
	}
	if NewSequence("s1", []Step{{Number: 1}}).IsEmpty() {
		t.Error("sequence with a step is not empty")
	}
}

func TestSequence_WithEdit(t *testing.T) {
	seq := NewSequence("s1", []Step{
		{Number: 1, Title: "A", Content: "B"},
		{Number: 2, Title: "C", Content: "D"},
	})

	next, err := seq.WithEdit(2, FieldContent, "updated")
	if err != nil {
		t.Fatalf("WithEdit: %v", err)
	}
	if next.Steps[1].Content != "updated" || next.Steps[1].Number != 2 {
		t.Errorf("edited step = %+v", next.Steps[1])
	}
	if seq.Steps[1].Content != "D" {
		t.Error("WithEdit must not mutate the receiver")
	}

	next, err = next.WithEdit(1, FieldTitle, "A2")
	if err != nil || next.Steps[0].Title != "A2" {
		t.Errorf("title edit = %+v, %v", next.Steps[0], err)
	}

	if _, err := seq.WithEdit(9, FieldTitle, "x"); !errors.Is(err, ErrNoSuchStep) {
		t.Errorf("expected ErrNoSuchStep, got %v", err)
	}
}

func TestSequence_Validate(t *testing.T) {
	ok := NewSequence("s1", []Step{{Number: 1}, {Number: 2}})
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	dup := NewSequence("s1", []Step{{Number: 1}, {Number: 1}})
	if err := dup.Validate(); !errors.Is(err, ErrDuplicateStep) {
		t.Errorf("expected ErrDuplicateStep, got %v", err)
	}
}

func TestParseStepField(t *testing.T) {
	for in, want := range map[string]StepField{
		"title": FieldTitle, "stepTitle": FieldTitle,
		"content": FieldContent, "stepContent": FieldContent,
	} {
		got, err := ParseStepField(in)
		if err != nil || got != want {
			t.Errorf("ParseStepField(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStepField("body"); err == nil {
		t.Error("expected error for unknown field")
	}
}
