// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "github.com/jeranaias/helix-tui/internal/model"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ClassifyRequest is the body of POST /api/classify.
type ClassifyRequest struct {
	Message string `json:"message"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// StepUpdate is the body of PUT /api/sequence/update.
type StepUpdate struct {
	SequenceID string          `json:"sequenceId"`
	StepNumber int             `json:"stepNumber"`
	Field      model.StepField `json:"field"`
	Value      string          `json:"value"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ClassifyResponse is the body returned by POST /api/classify.
type ClassifyResponse struct {
	Intent string `json:"intent"`
}

// ChatReply is the body returned by POST /api/chat.
type ChatReply struct {
	Reply      string       `json:"reply"`
	Intent     string       `json:"intent,omitempty"`
	Sequence   []model.Step `json:"sequence"`
	SequenceID *string      `json:"sequenceId"`
}

// ActiveSequence returns the Sequence the reply carries. An empty step list
// yields the zero Sequence, so the id and steps are cleared together.
func (r *ChatReply) ActiveSequence() model.Sequence {
	if len(r.Sequence) == 0 {
		return model.Sequence{}
	}
	id := ""
	if r.SequenceID != nil {
		id = *r.SequenceID
	}
	return model.NewSequence(id, r.Sequence)
}

// HistoryEntry is one stored chat message.
type HistoryEntry struct {
	Message string       `json:"message"`
	Sender  model.Sender `json:"sender"`
}

// History is the body returned by GET /api/load.
type History struct {
	ChatHistory []HistoryEntry   `json:"chat_history"`
	Sequences   []model.Sequence `json:"sequences"`
}

// HasMessages reports whether the response carried a chat_history field.
// An empty list counts; a missing field does not.
func (h *History) HasMessages() bool {
	return h.ChatHistory != nil
}

// Messages maps the stored history into feed messages, preserving order.
func (h *History) Messages() []model.Message {
	if h.ChatHistory == nil {
		return nil
	}
	out := make([]model.Message, 0, len(h.ChatHistory))
	for _, e := range h.ChatHistory {
		out = append(out, model.Message{Text: e.Message, Sender: e.Sender})
	}
	return out
}

// Active returns the first stored sequence, which is the active one.
// Later sequences are ignored.
func (h *History) Active() (model.Sequence, bool) {
	if len(h.Sequences) == 0 {
		return model.Sequence{}, false
	}
	return h.Sequences[0].Clone(), true
}
