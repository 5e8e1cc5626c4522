// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ParseSender maps a wire value to a Sender. Older backends label replies
// "ai"; anything that is not the user is treated as the assistant.
func ParseSender(s string) Sender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return SenderUser
	default:
		return SenderAssistant
	}
}

// String returns the wire form.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns the label shown next to a message.
func (s Sender) DisplayName() string {
	if s == SenderUser {
		return "You"
	}
	return "Helix"
}

// UnmarshalJSON accepts any sender label via ParseSender.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sender: %w", err)
	}
	*s = ParseSender(raw)
	return nil
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in the conversation feed.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// NewAssistantMessage creates a message authored by the assistant.
func NewAssistantMessage(text string) Message {
	return Message{Text: text, Sender: SenderAssistant}
}

// IsUser reports whether the user wrote m.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}
