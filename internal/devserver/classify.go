// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"strings"

	"github.com/jeranaias/helix-tui/internal/model"
)

// ClassifyIntent categorizes a message with keyword heuristics.
//
// Rules, in order of priority:
//  1. EditStep: change/edit/rename/update/modify/replace together with "step"
//  2. AddStep: add/insert/append/include together with "step", or "another step"
//  3. Clarification: a question that does not ask for a sequence
//  4. NewSequence: everything else
func ClassifyIntent(message string) model.Intent {
	q := strings.ToLower(strings.TrimSpace(message))
	mentionsStep := strings.Contains(q, "step")

	if mentionsStep && containsAny(q, "change ", "edit ", "rename ", "update ", "modify ", "replace ", "reword ") {
		return model.IntentEditStep
	}

	if strings.Contains(q, "another step") ||
		(mentionsStep && containsAny(q, "add ", "insert ", "append ", "include ")) {
		return model.IntentAddStep
	}

	if strings.HasSuffix(q, "?") && !containsAny(q, "sequence", "create", "generate", "write", "draft", "make") {
		return model.IntentClarification
	}
	if hasPrefixAny(q, "what ", "why ", "how ", "who ", "when ", "can you explain") &&
		!containsAny(q, "sequence", "create", "generate", "write", "draft") {
		return model.IntentClarification
	}

	return model.IntentNewSequence
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
