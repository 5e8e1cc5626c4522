// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data types shared by the helix controllers.
//
// # Key Types
//
//   - Message: one entry of the conversation feed (text plus Sender)
//   - Step: one item of a Sequence, identified by its StepNumber
//   - Sequence: the active step list and its server-assigned id
//   - Intent: the classifier label for a user message
//   - StepField: which part of a Step an edit targets
//
// # Usage
//
//	msg := model.NewUserMessage("add a step to water the plants")
//	seq := model.NewSequence("s1", []model.Step{{Number: 1, Title: "A", Content: "B"}})
//	next, err := seq.WithEdit(1, model.FieldContent, "water daily")
package model
