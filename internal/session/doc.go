// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the per-user conversation state and its lifecycle.
//
// State is the single source of truth that the conversation and workspace
// controllers mutate and the UI renders. It is scoped to one signed-in user:
// Bootstrap creates it when an identity appears, fills it once from the
// stored history, resets it on history deletion and discards it on sign-out.
//
// Every identity change bumps the state epoch. Work started under an older
// epoch (a reply or a history load still in flight) is dropped on arrival.
//
// # Usage
//
//	state := session.NewState(session.DefaultConfig())
//	boot := session.NewBootstrap(state, client, logger).WithSaves(ws)
//	if boot.SetIdentity("u1") {
//	    boot.Load(ctx)
//	}
package session
