// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components renders the pieces of the helix TUI: the header, the
// conversation feed, the sequence panel, modals and the help bar. Components
// are stateless renderers; the program model in ui/app owns all state.
package components
