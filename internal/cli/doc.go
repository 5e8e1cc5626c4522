// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for helix.
//
// # Commands
//
//   - helix                        Start the TUI (line-mode chat when stdin is not a terminal)
//   - helix chat                   Line-mode chat with input history
//   - helix tui                    Start the TUI; an error without a terminal
//   - helix history delete         Delete stored chat history (--confirm to skip the prompt)
//   - helix history export         Write the conversation and sequence (--format md|json, --out DIR)
//   - helix config [show|get|set|path]
//   - helix devserver [--addr] [--db]
//   - helix version
//
// # Global flags
//
//   - --config PATH  read and watch this config file
//   - --json         machine-readable output where supported
//   - -q, --quiet    suppress banners
//   - -v, --verbose  debug logging
//
// Every handler returns an error; main maps it to an exit code with ExitCode.
package cli
