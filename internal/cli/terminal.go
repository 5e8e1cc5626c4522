// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive reports whether the full-screen TUI can run: both stdin and
// stdout must be terminals.
func Interactive() bool {
	return IsTTY() && IsStdoutTTY()
}

// =============================================================================
// TERMINAL WIDTH
// =============================================================================

const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

// TerminalWidth returns the stdout width, DefaultTerminalWidth when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return max(width, MinTerminalWidth)
}

// =============================================================================
// COLOR
// =============================================================================

// ColorsEnabled honours NO_COLOR, then FORCE_COLOR, then stdout TTY detection.
// See https://no-color.org/.
func ColorsEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return IsStdoutTTY()
}

// ColorProfile returns the profile for CLI output: Ascii when colors are off.
func ColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// TTYRequiredError is returned when an operation needs a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return fmt.Sprintf("%s requires an interactive terminal", e.Operation)
}
