// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/identity"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitNotFound     = 7
	ExitTimeout      = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string // e.g. "history"
	Action  string // e.g. "delete"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError is invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// UsageError is a malformed command line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// ConfigError wraps a configuration load or save failure.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a ValidationError with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usage *UsageError
		valid *ValidationError
		cfg   *ConfigError
		tty   *TTYRequiredError
		te    *backend.TransportError
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &valid), errors.As(err, &tty):
		return ExitUsageError
	case errors.As(err, &cfg):
		return ExitConfigError
	case errors.Is(err, identity.ErrSignedOut), errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrNoUser):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeout
	case errors.As(err, &te):
		switch te.Status {
		case http.StatusNotFound:
			return ExitNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return ExitAuthError
		}
		return ExitNetworkError
	}
	return ExitGeneralError
}

// DisplayError writes err to w, as JSON in jsonMode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse(command, err).Write(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
