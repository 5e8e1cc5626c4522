// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrConfirmationRequired is returned when a destructive action cannot
// prompt and --confirm was not given.
var ErrConfirmationRequired = errors.New("confirmation required: pass --confirm")

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// ConfirmFlag is set by --confirm and skips the prompt.
	ConfirmFlag bool
	// JSONMode never prompts.
	JSONMode bool
	// CanPrompt is false when stdin is not a terminal.
	CanPrompt bool
}

// Prompter asks yes/no questions on a pair of streams.
type Prompter struct {
	In  io.Reader
	Out io.Writer
}

// RequireConfirmation checks that the user agreed to action:
//  1. --confirm proceeds immediately
//  2. JSON mode or no terminal fails with ErrConfirmationRequired
//  3. otherwise the user is asked, and only y or yes proceeds
func (p Prompter) RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.ConfirmFlag {
		return true, nil
	}
	if opts.JSONMode || !opts.CanPrompt {
		return false, ErrConfirmationRequired
	}

	fmt.Fprintf(p.Out, "%s\n", WarningStyle.Render("This action cannot be undone."))
	fmt.Fprintf(p.Out, "Are you sure you want to %s? [y/N]: ", action)

	input, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return isYes(input), nil
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
