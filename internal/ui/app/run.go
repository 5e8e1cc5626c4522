// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/helix-tui/internal/config"
)

// Options control how Run starts the program.
type Options struct {
	// ConfigPath, when set, is watched; edits re-apply the theme.
	ConfigPath string
	// AltScreen draws on the alternate screen buffer.
	AltScreen bool
}

// Run starts the program and blocks until it exits or ctx is cancelled.
// Workspace save status and config reloads reach the program as messages.
func Run(ctx context.Context, deps Deps, opts Options) error {
	m := New(deps)
	logger := m.logger

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, progOpts...)

	deps.Workspace.OnChange(func() { p.Send(StateChangedMsg{}) })
	defer deps.Workspace.OnChange(nil)

	if opts.ConfigPath != "" {
		w, err := config.Watch(opts.ConfigPath, logger, func(cfg *config.Config) {
			p.Send(ConfigChangedMsg{Config: cfg})
		})
		if err != nil {
			logger.Warn("config watch disabled", "path", opts.ConfigPath, "error", err)
		} else {
			defer w.Close()
		}
	}

	_, err := p.Run()
	m.cancel()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
