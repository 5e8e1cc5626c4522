// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/jeranaias/helix-tui/internal/ui/app"
	"github.com/jeranaias/helix-tui/internal/ui/styles"
)

// TUIDeps returns the program dependencies for env.
func TUIDeps(env *Env) app.Deps {
	return app.Deps{
		State:        env.State,
		Bootstrap:    env.Bootstrap,
		Conversation: env.Conversation,
		Workspace:    env.Workspace,
		Identity:     env.Identity,
		Theme:        styles.NewTheme(styles.ParseMode(env.Config.UI.Theme)),
		Markdown:     env.Config.UI.RenderMarkdown,
		Logger:       env.Logger,
	}
}

// HandleTUI runs the full-screen program. The config file is watched so
// theme edits apply without a restart.
func HandleTUI(ctx context.Context, env *Env, args Args) error {
	path, err := ConfigFile(args)
	if err != nil {
		env.Logger.Warn("config path unavailable; live reload disabled", "error", err)
		path = ""
	}
	return app.Run(ctx, TUIDeps(env), app.Options{ConfigPath: path, AltScreen: true})
}
