// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"log/slog"

	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/devserver"
	"github.com/jeranaias/helix-tui/internal/offline"
)

// HandleDevServer runs the development backend until ctx is cancelled.
// --addr and --db override the devserver config section.
func HandleDevServer(ctx context.Context, cfg *config.Config, args Args, logger *slog.Logger) error {
	addr := cfg.DevServer.Addr
	if v := args.Options["addr"]; v != "" {
		addr = v
	}
	dbPath := cfg.DevServer.DBPath
	if v := args.Options["db"]; v != "" {
		dbPath = v
	}
	if err := offline.CheckListenAddr(addr, cfg.Backend.LocalOnly); err != nil {
		return &ConfigError{Err: err}
	}

	store, err := devserver.OpenStore(dbPath)
	if err != nil {
		return NewCommandError("devserver", "start", "could not open the database", err)
	}
	defer store.Close()

	logger.Info("dev server starting", "addr", addr, "db", dbPath)
	if err := devserver.New(store, logger).ListenAndServe(ctx, addr); err != nil {
		return NewCommandError("devserver", "serve", "server stopped", err)
	}
	logger.Info("dev server stopped")
	return nil
}
