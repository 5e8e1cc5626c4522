// helix - a terminal client for chatting with an assistant and editing the
// step sequences it generates.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
	backend.UserAgent = "helix/" + Version
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()
	streams := cli.StdStreams()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(streams.Out)
		if len(args.Raw) > 0 {
			fmt.Fprintf(streams.Err, "unknown command: %s\n", args.Raw[0])
			return cli.ExitUsageError
		}
		return cli.ExitSuccess
	case cli.CmdVersion:
		return finish(cmd, args, cli.HandleVersion(streams.Out, args))
	case cli.CmdConfig:
		// Works even when the current file does not validate.
		return finish(cmd, args, cli.HandleConfig(args, streams))
	}

	// The full-screen program needs a terminal on both ends.
	if cmd == cli.CmdTUI && !cli.Interactive() {
		if args.ExplicitTUI {
			return finish(cmd, args, &cli.TTYRequiredError{Operation: "helix tui"})
		}
		cmd = cli.CmdChat
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return finish(cmd, args, err)
	}
	logger, closer, err := cli.NewLogger(cfg, args, cmd == cli.CmdTUI || cmd == cli.CmdChat)
	if err != nil {
		return finish(cmd, args, err)
	}
	defer closer.Close()
	slog.SetDefault(logger)
	logger.Debug("starting", "command", cmd.String(), "version", Version, "backend", cfg.Backend.BaseURL)

	if cmd == cli.CmdDevServer {
		return finish(cmd, args, cli.HandleDevServer(ctx, cfg, args, logger))
	}

	env, err := cli.NewEnv(cfg, logger)
	if err != nil {
		return finish(cmd, args, err)
	}

	switch cmd {
	case cli.CmdChat:
		err = cli.HandleChat(ctx, env, args)
	case cli.CmdHistory:
		err = cli.HandleHistory(ctx, env, args, streams)
	default:
		err = cli.HandleTUI(ctx, env, args)
	}
	return finish(cmd, args, err)
}

// finish reports err and returns the exit code for it.
func finish(cmd cli.Command, args cli.Args, err error) int {
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
	}
	return cli.ExitCode(err)
}
