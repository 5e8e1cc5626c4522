// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/helix-tui/internal/export"
)

// HistoryDeleteResult is the payload of `helix history delete --json`.
type HistoryDeleteResult struct {
	UserID  string `json:"user_id"`
	Deleted bool   `json:"deleted"`
}

// HistoryExportResult is the payload of `helix history export --json`.
type HistoryExportResult struct {
	UserID   string `json:"user_id"`
	Path     string `json:"path"`
	Format   string `json:"format"`
	Messages int    `json:"messages"`
	Steps    int    `json:"steps"`
}

const historyUsage = "helix history delete [--confirm] | helix history export [--format md|json] [--out DIR]"

// HandleHistory runs `helix history <subcommand>`.
func HandleHistory(ctx context.Context, env *Env, args Args, st Streams) error {
	switch args.Subcommand {
	case "delete", "clear":
		return historyDelete(ctx, env, args, st)
	case "export":
		return historyExport(ctx, env, args, st)
	case "":
		return &UsageError{Usage: historyUsage}
	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand, "unknown history subcommand", "helix history delete --confirm")
	}
}

func historyDelete(ctx context.Context, env *Env, args Args, st Streams) error {
	u, err := env.Identity.SignIn(ctx)
	if err != nil {
		return NewCommandError("history", "delete", "no signed-in user", err)
	}
	env.Bootstrap.SetIdentity(u.ID)

	ok, err := Prompter{In: st.In, Out: st.Out}.RequireConfirmation(
		fmt.Sprintf("delete all chat history for %s", userLabel(u)),
		ConfirmationOptions{ConfirmFlag: args.Confirm, JSONMode: args.JSON, CanPrompt: st.CanPrompt},
	)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(st.Out, DimStyle.Render("Cancelled."))
		return nil
	}

	ack := env.Bootstrap.CompleteDelete(env.Bootstrap.RequestDelete(ctx))
	if !ack.OK {
		return NewCommandError("history", "delete", "the backend did not delete the history", ack.Err)
	}

	if args.JSON {
		return NewJSONResponse(CmdHistory.String(), HistoryDeleteResult{UserID: u.ID, Deleted: true}).Write(st.Out)
	}
	fmt.Fprintln(st.Out, SuccessStyle.Render(ack.Message))
	return nil
}

func historyExport(ctx context.Context, env *Env, args Args, st Streams) error {
	format := args.Options["format"]
	opts := export.DefaultOptions()
	if dir := args.Options["out"]; dir != "" {
		opts.OutputDir = dir
	}
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationErrorWithExample("format", format, "must be md or json", "helix history export --format json")
	}

	u, err := env.Identity.SignIn(ctx)
	if err != nil {
		return NewCommandError("history", "export", "no signed-in user", err)
	}
	env.Bootstrap.SetIdentity(u.ID)

	res := env.Bootstrap.Fetch(ctx)
	if res.Err != nil {
		return NewCommandError("history", "export", "could not load history", res.Err)
	}
	env.Bootstrap.Apply(res)

	t := export.FromSnapshot(env.State.Snapshot(), time.Now())
	path, err := export.ToFile(t, exporter, opts)
	if err != nil {
		return NewCommandError("history", "export", "could not write the export", err)
	}
	env.Logger.Info("history exported", "user", u.ID, "path", path)

	if args.JSON {
		return NewJSONResponse(CmdHistory.String(), HistoryExportResult{
			UserID:   u.ID,
			Path:     path,
			Format:   exporter.FileExtension()[1:],
			Messages: len(t.Messages),
			Steps:    len(t.Sequence.Steps),
		}).Write(st.Out)
	}
	fmt.Fprintln(st.Out, SuccessStyle.Render("Exported to "+path))
	return nil
}
