// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/helix-tui/internal/backend"
	"github.com/jeranaias/helix-tui/internal/config"
	"github.com/jeranaias/helix-tui/internal/conversation"
	"github.com/jeranaias/helix-tui/internal/identity"
	"github.com/jeranaias/helix-tui/internal/offline"
	"github.com/jeranaias/helix-tui/internal/session"
	"github.com/jeranaias/helix-tui/internal/workspace"
)

// =============================================================================
// CONFIG AND LOGGING
// =============================================================================

// LoadConfig loads the file named by --config, or the default location.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		if err := config.LoadDotEnv(); err != nil {
			return nil, &ConfigError{Err: err}
		}
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

// ConfigFile returns the path that LoadConfig reads for args.
func ConfigFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ActivePath()
}

// NewLogger builds the process logger. toFile sends records to
// cfg.UI.LogFile, for the chat front ends that own the terminal; otherwise
// they go to stderr.
// The returned closer must be closed on exit.
func NewLogger(cfg *config.Config, args Args, toFile bool) (*slog.Logger, io.Closer, error) {
	level, err := config.ParseLogLevel(cfg.UI.LogLevel)
	if err != nil {
		return nil, nil, &ConfigError{Err: err}
	}
	if args.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if !toFile || cfg.UI.LogFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.UI.LogFile), 0700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}

// =============================================================================
// SESSION WIRING
// =============================================================================

// Env is one client session wired from configuration: the sync client and
// the controllers sharing one session state.
type Env struct {
	Config       *config.Config
	Logger       *slog.Logger
	Client       *backend.Client
	State        *session.State
	Workspace    *workspace.Controller
	Bootstrap    *session.Bootstrap
	Conversation *conversation.Controller
	Identity     identity.Provider
}

// NewEnv wires a session from cfg. A nil logger uses slog.Default().
func NewEnv(cfg *config.Config, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}

	id, err := identity.New(cfg.Identity.Provider, cfg.Identity.UserID, cfg.Identity.DisplayName,
		cfg.Identity.SessionToken, cfg.Identity.TokenSecret)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := offline.CheckBaseURL(cfg.Backend.BaseURL, cfg.Backend.LocalOnly); err != nil {
		return nil, &ConfigError{Err: err}
	}
	if offline.IsCleartextRemote(cfg.Backend.BaseURL) {
		logger.Warn("backend is a remote host over plain http; messages are sent unencrypted",
			"base_url", cfg.Backend.BaseURL)
	}

	client := backend.NewClient(cfg.Backend.BaseURL).
		WithTimeout(cfg.Backend.Timeout()).
		WithRateLimit(cfg.Backend.RateLimitPerSec, cfg.Backend.RateBurst).
		WithLogger(logger.With("component", "backend"))

	return newEnv(cfg, logger, client, id), nil
}

// newEnv wires the controllers around an existing client and provider.
func newEnv(cfg *config.Config, logger *slog.Logger, client *backend.Client, id identity.Provider) *Env {
	state := session.NewState(session.Config{Greeting: cfg.Chat.Greeting})
	ws := workspace.New(state, client, workspace.Config{
		SaveDelay:   cfg.Workspace.SaveDebounce(),
		SaveTimeout: cfg.Workspace.SaveTimeout(),
	}, logger.With("component", "workspace"))

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		State:     state,
		Workspace: ws,
		Bootstrap: session.NewBootstrap(state, client, logger.With("component", "session")).WithSaves(ws),
		Conversation: conversation.New(state, client, conversation.Config{
			AllowOverlap: cfg.Chat.AllowOverlappingSends,
		}, logger.With("component", "conversation")),
		Identity: id,
	}
}

// SignIn resolves the user and, for a new identity, loads its history.
// Load failures are absorbed; the session starts fresh.
func (e *Env) SignIn(ctx context.Context) (identity.User, error) {
	u, err := e.Identity.SignIn(ctx)
	if err != nil {
		return identity.User{}, err
	}
	if e.Bootstrap.SetIdentity(u.ID) {
		e.Bootstrap.Load(ctx)
	}
	return u, nil
}

// SignOut forgets the user and discards the session.
func (e *Env) SignOut() {
	e.Identity.SignOut()
	e.Bootstrap.SignOut()
}

// Streams are the standard streams a command talks to.
type Streams struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	CanPrompt bool
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr, CanPrompt: IsTTY()}
}

// userLabel is the display label for u.
func userLabel(u identity.User) string {
	return strings.TrimSpace(u.Label())
}
