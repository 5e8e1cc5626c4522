// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/jeranaias/helix-tui/internal/offline"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setting and returns all problems at once as
// ValidateErrors, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if err := offline.CheckBaseURL(c.Backend.BaseURL, c.Backend.LocalOnly); err != nil {
		add("backend.base_url", "%v", err)
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		add("backend.timeout_secs", "must be between 1 and 600, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.RateLimitPerSec < 0 {
		add("backend.rate_limit_per_sec", "must not be negative, got %v", c.Backend.RateLimitPerSec)
	}
	if c.Backend.RateBurst < 0 {
		add("backend.rate_burst", "must not be negative, got %d", c.Backend.RateBurst)
	}

	// Identity
	switch strings.ToLower(c.Identity.Provider) {
	case "static":
	case "token":
		if c.Identity.SessionToken == "" {
			add("identity.session_token", "required when provider is token")
		}
	default:
		add("identity.provider", "invalid provider '%s', must be one of: static, token", c.Identity.Provider)
	}

	// Workspace
	if c.Workspace.SaveDebounceMs < 50 || c.Workspace.SaveDebounceMs > 60000 {
		add("workspace.save_debounce_ms", "must be between 50 and 60000, got %d", c.Workspace.SaveDebounceMs)
	}
	if c.Workspace.SaveTimeoutSecs < 1 || c.Workspace.SaveTimeoutSecs > 300 {
		add("workspace.save_timeout_secs", "must be between 1 and 300, got %d", c.Workspace.SaveTimeoutSecs)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}
	if _, err := ParseLogLevel(c.UI.LogLevel); err != nil {
		add("ui.log_level", "%v", err)
	}

	// DevServer
	if _, _, err := net.SplitHostPort(c.DevServer.Addr); err != nil {
		add("devserver.addr", "invalid listen address %q", c.DevServer.Addr)
	} else if err := offline.CheckListenAddr(c.DevServer.Addr, c.Backend.LocalOnly); err != nil {
		add("devserver.addr", "%v", err)
	}
	if c.DevServer.DBPath == "" {
		add("devserver.db_path", "must not be empty")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// SetDefaults fills zero-valued settings with their defaults. Booleans are
// left alone since false is a valid choice.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = d.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Backend.RateBurst == 0 && c.Backend.RateLimitPerSec > 0 {
		c.Backend.RateBurst = d.Backend.RateBurst
	}
	if c.Identity.Provider == "" {
		c.Identity.Provider = d.Identity.Provider
	}
	if c.Workspace.SaveDebounceMs == 0 {
		c.Workspace.SaveDebounceMs = d.Workspace.SaveDebounceMs
	}
	if c.Workspace.SaveTimeoutSecs == 0 {
		c.Workspace.SaveTimeoutSecs = d.Workspace.SaveTimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = d.UI.LogFile
	}
	if c.UI.LogLevel == "" {
		c.UI.LogLevel = d.UI.LogLevel
	}
	if c.DevServer.Addr == "" {
		c.DevServer.Addr = d.DevServer.Addr
	}
	if c.DevServer.DBPath == "" {
		c.DevServer.DBPath = d.DevServer.DBPath
	}
}

// Migrate rewrites settings from older config files.
func (c *Config) Migrate() error {
	// Early files named the identity provider "env".
	if strings.EqualFold(c.Identity.Provider, "env") {
		c.Identity.Provider = "static"
	}
	// A base URL with a trailing /api duplicated the route prefix.
	c.Backend.BaseURL = strings.TrimSuffix(strings.TrimSuffix(c.Backend.BaseURL, "/"), "/api")
	c.Identity.Provider = strings.ToLower(c.Identity.Provider)
	c.UI.Theme = strings.ToLower(c.UI.Theme)
	return nil
}
