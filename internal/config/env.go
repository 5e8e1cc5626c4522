// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvBackendURL     = "HELIX_BACKEND_URL"
	EnvUserID         = "HELIX_USER_ID"
	EnvSessionToken   = "HELIX_SESSION_TOKEN"
	EnvTokenSecret    = "HELIX_TOKEN_SECRET"
	EnvTheme          = "HELIX_THEME"
	EnvDevServerAddr  = "HELIX_DEVSERVER_ADDR"
	EnvDevServerDB    = "HELIX_DEVSERVER_DB"
	EnvAllowOverlap   = "HELIX_ALLOW_OVERLAP"
	EnvIdentitySource = "HELIX_IDENTITY_PROVIDER"
	EnvLocalOnly      = "HELIX_LOCAL_ONLY"
)

// DotEnvFile is read from the working directory by LoadDotEnv.
var DotEnvFile = ".env"

// LoadDotEnv loads DotEnvFile into the process environment if it exists.
// Variables already set are not overwritten.
func LoadDotEnv() error {
	err := godotenv.Load(DotEnvFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", DotEnvFile, err)
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HELIX_BACKEND_URL: backend.base_url
//   - HELIX_IDENTITY_PROVIDER: identity.provider
//   - HELIX_USER_ID: identity.user_id
//   - HELIX_SESSION_TOKEN: identity.session_token (also selects the token provider)
//   - HELIX_TOKEN_SECRET: identity.token_secret
//   - HELIX_THEME: ui.theme
//   - HELIX_DEVSERVER_ADDR: devserver.addr
//   - HELIX_DEVSERVER_DB: devserver.db_path
//   - HELIX_ALLOW_OVERLAP: chat.allow_overlapping_sends ("1" or "true")
//   - HELIX_LOCAL_ONLY: backend.local_only
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvUserID); v != "" {
		c.Identity.UserID = v
	}
	if v := os.Getenv(EnvSessionToken); v != "" {
		c.Identity.SessionToken = v
		c.Identity.Provider = "token"
	}
	if v := os.Getenv(EnvIdentitySource); v != "" {
		c.Identity.Provider = v
	}
	if v := os.Getenv(EnvTokenSecret); v != "" {
		c.Identity.TokenSecret = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv(EnvDevServerAddr); v != "" {
		c.DevServer.Addr = v
	}
	if v := os.Getenv(EnvDevServerDB); v != "" {
		c.DevServer.DBPath = v
	}
	if v := os.Getenv(EnvAllowOverlap); v != "" {
		c.Chat.AllowOverlappingSends = parseBool(v)
	}
	if v := os.Getenv(EnvLocalOnly); v != "" {
		c.Backend.LocalOnly = parseBool(v)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
