// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and manages helix configuration.
//
// # Key Types
//
//   - Config: all settings, one struct per TOML section
//   - BackendConfig: sync API location, timeout and request pacing
//   - IdentityConfig: which identity provider to use and its inputs
//   - WorkspaceConfig: step save debounce and timeout
//   - Watcher: reloads the config file when it changes on disk
//
// # Configuration Precedence
//
// Highest first:
//   - Environment variables (HELIX_*), including those set by a .env file
//   - ~/.helix/config.toml
//   - ~/.helix/config.json
//   - Built-in defaults
//
// HELIX_HOME replaces ~/.helix as the configuration directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := backend.NewClient(cfg.Backend.BaseURL).
//	    WithTimeout(cfg.Backend.Timeout())
package config
