// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/helix-tui/internal/util"
)

// CurrentVersion is written to new config files.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete helix configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Backend   BackendConfig   `toml:"backend" json:"backend"`
	Identity  IdentityConfig  `toml:"identity" json:"identity"`
	Chat      ChatConfig      `toml:"chat" json:"chat"`
	Workspace WorkspaceConfig `toml:"workspace" json:"workspace"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	DevServer DevServerConfig `toml:"devserver" json:"devserver"`
}

// BackendConfig locates the sync API.
type BackendConfig struct {
	BaseURL         string  `toml:"base_url" json:"base_url"`
	TimeoutSecs     int     `toml:"timeout_secs" json:"timeout_secs"`
	RateLimitPerSec float64 `toml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
	RateBurst       int     `toml:"rate_burst" json:"rate_burst"`

	// LocalOnly refuses a non-loopback base URL or dev server address.
	LocalOnly bool `toml:"local_only" json:"local_only"`
}

// Timeout returns the request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// IdentityConfig selects the identity provider.
type IdentityConfig struct {
	// Provider is "static" or "token".
	Provider    string `toml:"provider" json:"provider"`
	UserID      string `toml:"user_id" json:"user_id"`
	DisplayName string `toml:"display_name" json:"display_name"`

	// SessionToken is a JWT from the sign-in service (token provider only).
	SessionToken string `toml:"session_token" json:"session_token"`
	// TokenSecret verifies SessionToken when set.
	TokenSecret string `toml:"token_secret" json:"token_secret"`
}

// ChatConfig holds conversation behavior.
type ChatConfig struct {
	Greeting              string `toml:"greeting" json:"greeting"`
	AllowOverlappingSends bool   `toml:"allow_overlapping_sends" json:"allow_overlapping_sends"`
}

// WorkspaceConfig holds step save timing.
type WorkspaceConfig struct {
	SaveDebounceMs  int `toml:"save_debounce_ms" json:"save_debounce_ms"`
	SaveTimeoutSecs int `toml:"save_timeout_secs" json:"save_timeout_secs"`
}

// SaveDebounce returns the per-field save window.
func (w WorkspaceConfig) SaveDebounce() time.Duration {
	return time.Duration(w.SaveDebounceMs) * time.Millisecond
}

// SaveTimeout returns the bound on one save request.
func (w WorkspaceConfig) SaveTimeout() time.Duration {
	return time.Duration(w.SaveTimeoutSecs) * time.Second
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"` // dark, light or auto
	RenderMarkdown bool   `toml:"render_markdown" json:"render_markdown"`
	LogFile        string `toml:"log_file" json:"log_file"`
	LogLevel       string `toml:"log_level" json:"log_level"`
}

// DevServerConfig configures `helix devserver`.
type DevServerConfig struct {
	Addr   string `toml:"addr" json:"addr"`
	DBPath string `toml:"db_path" json:"db_path"`
}

// Default returns a new Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".helix"
	}
	return &Config{
		Version: CurrentVersion,
		Backend: BackendConfig{
			BaseURL:         "http://127.0.0.1:5000",
			TimeoutSecs:     30,
			RateLimitPerSec: 10,
			RateBurst:       20,
		},
		Identity: IdentityConfig{
			Provider: "static",
		},
		Chat: ChatConfig{
			Greeting: "How can I help?",
		},
		Workspace: WorkspaceConfig{
			SaveDebounceMs:  1000,
			SaveTimeoutSecs: 10,
		},
		UI: UIConfig{
			Theme:          "dark",
			RenderMarkdown: true,
			LogFile:        filepath.Join(dir, "helix.log"),
			LogLevel:       "info",
		},
		DevServer: DevServerConfig{
			Addr:   "127.0.0.1:5000",
			DBPath: filepath.Join(dir, "devserver.db"),
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// EnvHome overrides the configuration directory.
const EnvHome = "HELIX_HOME"

// ConfigDir returns the helix configuration directory.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".helix"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the file Load reads: the TOML file if present, else
// the JSON file if present, else the TOML path.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// ensureSecurePermissions tightens a config file to 0600. It may hold a
// session token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration: .env into the environment, then the TOML
// file, else the JSON file, else defaults, then HELIX_* overrides.
// The result is migrated, defaulted and validated.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	path, err := ActivePath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return finish(Default())
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the file at path (JSON if it ends in .json, TOML
// otherwise) over the defaults and applies env overrides.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.HasSuffix(path, ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg. Keys absent from the file keep
// the values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %v\n", path, undecoded)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read JSON: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the active config file.
func Save(cfg *Config) error {
	path, err := ActivePath()
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# helix configuration file\n")
	buf.WriteString("# Environment variables (HELIX_*) override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg to path atomically with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone returns a copy. Config holds no reference types.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String renders the config as TOML with secrets redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Identity.SessionToken != "" {
		safe.Identity.SessionToken = "[REDACTED]"
	}
	if safe.Identity.TokenSecret != "" {
		safe.Identity.TokenSecret = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
