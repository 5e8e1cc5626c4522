// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jeranaias/helix-tui/internal/config"
)

// HandleConfig runs `helix config [show|get|set|path]`.
func HandleConfig(args Args, st Streams) error {
	switch args.Subcommand {
	case "", "show", "list":
		return configShow(args, st)
	case "get":
		return configGet(args, st)
	case "set":
		return configSet(args, st)
	case "path":
		return configPath(args, st)
	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"must be show, get, set or path", "helix config set backend.base_url http://127.0.0.1:5000")
	}
}

func configShow(args Args, st Streams) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	values := make(map[string]any)
	for _, key := range config.GetAllKeys() {
		v, _ := cfg.Get(key)
		values[key] = maskIfSecret(key, v)
	}
	if args.JSON {
		return NewJSONResponse(CmdConfig.String(), values).Write(st.Out)
	}

	path, _ := ConfigFile(args)
	fmt.Fprintln(st.Out, TitleStyle.Render("helix configuration"))
	fmt.Fprintf(st.Out, "%s%s\n", RenderLabel("file"), DimStyle.Render(path))
	section := ""
	for _, key := range config.GetAllKeys() {
		head, _, _ := strings.Cut(key, ".")
		if head != section {
			section = head
			fmt.Fprintln(st.Out, SectionStyle.Render("["+section+"]"))
		}
		fmt.Fprintf(st.Out, "  %s%s\n", RenderLabel(key), ValueStyle.Render(fmt.Sprint(values[key])))
	}
	return nil
}

func configGet(args Args, st Streams) error {
	if args.ConfigKey == "" {
		return &UsageError{Usage: "helix config get KEY"}
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewValidationError("key", args.ConfigKey, err.Error())
	}
	v = maskIfSecret(args.ConfigKey, v)
	if args.JSON {
		return NewJSONResponse(CmdConfig.String(), map[string]any{args.ConfigKey: v}).Write(st.Out)
	}
	fmt.Fprintln(st.Out, v)
	return nil
}

// configSet edits the file on disk. Environment overrides are not applied
// first, so they are never written back.
func configSet(args Args, st Streams) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return &UsageError{Usage: "helix config set KEY VALUE"}
	}
	path, err := ConfigFile(args)
	if err != nil {
		return &ConfigError{Err: err}
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if err := readConfigFile(cfg, path); err != nil {
			return &ConfigError{Err: err}
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return &ConfigError{Err: statErr}
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationError("key", args.ConfigKey, err.Error())
	}
	if err := cfg.Migrate(); err != nil {
		return &ConfigError{Err: err}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Err: err}
	}
	if err := writeConfigFile(cfg, path); err != nil {
		return &ConfigError{Err: err}
	}

	if args.JSON {
		return NewJSONResponse(CmdConfig.String(), map[string]any{
			"key":   args.ConfigKey,
			"value": maskIfSecret(args.ConfigKey, args.ConfigVal),
			"file":  path,
		}).Write(st.Out)
	}
	fmt.Fprintf(st.Out, "%s %s = %v\n", SuccessStyle.Render("Set"), args.ConfigKey, maskIfSecret(args.ConfigKey, args.ConfigVal))
	return nil
}

func configPath(args Args, st Streams) error {
	path, err := ConfigFile(args)
	if err != nil {
		return &ConfigError{Err: err}
	}
	if args.JSON {
		return NewJSONResponse(CmdConfig.String(), map[string]string{"path": path}).Write(st.Out)
	}
	fmt.Fprintln(st.Out, path)
	return nil
}

func readConfigFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.LoadJSON(cfg, path)
	}
	return config.LoadTOML(cfg, path)
}

func writeConfigFile(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// maskIfSecret hides credentials, keeping the last four characters.
func maskIfSecret(key string, v any) any {
	s, ok := v.(string)
	if !ok || !config.IsSecretKey(key) || s == "" {
		return v
	}
	if len(s) <= 8 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
