// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdHistory
	CmdConfig
	CmdDevServer
	CmdVersion
	CmdHelp
)

// String returns the command name used in JSON output and errors.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdDevServer:
		return "devserver"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	JSON       bool
	Quiet      bool
	Verbose    bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Confirm    bool

	// ExplicitTUI is set when `helix tui` was asked for by name, so a missing
	// terminal is an error rather than a fallback to line mode.
	ExplicitTUI bool

	// Raw args remaining after the command name.
	Raw []string

	// Options holds named options (--addr, --db, --format, --out).
	Options map[string]string
}

const usageText = `helix - chat with an assistant and edit the step sequences it generates

Usage:
  helix                          Start the TUI (line mode without a terminal)
  helix tui                      Start the TUI; fails without a terminal
  helix chat                     Line-mode chat
  helix history delete           Delete your stored chat history
  helix history export           Write the conversation and sequence to a file
  helix config [show|get|set|path]
  helix devserver                Run the local development backend
  helix version                  Show version information
  helix help                     Show this help

History:
  helix history delete --confirm Delete without prompting
  helix history export --format json --out ./exports

Config:
  helix config show              Print the effective configuration
  helix config get KEY           Print one value (e.g. backend.base_url)
  helix config set KEY VALUE     Change one value and save
  helix config path              Print the config file path

Dev server:
  helix devserver --addr 127.0.0.1:5000 --db ./helix.db

Global flags:
  --config PATH                  Config file to read and watch
  --json                         JSON output (history, config, version)
  -q, --quiet                    No banners
  -v, --verbose                  Debug logging

TUI keys:
  enter submit  tab switch pane  ctrl+n/ctrl+p next/previous field
  ctrl+x delete history  ctrl+o sign in/out  ctrl+y copy reply  ctrl+c quit

Environment:
  HELIX_HOME, HELIX_BACKEND_URL, HELIX_USER_ID, HELIX_SESSION_TOKEN,
  HELIX_TOKEN_SECRET, HELIX_THEME, HELIX_ALLOW_OVERLAP, HELIX_LOCAL_ONLY, NO_COLOR

Version: %s
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// VersionInfo is the payload of `helix version --json`.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// CurrentVersion returns the build's version information.
func CurrentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	info := CurrentVersion()
	if args.JSON {
		return NewJSONResponse(CmdVersion.String(), info).Write(w)
	}
	fmt.Fprintf(w, "helix version %s\n", info.Version)
	fmt.Fprintf(w, "  Git commit: %s\n", info.GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", info.BuildDate)
	fmt.Fprintf(w, "  Go:         %s (%s)\n", info.GoVersion, info.Platform)
	return nil
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name) and returns the command
// and its arguments.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining
	p := NewArgParser(remaining)

	switch cmd {
	case "tui":
		parsed.ExplicitTUI = true
		return CmdTUI, parsed

	case "chat":
		return CmdChat, parsed

	case "history":
		parsed.Subcommand = p.Subcommand()
		parsed.Confirm = p.BoolFlag("confirm") || p.BoolFlag("y") || p.BoolFlag("yes")
		parsed.Options["format"] = p.FlagOrDefault("format", "md")
		if v := p.Flag("out"); v != "" {
			parsed.Options["out"] = v
		}
		return CmdHistory, parsed

	case "config":
		parsed.Subcommand = p.Subcommand()
		parsed.ConfigKey = p.Positional(1)
		parsed.ConfigVal = JoinPositionalArgs(p, 2)
		return CmdConfig, parsed

	case "devserver", "dev-server", "serve":
		for _, name := range []string{"addr", "db"} {
			if v := p.Flag(name); v != "" {
				parsed.Options[name] = v
			}
		}
		return CmdDevServer, parsed

	case "version", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		parsed.Raw = append([]string{cmd}, remaining...)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsed := Args{Options: make(map[string]string)}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--json":
			parsed.JSON = true
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.ConfigPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				parsed.ConfigPath = strings.TrimPrefix(arg, "--config=")
			} else {
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, parsed
}
