// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits a command's arguments into flags and positionals.
//
//	--flag value   --flag=value   -f value   --flag (boolean)
//
// The first positional argument is the subcommand.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}

		if name, value, ok := strings.Cut(arg, "="); ok {
			name = strings.TrimLeft(name, "-")
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && !isBoolFlag(name) {
			p.flags[name] = raw[i+1]
			i++
		} else {
			p.boolFlags[name] = true
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// isBoolFlag lists flags that never take a value, so `--confirm delete`
// keeps delete as a positional.
func isBoolFlag(name string) bool {
	switch name {
	case "confirm", "y", "yes", "json":
		return true
	}
	return false
}

// Subcommand returns the first positional argument.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "".
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or def.
func (p *ArgParser) FlagOrDefault(name, def string) string {
	if v := p.Flag(name); v != "" {
		return v
	}
	return def
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// Positional returns the positional argument at index, or "". Index 0 is
// the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns positional arguments from index on.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// JoinPositionalArgs joins positional arguments from startIndex into one
// string, for multi-word values.
func JoinPositionalArgs(p *ArgParser, startIndex int) string {
	return strings.Join(p.PositionalFrom(startIndex), " ")
}

// ParseStepNumber parses a 1-based step number.
func ParseStepNumber(s string) (int, error) {
	if s == "" {
		return 0, NewValidationError("step number", s, "is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewValidationError("step number", s, fmt.Sprintf("must be an integer: %v", err))
	}
	if n <= 0 {
		return 0, NewValidationError("step number", s, "must be positive")
	}
	return n, nil
}
