// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes a session's conversation and sequence to a file.
// Markdown is for reading, JSON keeps the wire shapes for tooling.
package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/helix-tui/internal/model"
	"github.com/jeranaias/helix-tui/internal/session"
	"github.com/jeranaias/helix-tui/internal/util"
)

// ErrNothingToExport is returned for a transcript with no messages and no steps.
var ErrNothingToExport = errors.New("nothing to export")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is what gets exported.
type Transcript struct {
	UserID     string          `json:"user_id"`
	Messages   []model.Message `json:"messages"`
	Sequence   model.Sequence  `json:"sequence"`
	ExportedAt time.Time       `json:"exported_at"`
}

// FromSnapshot builds a Transcript from session state.
func FromSnapshot(snap session.Snapshot, now time.Time) *Transcript {
	return &Transcript{
		UserID:     snap.UserID,
		Messages:   snap.Messages,
		Sequence:   snap.Sequence,
		ExportedAt: now.UTC(),
	}
}

// Empty reports whether t has nothing worth writing.
func (t *Transcript) Empty() bool {
	return t == nil || (len(t.Messages) == 0 && t.Sequence.IsEmpty())
}

// =============================================================================
// EXPORTERS
// =============================================================================

// Exporter converts a transcript to one file format.
type Exporter interface {
	Export(t *Transcript) ([]byte, error)
	FileExtension() string
}

// Options configures export behavior.
type Options struct {
	// OutputDir receives the file. Default: current directory.
	OutputDir string
	// IncludeMetadata adds a front matter block (Markdown only).
	IncludeMetadata bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: ".", IncludeMetadata: true}
}

// ForFormat returns the exporter for "md"/"markdown" or "json".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want md or json)", format)
	}
}

// ToFile exports t with exporter into opts.OutputDir and returns the path.
func ToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if t.Empty() {
		return "", ErrNothingToExport
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	filename := fmt.Sprintf("helix_%s_%s%s",
		sanitizeFilename(t.UserID),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// sanitizeFilename replaces characters that are invalid in file names.
func sanitizeFilename(s string) string {
	const maxLen = 40
	if r := []rune(s); len(r) > maxLen {
		s = string(r[:maxLen])
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}
