// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/helix-tui/internal/model"
)

// MarkdownExporter writes the conversation followed by the sequence as a
// numbered list.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export implements Exporter.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		fmt.Fprintf(&sb, "user: %s\n", escapeYAML(t.UserID))
		fmt.Fprintf(&sb, "exported: %s\n", t.ExportedAt.Format(time.RFC3339))
		fmt.Fprintf(&sb, "messages: %d\n", len(t.Messages))
		fmt.Fprintf(&sb, "steps: %d\n", len(t.Sequence.Steps))
		if t.Sequence.HasID() {
			fmt.Fprintf(&sb, "sequence_id: %s\n", escapeYAML(t.Sequence.ID))
		}
		sb.WriteString("generator: helix\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# Helix conversation\n\n")

	sb.WriteString("## Conversation\n\n")
	if len(t.Messages) == 0 {
		sb.WriteString("_No messages._\n\n")
	}
	for i, m := range t.Messages {
		fmt.Fprintf(&sb, "### %s\n\n", m.Sender.DisplayName())
		sb.WriteString(strings.TrimSpace(m.Text))
		sb.WriteString("\n\n")
		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("## Sequence\n\n")
	writeSteps(&sb, t.Sequence.Steps)

	return []byte(sb.String()), nil
}

// FileExtension implements Exporter.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

func writeSteps(sb *strings.Builder, steps []model.Step) {
	if len(steps) == 0 {
		sb.WriteString("_No sequence generated._\n")
		return
	}
	for _, st := range steps {
		fmt.Fprintf(sb, "%d. **%s**\n", st.Number, escapeMarkdown(st.Title))
		for _, line := range strings.Split(strings.TrimSpace(st.Content), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintf(sb, "   %s\n", line)
			}
		}
	}
}

// escapeMarkdown escapes characters that break inline formatting.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`)
	return r.Replace(s)
}

// escapeYAML quotes a front matter value when it needs it.
func escapeYAML(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		s = strings.ReplaceAll(s, "\n", `\n`)
		s = strings.ReplaceAll(s, "\r", `\r`)
		return `"` + s + `"`
	}
	return s
}
