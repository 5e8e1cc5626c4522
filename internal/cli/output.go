// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/helix-tui/internal/model"
)

// =============================================================================
// JSON OUTPUT
// =============================================================================

// JSONResponse is the envelope for --json output.
type JSONResponse struct {
	Success   bool    `json:"success"`
	Data      any     `json:"data"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
	Command   string  `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	msg := err.Error()
	return &JSONResponse{
		Error:     &msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes r to w, indented.
func (r *JSONResponse) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// MarkdownRenderer renders assistant replies for line mode. A nil renderer
// passes text through.
type MarkdownRenderer struct {
	r *glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer for the given width, or a
// pass-through renderer when enabled is false or glamour cannot be set up.
func NewMarkdownRenderer(enabled bool, width int) *MarkdownRenderer {
	if !enabled {
		return &MarkdownRenderer{}
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		return &MarkdownRenderer{}
	}
	return &MarkdownRenderer{r: r}
}

// Render returns text rendered as markdown, or text on failure.
func (m *MarkdownRenderer) Render(text string) string {
	if m == nil || m.r == nil {
		return text
	}
	out, err := m.r.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// SEQUENCE LISTING
// =============================================================================

// PrintSequence writes a numbered step list, or placeholder when empty.
func PrintSequence(w io.Writer, title string, steps []model.Step, placeholder string) {
	fmt.Fprintln(w, TitleStyle.Render(title))
	if len(steps) == 0 {
		fmt.Fprintln(w, DimStyle.Render("  "+placeholder))
		return
	}
	for _, st := range steps {
		fmt.Fprintf(w, "  %s %s\n", StepNumberStyle.Render(fmt.Sprintf("%d.", st.Number)), ValueStyle.Render(st.Title))
		for _, line := range strings.Split(st.Content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fmt.Fprintf(w, "     %s\n", DimStyle.Render(line))
		}
	}
}
