// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/helix-tui/internal/ui/styles"
	"github.com/jeranaias/helix-tui/internal/util"
)

// StatusLine renders the transient status with its spinner frame. An empty
// status renders as a blank line so the layout does not jump.
func StatusLine(theme *styles.Theme, spinner, status string) string {
	if status == "" {
		return " "
	}
	return theme.Spinner.Render(spinner) + " " + theme.Status.Render(status)
}

// HelpBar renders enabled key bindings as "key desc" pairs, dropping
// bindings from the end until the bar fits width.
func HelpBar(theme *styles.Theme, bindings []key.Binding, width int) string {
	var parts []string
	used := 0
	sep := theme.HelpDesc.Render("  ")
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		part := theme.HelpKey.Render(h.Key) + " " + theme.HelpDesc.Render(h.Desc)
		w := util.StringWidth(h.Key) + 1 + util.StringWidth(h.Desc)
		if len(parts) > 0 {
			w += 2
		}
		if used+w > width {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, sep)
}
