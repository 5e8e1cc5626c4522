// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Accent - brand, focus and selection
var Accent = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// AccentDeep - selected step background
var AccentDeep = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#3B3655"}

// Info - user messages, key hints
var Info = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

var (
	Success = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Warning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	Danger  = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
)

// =============================================================================
// SURFACE AND TEXT
// =============================================================================

var (
	SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
	Overlay    = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}
	OverlayDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
	TextInverse   = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
)

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

var (
	UserBubbleFg     = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
	UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

	AssistantBubbleFg     = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
	AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}
)
