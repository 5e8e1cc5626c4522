// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the helix packages.
//
// # Key Functions
//
// Text:
//   - Normalize: NFC form and trimming for text sent to the backend
//   - TruncateWidth: display-width truncation for step titles and headers
//   - PadRight: width-aware padding for table-style output
//
// Files:
//   - AtomicWriteFile: crash-safe config writes with fsync
//
// # Usage
//
//	title := util.TruncateWidth(step.Title, 32)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
