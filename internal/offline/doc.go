// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline keeps helix on the local machine when local-only mode is on.
//
// With backend.local_only set, the sync API base URL and the dev server
// listen address must both be loopback. Without it, a plain-http base URL on
// a remote host is allowed but reported, since conversation text would cross
// the network unencrypted.
//
// # Usage
//
//	if err := offline.CheckBaseURL(cfg.Backend.BaseURL, cfg.Backend.LocalOnly); err != nil {
//		return err
//	}
//	if offline.IsCleartextRemote(cfg.Backend.BaseURL) {
//		logger.Warn("backend is remote and not using https")
//	}
package offline
