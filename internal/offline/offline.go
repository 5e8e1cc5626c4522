// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNonLocalhost is returned for a remote host in local-only mode.
	ErrNonLocalhost = errors.New("local-only mode: only localhost/127.0.0.1 connections allowed")

	// ErrInvalidURLScheme is returned when a URL scheme is not http or https.
	ErrInvalidURLScheme = errors.New("only http and https schemes are allowed")

	// ErrInvalidURL is returned when a URL cannot be parsed or has no host.
	ErrInvalidURL = errors.New("invalid URL")
)

// =============================================================================
// HOST CHECKS
// =============================================================================

// IsLocalhost reports whether host (optionally with a port) is loopback.
// Accepts "localhost", the whole 127.0.0.0/8 range and every form of ::1.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))

	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// =============================================================================
// URL AND ADDRESS VALIDATION
// =============================================================================

// CheckBaseURL validates the sync API base URL. The scheme is always checked;
// the host must be loopback only when localOnly is true.
func CheckBaseURL(rawURL string, localOnly bool) error {
	u, err := parse(rawURL)
	if err != nil {
		return err
	}
	if localOnly && !IsLocalhost(u.Hostname()) {
		return fmt.Errorf("%w: %s", ErrNonLocalhost, u.Host)
	}
	return nil
}

// CheckListenAddr validates a host:port listen address. An empty host binds
// every interface and so is rejected in local-only mode.
func CheckListenAddr(addr string, localOnly bool) error {
	if !localOnly {
		return nil
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("listen address %q: %w", addr, err)
	}
	if host == "" || !IsLocalhost(host) {
		return fmt.Errorf("%w: listen address %s", ErrNonLocalhost, addr)
	}
	return nil
}

// IsCleartextRemote reports whether rawURL is plain http to a non-loopback host.
func IsCleartextRemote(rawURL string) bool {
	u, err := parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "http") && !IsLocalhost(u.Hostname())
}

func parse(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	default:
		return nil, fmt.Errorf("%w, got %q", ErrInvalidURLScheme, u.Scheme)
	}
}

// =============================================================================
// STATUS DISPLAY
// =============================================================================

// StatusBadge returns "[LOCAL]" in local-only mode, "" otherwise.
func StatusBadge(localOnly bool) string {
	if localOnly {
		return "[LOCAL]"
	}
	return ""
}
