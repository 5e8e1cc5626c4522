// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"errors"
	"fmt"
)

// Error variables for TransportError causes that have no underlying error.
var (
	// ErrStatus indicates the server answered with a non-2xx status.
	ErrStatus = errors.New("unexpected status")

	// ErrResponseTooLarge indicates the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// TransportError is returned by every Client operation that fails: the request
// could not be sent, the server answered non-2xx, or the body was not valid JSON.
type TransportError struct {
	Op     string // operation name, e.g. "classify"
	Status int    // HTTP status, 0 if no response was received
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s (HTTP %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is or wraps a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
