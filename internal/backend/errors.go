// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package backend

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the backend base URL is unset.
// No network access is attempted in that case. The message doubles as the
// end-user error text and therefore names the missing environment variable.
var ErrNotConfigured = errors.New("BACKEND_URL environment variable is not set")

// StatusError reports a backend that was reachable but rejected the call.
// Status and Detail carry the backend's original status code and body text
// unchanged so the proxy can re-surface them verbatim.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend error: %d %s", e.Status, e.Detail)
}

// UnreachableError reports a transport-level failure: name resolution,
// connection refused, or timeout. Err holds the raw transport cause for
// logging; it must never be shown to the end user.
type UnreachableError struct {
	// Endpoint is the backend base address the operator should check.
	Endpoint string
	Err      error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("backend unreachable at %s: %v", e.Endpoint, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// UserMessage is the fixed operator-actionable text shown to the end user.
// It names the expected backend location and leaks no transport detail.
func (e *UnreachableError) UserMessage() string {
	return fmt.Sprintf("Unable to connect to the recommendation server. Please ensure the backend server is running on %s.", e.Endpoint)
}

// DecodeError reports a 2xx response whose body is not valid JSON.
// This is a backend contract violation, not a caller mistake.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend returned malformed JSON: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
