// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend is the typed recommendation client.
//
// It wraps the transport-level backend gateway, decodes successful payloads
// into domain values, rejects invalid caller input before any network call,
// and is the single place where gateway failures become display-ready error
// text. Like the gateway, it never retries.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/backend"
	"github.com/tomtom215/marquee/internal/models"
)

// ErrBadRequest rejects caller-supplied input before any network access.
var ErrBadRequest = errors.New("user_id parameter is required")

// DefaultK is the page size used when the caller does not request one.
const DefaultK = 20

// Client fetches typed recommendations through a backend gateway.
type Client struct {
	gateway  backend.Gateway
	defaultK int
}

// NewClient creates a recommendation client. defaultK <= 0 selects DefaultK.
func NewClient(gateway backend.Gateway, defaultK int) *Client {
	if defaultK <= 0 {
		defaultK = DefaultK
	}
	return &Client{gateway: gateway, defaultK: defaultK}
}

// Recommendations fetches the ranked recommendation list for a user.
//
// userID must be positive; k <= 0 selects the configured default page size.
// The returned list preserves the backend's rank order.
func (c *Client) Recommendations(ctx context.Context, userID, k int) (*models.RecommendationsResponse, error) {
	if userID <= 0 {
		return nil, ErrBadRequest
	}
	if k <= 0 {
		k = c.defaultK
	}

	payload, err := c.gateway.Recommend(ctx, userID, k)
	if err != nil {
		return nil, err
	}

	var resp models.RecommendationsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &backend.DecodeError{Err: fmt.Errorf("recommendations payload: %w", err)}
	}
	return &resp, nil
}

// TopRated fetches one top-rated movie pick for a user.
func (c *Client) TopRated(ctx context.Context, userID int) (*models.TopRatedResponse, error) {
	if userID <= 0 {
		return nil, ErrBadRequest
	}

	payload, err := c.gateway.TopRated(ctx, userID)
	if err != nil {
		return nil, err
	}

	var resp models.TopRatedResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, &backend.DecodeError{Err: fmt.Errorf("top-rated payload: %w", err)}
	}
	return &resp, nil
}

// UserMessage maps any client or gateway error to the single string shown to
// the end user. The distinction it preserves: a reachable backend that
// rejected the call surfaces the backend's own detail, an unreachable
// backend surfaces a fixed operator-actionable message naming the expected
// endpoint. Raw transport causes never appear here; they are logged at the
// gateway.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var unreachable *backend.UnreachableError
	if errors.As(err, &unreachable) {
		return unreachable.UserMessage()
	}

	var status *backend.StatusError
	if errors.As(err, &status) {
		return fmt.Sprintf("Backend error: %d %s", status.Status, status.Detail)
	}

	var decode *backend.DecodeError
	if errors.As(err, &decode) {
		return "The recommendation server returned an unexpected response. Please try again later."
	}

	if errors.Is(err, backend.ErrNotConfigured) {
		return backend.ErrNotConfigured.Error()
	}

	if errors.Is(err, ErrBadRequest) {
		return ErrBadRequest.Error()
	}

	return "An unknown error occurred while fetching recommendations"
}
