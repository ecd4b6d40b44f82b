// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package backend implements the gateway to the external recommendation
// backend.
//
// The gateway is transport-level only: it forwards calls, bounds the body
// reads, and normalizes every failure into one of four shapes
// (ErrNotConfigured, *StatusError, *UnreachableError, *DecodeError). A
// successful payload is returned as raw JSON, verbatim; schema validation
// belongs to the recommendation client one layer up.
//
// Calls are single-shot. The gateway never retries: the interactive caller
// owns recovery via an explicit reload, so retrying here would only mask
// failures and multiply load on a struggling backend.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Backend endpoint paths, fixed by the scoring service's contract.
const (
	recommendPath = "/ncf/recommend"
	topRatedPath  = "/autorec/random-top-rated"
)

// maxErrorBodySize caps how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// Gateway is the transport boundary to the recommendation backend.
//
// Both operations are idempotent from the caller's perspective: Recommend is
// logically a read despite using POST on the wire.
type Gateway interface {
	// Recommend fetches the top-k ranked recommendations for a user.
	Recommend(ctx context.Context, userID, k int) (json.RawMessage, error)

	// TopRated fetches one top-rated movie pick for a user.
	TopRated(ctx context.Context, userID int) (json.RawMessage, error)
}

// Client is the production Gateway implementation.
//
// Thread safety: safe for concurrent use; each call builds its own request.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a backend gateway client from configuration.
//
// The HTTP client timeout is the only time bound applied: Marquee adds no
// per-request deadline of its own, so a stalled backend surfaces as a
// transport timeout rather than a silent partial result.
func NewClient(cfg *config.BackendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.URL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// recommendBody is the wire shape of the backend recommend call.
type recommendBody struct {
	UserID int `json:"user_id"`
	K      int `json:"k"`
}

// Recommend forwards a recommendation request to POST {base}/ncf/recommend.
func (c *Client) Recommend(ctx context.Context, userID, k int) (json.RawMessage, error) {
	if c.baseURL == "" {
		metrics.RecordBackendRequest("recommend", "not_configured", 0)
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(recommendBody{UserID: userID, K: k})
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommend body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+recommendPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create recommend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, "recommend")
}

// TopRated forwards a top-rated request to
// GET {base}/autorec/random-top-rated?user_id=N.
func (c *Client) TopRated(ctx context.Context, userID int) (json.RawMessage, error) {
	if c.baseURL == "" {
		metrics.RecordBackendRequest("top_rated", "not_configured", 0)
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("user_id", strconv.Itoa(userID))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, topRatedPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create top-rated request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, "top_rated")
}

// do issues a single-shot request and applies the normalization policy.
func (c *Client) do(req *http.Request, endpoint string) (json.RawMessage, error) {
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, "unreachable", time.Since(start))
		logging.Error().Err(err).Str("endpoint", endpoint).Str("backend", c.baseURL).Msg("Backend transport failure")
		return nil, &UnreachableError{Endpoint: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readBodyForError(resp.Body)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		metrics.RecordBackendRequest(endpoint, "rejected", time.Since(start))
		logging.Error().Int("status", resp.StatusCode).Str("endpoint", endpoint).Str("detail", detail).Msg("Backend rejected request")
		return nil, &StatusError{Status: resp.StatusCode, Detail: detail}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, "unreachable", time.Since(start))
		logging.Error().Err(err).Str("endpoint", endpoint).Msg("Backend body read failure")
		return nil, &UnreachableError{Endpoint: c.baseURL, Err: err}
	}

	if !json.Valid(payload) {
		metrics.RecordBackendRequest(endpoint, "decode_error", time.Since(start))
		logging.Error().Str("endpoint", endpoint).Int("bytes", len(payload)).Msg("Backend returned non-JSON success body")
		return nil, &DecodeError{Err: fmt.Errorf("invalid JSON in %d-byte body", len(payload))}
	}

	metrics.RecordBackendRequest(endpoint, "success", time.Since(start))
	return json.RawMessage(payload), nil
}

// readBodyForError reads an error response body, capped at 64KB.
// Returns "" when the body is unreadable so callers can fall back to the
// HTTP status phrase.
func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return ""
	}
	if len(body) == maxErrorBodySize {
		body = append(body, []byte("... (truncated)")...)
	}
	return string(body)
}
