// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.BackendConfig{
		URL:     baseURL,
		Timeout: 5 * time.Second,
	})
}

func TestRecommendSuccessForwardsPayloadVerbatim(t *testing.T) {
	t.Parallel()

	const payload = `{"user_id":42,"recommendations":[{"item_id":1,"score":0.97}],"k":1}`

	var gotPath, gotMethod string
	var gotBody recommendBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	raw, err := client.Recommend(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/ncf/recommend" {
		t.Errorf("request = %s %s, want POST /ncf/recommend", gotMethod, gotPath)
	}
	if gotBody.UserID != 42 || gotBody.K != 1 {
		t.Errorf("forwarded body = %+v, want user_id=42 k=1", gotBody)
	}
	if string(raw) != payload {
		t.Errorf("payload was not forwarded verbatim:\ngot  %s\nwant %s", raw, payload)
	}
}

func TestTopRatedBuildsQueryString(t *testing.T) {
	t.Parallel()

	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Write([]byte(`{"user_id":7,"recommendations":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if _, err := client.TopRated(context.Background(), 7); err != nil {
		t.Fatalf("TopRated() error = %v", err)
	}
	if gotURL != "/autorec/random-top-rated?user_id=7" {
		t.Errorf("request URL = %s, want /autorec/random-top-rated?user_id=7", gotURL)
	}
}

func TestUnsetBaseURLSkipsNetwork(t *testing.T) {
	t.Parallel()

	client := newTestClient("")

	if _, err := client.Recommend(context.Background(), 1, 5); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Recommend() error = %v, want ErrNotConfigured", err)
	}
	if _, err := client.TopRated(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("TopRated() error = %v, want ErrNotConfigured", err)
	}

	want := "BACKEND_URL environment variable is not set"
	if ErrNotConfigured.Error() != want {
		t.Errorf("ErrNotConfigured text = %q, want %q", ErrNotConfigured.Error(), want)
	}
}

func TestRejectedCallCarriesStatusAndBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{name: "body preserved", status: http.StatusServiceUnavailable, body: "overloaded", wantDetail: "overloaded"},
		{name: "client error preserved", status: http.StatusNotFound, body: `{"detail":"unknown user"}`, wantDetail: `{"detail":"unknown user"}`},
		{name: "empty body falls back to status text", status: http.StatusBadGateway, body: "", wantDetail: "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.Recommend(context.Background(), 1, 5)

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if statusErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", statusErr.Status, tt.status)
			}
			if statusErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", statusErr.Detail, tt.wantDetail)
			}
		})
	}
}

func TestUnreachableBackendIsNormalized(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing is listening anymore

	client := newTestClient(server.URL)
	_, err := client.Recommend(context.Background(), 1, 5)

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("error = %v, want *UnreachableError", err)
	}
	if unreachable.Endpoint != server.URL {
		t.Errorf("Endpoint = %q, want %q", unreachable.Endpoint, server.URL)
	}

	msg := unreachable.UserMessage()
	if !strings.Contains(msg, server.URL) {
		t.Errorf("UserMessage %q does not name the backend address", msg)
	}
	if !strings.HasPrefix(msg, "Unable to connect to the recommendation server.") {
		t.Errorf("UserMessage %q missing fixed prefix", msg)
	}
	if strings.Contains(msg, "connection refused") {
		t.Errorf("UserMessage %q leaks transport detail", msg)
	}
}

func TestNonJSONSuccessBodyIsDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.TopRated(context.Background(), 3)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
}

func TestErrorBodyIsTruncated(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", maxErrorBodySize*2)))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Recommend(context.Background(), 1, 5)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if len(statusErr.Detail) > maxErrorBodySize+len("... (truncated)") {
		t.Errorf("Detail length = %d, want capped at %d", len(statusErr.Detail), maxErrorBodySize)
	}
	if !strings.HasSuffix(statusErr.Detail, "... (truncated)") {
		t.Error("oversized error body was not marked as truncated")
	}
}

func TestContextCancellationSurfacesAsUnreachable(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := newTestClient(server.URL)
	_, err := client.Recommend(ctx, 1, 5)

	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("error = %v, want *UnreachableError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error chain %v does not unwrap to context.DeadlineExceeded", err)
	}
}
