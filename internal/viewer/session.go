// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package viewer implements the presentation state machine that drives what
// a browsing client renders.
//
// The machine is Unauthenticated -> Loading -> {Ready, Failed}. Failed is
// terminal until an explicit reload; there is no automatic retry. Every
// transition is a named event (IdentityAvailable, ResponseReceived,
// RequestFailed, ReloadRequested, LoggedOut), so the machine is testable
// without any rendering or HTTP layer.
//
// In-flight requests are identified by a monotonically increasing token.
// A response or failure carrying anything but the latest token is discarded,
// which makes abandoned fetches side-effect-free without a cancellation
// signal. At most one token is outstanding at a time, so there is never a
// second concurrent fetch for the same identity.
package viewer

import (
	"sync"

	"github.com/tomtom215/marquee/internal/browse"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// State is one node of the presentation state machine.
type State int

const (
	// StateUnauthenticated means no viewer identity is available.
	StateUnauthenticated State = iota
	// StateLoading means a recommendation fetch is outstanding.
	StateLoading
	// StateReady means the ranked list is available for display.
	StateReady
	// StateFailed means the last fetch failed; recovery is manual.
	StateFailed
)

// String returns the wire name of the state.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is one consistent snapshot of what should be rendered.
//
// Rows and Results are mutually exclusive: an active search query suppresses
// genre grouping entirely, so exactly one of the two is populated in Ready.
type View struct {
	State    string                  `json:"state"`
	UserID   int                     `json:"user_id,omitempty"`
	Query    string                  `json:"query,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Featured *models.Recommendation  `json:"featured,omitempty"`
	Rows     []browse.GenreRow       `json:"rows,omitempty"`
	Results  []models.Recommendation `json:"results,omitempty"`
}

// Session is the state machine for the single signed-in viewer.
//
// Thread safety: all methods are safe for concurrent use. The fetch itself
// happens outside the session; the session only sequences transitions.
type Session struct {
	mu        sync.Mutex
	state     State
	userID    int
	nextToken uint64
	pending   uint64 // outstanding request token; 0 = none
	recs      []models.Recommendation
	errMsg    string
}

// NewSession creates a session in StateUnauthenticated.
func NewSession() *Session {
	return &Session{state: StateUnauthenticated}
}

// IdentityAvailable records that a viewer identity became available and
// enters Loading. It returns the token the eventual response must carry.
//
// ok is false when the session already left Unauthenticated or a request is
// outstanding; identity changes at most once per session, so a duplicate
// event must not issue a second concurrent fetch.
func (s *Session) IdentityAvailable(userID int) (token uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateUnauthenticated || s.pending != 0 || userID <= 0 {
		return 0, false
	}

	s.userID = userID
	return s.issueToken(), true
}

// ReloadRequested is the single manual recovery path. It re-enters Loading
// from Ready or Failed and returns a fresh token.
func (s *Session) ReloadRequested() (token uint64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != 0 || s.userID <= 0 {
		return 0, false
	}
	if s.state != StateReady && s.state != StateFailed {
		return 0, false
	}

	return s.issueToken(), true
}

// issueToken must be called with mu held.
func (s *Session) issueToken() uint64 {
	s.nextToken++
	s.pending = s.nextToken
	s.state = StateLoading
	s.errMsg = ""
	return s.pending
}

// ResponseReceived delivers a fetched ranked list. A stale token (anything
// but the outstanding one) is discarded and the call reports false.
func (s *Session) ResponseReceived(token uint64, recs []models.Recommendation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == 0 || token != s.pending {
		metrics.ViewerFetchesTotal.WithLabelValues("stale").Inc()
		return false
	}

	s.pending = 0
	s.state = StateReady
	s.recs = recs
	s.errMsg = ""
	metrics.ViewerFetchesTotal.WithLabelValues("ready").Inc()
	return true
}

// RequestFailed delivers a fetch failure with its display-ready message.
// Stale tokens are discarded just like in ResponseReceived.
func (s *Session) RequestFailed(token uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == 0 || token != s.pending {
		metrics.ViewerFetchesTotal.WithLabelValues("stale").Inc()
		return false
	}

	s.pending = 0
	s.state = StateFailed
	s.recs = nil
	s.errMsg = message
	metrics.ViewerFetchesTotal.WithLabelValues("failed").Inc()
	return true
}

// LoggedOut resets the machine to Unauthenticated. Any outstanding token is
// invalidated, so an in-flight fetch settles into a silent discard.
func (s *Session) LoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateUnauthenticated
	s.userID = 0
	s.pending = 0
	s.recs = nil
	s.errMsg = ""
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UserID returns the session's viewer id, if any.
func (s *Session) UserID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID > 0
}

// Snapshot computes the view for the given search query.
//
// The view is recomputed from the authoritative last-fetched list on every
// call; nothing is patched incrementally. With an empty query the Ready view
// carries genre rows; with an active query it carries the filtered flat list
// instead, never both.
func (s *Session) Snapshot(query string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		State:  s.state.String(),
		UserID: s.userID,
		Query:  query,
		Error:  s.errMsg,
	}

	if s.state != StateReady {
		return view
	}

	if len(s.recs) > 0 {
		featured := s.recs[0]
		view.Featured = &featured
	}

	if query != "" {
		view.Results = browse.Filter(s.recs, query)
		return view
	}
	view.Rows = browse.GroupByGenre(s.recs)
	return view
}
