// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/backend"
	"github.com/tomtom215/marquee/internal/identity"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/validation"
	"github.com/tomtom215/marquee/internal/viewer"
)

// fetchTimeout bounds the background recommendation fetch spawned on login
// and reload. The HTTP client carries its own timeout; this is a hard upper
// bound so an abandoned fetch cannot pin the session's in-flight slot.
const fetchTimeout = 2 * time.Minute

// Handlers carries the dependencies shared by all API endpoints.
type Handlers struct {
	gateway     backend.Gateway
	recommender *recommend.Client
	identities  identity.Store
	session     *viewer.Session
}

// NewHandlers wires the endpoint handlers to their dependencies.
func NewHandlers(gateway backend.Gateway, recommender *recommend.Client, identities identity.Store, session *viewer.Session) *Handlers {
	return &Handlers{
		gateway:     gateway,
		recommender: recommender,
		identities:  identities,
		session:     session,
	}
}

// fetch retrieves recommendations for userID in the background and delivers
// the outcome to the session under the given token. Results for superseded
// tokens are discarded inside the session.
func (h *Handlers) fetch(token uint64, userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	resp, err := h.recommender.Recommendations(ctx, userID, 0)
	if err != nil {
		logging.Warn().
			Int("user_id", userID).
			Uint64("token", token).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("Recommendation fetch failed")
		h.session.RequestFailed(token, recommend.UserMessage(err))
		return
	}
	h.session.ResponseReceived(token, resp.Recommendations)
}

// restoreIdentity lazily resumes the session from the persisted identity.
// It only acts when the session has never seen a sign-in this process.
func (h *Handlers) restoreIdentity(ctx context.Context) {
	if h.session.State() != viewer.StateUnauthenticated {
		return
	}
	userID, ok, err := h.identities.Current(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to read persisted identity")
		return
	}
	if !ok {
		return
	}
	if token, started := h.session.IdentityAvailable(userID); started {
		logging.Info().Int("user_id", userID).Msg("Restored persisted identity")
		go h.fetch(token, userID)
	}
}

// HandleLogin processes POST /api/session.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "user_id must be a positive integer", verr)
		return
	}

	if err := h.identities.Login(r.Context(), req.UserID); err != nil {
		if errors.Is(err, identity.ErrInvalidIdentity) {
			respondError(w, http.StatusBadRequest, "user_id must be a positive integer", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to persist identity", err)
		return
	}

	// A login always starts a fresh session, replacing any prior identity
	// and invalidating any fetch still in flight for it.
	h.session.LoggedOut()
	token, started := h.session.IdentityAvailable(req.UserID)
	if started {
		go h.fetch(token, req.UserID)
	}

	logging.Info().Int("user_id", req.UserID).Msg("User signed in")
	respondJSON(w, http.StatusOK, &models.SessionResponse{UserID: req.UserID})
}

// HandleCurrentSession processes GET /api/session.
func (h *Handlers) HandleCurrentSession(w http.ResponseWriter, r *http.Request) {
	userID, ok, err := h.identities.Current(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read persisted identity", err)
		return
	}
	if !ok {
		respondError(w, http.StatusUnauthorized, "No active session", nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.SessionResponse{UserID: userID})
}

// HandleLogout processes DELETE /api/session.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.identities.Logout(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to clear persisted identity", err)
		return
	}
	h.session.LoggedOut()
	logging.Info().Msg("User signed out")
	w.WriteHeader(http.StatusNoContent)
}

// HandleBrowse processes GET /api/browse. The optional q parameter switches
// the view from genre rows to a flat filtered result list.
func (h *Handlers) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	h.restoreIdentity(r.Context())

	query := r.URL.Query().Get("q")
	view := h.session.Snapshot(query)
	respondJSON(w, http.StatusOK, view)
}

// HandleReload processes POST /api/browse/reload, re-running the fetch for
// the signed-in user. Only a settled session (ready or failed) can reload.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	h.restoreIdentity(r.Context())

	token, ok := h.session.ReloadRequested()
	if !ok {
		respondError(w, http.StatusConflict, "No completed session to reload", nil)
		return
	}
	userID, _ := h.session.UserID()
	go h.fetch(token, userID)

	view := h.session.Snapshot("")
	respondJSON(w, http.StatusAccepted, view)
}

// HandleHealth processes GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
