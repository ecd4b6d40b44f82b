// Marquee - Personalized Movie Recommendation Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/backend"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

// HandleRecommend processes POST /api/recommend, proxying the request to the
// recommendation backend. The backend payload is forwarded verbatim on
// success; backend failures are normalized into the error envelope.
func (h *Handlers) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "user_id parameter is required", verr)
		return
	}

	payload, err := h.gateway.Recommend(r.Context(), req.UserID, req.K)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	respondRaw(w, http.StatusOK, payload)
}

// HandleTopRated processes GET /api/top-rated?user_id=N, proxying to the
// backend's top-rated sampler. A missing or malformed user_id is rejected
// before any backend call is made.
func (h *Handlers) HandleTopRated(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "user_id parameter is required", nil)
		return
	}
	userID, err := strconv.Atoi(raw)
	if err != nil || userID <= 0 {
		respondError(w, http.StatusBadRequest, "user_id parameter is required", err)
		return
	}

	payload, err := h.gateway.TopRated(r.Context(), userID)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	respondRaw(w, http.StatusOK, payload)
}

// writeGatewayError maps the backend error taxonomy onto HTTP responses.
// Backend rejections keep their original status; connectivity and decode
// failures collapse to fixed, operator-friendly messages.
func writeGatewayError(w http.ResponseWriter, err error) {
	var statusErr *backend.StatusError
	var unreachableErr *backend.UnreachableError
	var decodeErr *backend.DecodeError

	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		respondError(w, http.StatusInternalServerError, err.Error(), nil)
	case errors.As(err, &statusErr):
		message := fmt.Sprintf("Backend error: %d %s", statusErr.Status, statusErr.Detail)
		respondError(w, statusErr.Status, message, nil)
	case errors.As(err, &unreachableErr):
		respondError(w, http.StatusInternalServerError, unreachableErr.UserMessage(), err)
	case errors.As(err, &decodeErr):
		respondError(w, http.StatusBadGateway, "The recommendation server returned an unexpected response. Please try again later.", err)
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error", err)
	}
}
