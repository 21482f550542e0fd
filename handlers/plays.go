// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/daily-gallery/attempts"
	"github.com/danielhkuo/daily-gallery/identity"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/danielhkuo/daily-gallery/stats"
)

type PlayHandler struct {
	ledger     *attempts.Ledger
	reporter   *stats.Reporter
	resolver   *identity.Resolver
	sessionTTL time.Duration
}

func NewPlayHandler(ledger *attempts.Ledger, reporter *stats.Reporter, resolver *identity.Resolver, sessionTTL time.Duration) *PlayHandler {
	return &PlayHandler{
		ledger:     ledger,
		reporter:   reporter,
		resolver:   resolver,
		sessionTTL: sessionTTL,
	}
}

// SubmitPlay handles POST /api/plays
func (h *PlayHandler) SubmitPlay(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitPlayRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id := resolveRequest(h.resolver, h.sessionTTL, w, r, req.UserID)
	key := models.AlbumKey{Date: req.AlbumDate, Number: req.AlbumNumber}

	outcome, err := h.ledger.RegisterAttempt(r.Context(), id.UserID, key, req.Succeeded, req.Tries)
	if err != nil {
		writeError(w, err, "Failed to register play")
		return
	}

	result, albumStats, err := h.reporter.Summary(r.Context(), id.UserID, key)
	if err != nil {
		writeError(w, err, "Failed to load results")
		return
	}

	slog.Info("play registered",
		"album", key.String(),
		"first_play", outcome.IsFirstPlay,
		"play_count", outcome.PlayCount,
		"identity", id.Source,
	)

	status := http.StatusOK
	if outcome.IsFirstPlay {
		status = http.StatusCreated
	}
	middleware.JSONResponse(w, status, models.SubmitPlayResponse{
		UserID:      id.UserID,
		IsFirstPlay: outcome.IsFirstPlay,
		PlayCount:   outcome.PlayCount,
		Result:      result,
		Stats:       albumStats,
	})
}

// GetUserResult handles GET /api/albums/{date}/{number}/me
func (h *PlayHandler) GetUserResult(w http.ResponseWriter, r *http.Request) {
	key, ok := albumKeyFromPath(w, r)
	if !ok {
		return
	}

	id := resolveRequest(h.resolver, h.sessionTTL, w, r, "")
	result, err := h.reporter.UserResult(r.Context(), id.UserID, key)
	if err != nil {
		writeError(w, err, "Failed to load result")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

// GetAlbumStats handles GET /api/albums/{date}/{number}/stats
func (h *PlayHandler) GetAlbumStats(w http.ResponseWriter, r *http.Request) {
	key, ok := albumKeyFromPath(w, r)
	if !ok {
		return
	}

	albumStats, err := h.reporter.AlbumStats(r.Context(), key)
	if err != nil {
		writeError(w, err, "Failed to load stats")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, albumStats)
}

// albumKeyFromPath parses {date} and {number}, writing a 400 on failure.
func albumKeyFromPath(w http.ResponseWriter, r *http.Request) (models.AlbumKey, bool) {
	key, err := models.ParseAlbumKey(r.PathValue("date"), r.PathValue("number"))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return models.AlbumKey{}, false
	}
	return key, true
}
