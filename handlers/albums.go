// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/daily-gallery/albums"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/models"
)

type AlbumHandler struct {
	store *albums.Store
}

func NewAlbumHandler(store *albums.Store) *AlbumHandler {
	return &AlbumHandler{store: store}
}

// GetAlbum handles GET /api/albums/{date}/{number}
func (h *AlbumHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	key, ok := albumKeyFromPath(w, r)
	if !ok {
		return
	}

	album, err := h.store.Get(r.Context(), key)
	if err != nil {
		writeError(w, err, "Failed to load album")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, album)
}

// ListByDate handles GET /api/albums/{date}
func (h *AlbumHandler) ListByDate(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")

	list, err := h.store.ListByDate(r.Context(), date)
	if err != nil {
		writeError(w, err, "Failed to load albums")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, albumList(date, list))
}

// Today handles GET /api/today
func (h *AlbumHandler) Today(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.Today(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load today's albums")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, albumList(h.store.TodayDate(), list))
}

// MoveAlbum handles POST /api/albums/{date}/{number}/move
func (h *AlbumHandler) MoveAlbum(w http.ResponseWriter, r *http.Request) {
	from, ok := albumKeyFromPath(w, r)
	if !ok {
		return
	}

	var req models.MoveAlbumRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	to := models.AlbumKey{Date: req.AlbumDate, Number: req.AlbumNumber}

	if err := h.store.MoveAlbum(r.Context(), from, to); err != nil {
		writeError(w, err, "Failed to move album")
		return
	}

	album, err := h.store.Get(r.Context(), to)
	if err != nil {
		writeError(w, err, "Failed to load album")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, album)
}

// History handles GET /api/history
func (h *AlbumHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.History(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load history")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.HistoryResponse{
		Albums: entries,
		Total:  len(entries),
	})
}

func albumList(date string, list []models.AlbumWithImages) models.AlbumListResponse {
	if list == nil {
		list = []models.AlbumWithImages{}
	}
	return models.AlbumListResponse{
		AlbumDate: date,
		Albums:    list,
		Total:     len(list),
	}
}
