// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/daily-gallery/albums"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/models"
	"github.com/danielhkuo/daily-gallery/uploads"
)

// formOverhead is the room left for multipart headers and text fields on
// top of the image size limit.
const formOverhead = 1 << 20

// fallbackTitles is served by GetTitles when the database cannot be read,
// so the guessing UI still has answer suggestions.
var fallbackTitles = []string{
	"paris", "london", "rome", "berlin", "madrid",
	"barcelona", "new york", "tokyo", "sydney", "moscow",
}

type ImageHandler struct {
	store    *albums.Store
	files    uploads.Store
	maxBytes int64
}

func NewImageHandler(store *albums.Store, files uploads.Store, maxBytes int64) *ImageHandler {
	return &ImageHandler{store: store, files: files, maxBytes: maxBytes}
}

// ListImages handles GET /api/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.store.ListImages(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load images")
		return
	}
	if images == nil {
		images = []models.Image{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.ImageListResponse{
		Images: images,
		Total:  len(images),
	})
}

// UploadImage handles POST /api/images
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, uploads.TooLarge(h.maxBytes).Error())
			return
		}
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	var album *models.AlbumKey
	if date := strings.TrimSpace(r.FormValue("album_date")); date != "" {
		number := 1
		if raw := strings.TrimSpace(r.FormValue("album_number")); raw != "" {
			number, err = strconv.Atoi(raw)
			if err != nil {
				middleware.ErrorResponse(w, http.StatusBadRequest, "album_number must be an integer")
				return
			}
		}
		album = &models.AlbumKey{Date: date, Number: number}
		if err := album.Validate(); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	stored, err := h.files.Save(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, err, "Failed to store image")
		return
	}

	img, err := h.store.CreateImage(r.Context(), albums.NewImage{
		FileName:    header.Filename,
		StoredName:  stored.Name,
		URL:         stored.URL,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		Album:       album,
	})
	if err != nil {
		if delErr := h.files.Delete(r.Context(), stored.Name); delErr != nil {
			slog.Warn("failed to remove orphaned upload", "name", stored.Name, "error", delErr)
		}
		writeError(w, err, "Failed to save image")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.UploadImageResponse{
		ImageID: img.ID,
		URL:     img.URL,
		Message: "Image uploaded",
	})
}

// ScheduleImage handles POST /api/images/{id}/schedule
func (h *ImageHandler) ScheduleImage(w http.ResponseWriter, r *http.Request) {
	imageID := r.PathValue("id")
	if imageID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "image_id is required")
		return
	}

	var req models.ScheduleImageRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	img, err := h.store.ScheduleImage(r.Context(), imageID, models.AlbumKey{Date: req.AlbumDate, Number: req.AlbumNumber})
	if err != nil {
		writeError(w, err, "Failed to schedule image")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, img)
}

// ImageOfTheDay handles GET /api/image-of-the-day
func (h *ImageHandler) ImageOfTheDay(w http.ResponseWriter, r *http.Request) {
	img, fallback, err := h.store.ImageOfTheDay(r.Context())
	if err != nil {
		writeError(w, err, "Failed to load image of the day")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ImageOfTheDayResponse{
		Image:    img,
		Fallback: fallback,
	})
}

// GetTitles handles GET /api/titles
func (h *ImageHandler) GetTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.store.Titles(r.Context())
	if err != nil {
		slog.Warn("titles unavailable, serving fallback list", "error", err)
		middleware.JSONResponse(w, http.StatusOK, models.TitlesResponse{
			Titles:   fallbackTitles,
			Fallback: true,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TitlesResponse{Titles: titles})
}
