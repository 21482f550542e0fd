// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/daily-gallery/aggregate"
	"github.com/danielhkuo/daily-gallery/albums"
	"github.com/danielhkuo/daily-gallery/attempts"
	"github.com/danielhkuo/daily-gallery/cliparse"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/handlers"
	"github.com/danielhkuo/daily-gallery/identity"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/stats"
	"github.com/danielhkuo/daily-gallery/uploads"
)

// Banner is served at / when no static frontend is configured.
const Banner = "daily-gallery API v1"

func NewRouter(conn *sql.DB, cfg cliparse.Config, sessions identity.SessionStore, files uploads.Store) *http.ServeMux {
	mux := http.NewServeMux()

	// Wire services
	runner := db.NewRunner(conn, cfg.TxMaxAttempts)
	albumStore := albums.NewStore(runner)
	counter := aggregate.NewCounter(conn)
	ledger := attempts.NewLedger(runner, albumStore, counter, cfg.HashSalt)
	reporter := stats.NewReporter(ledger, counter)
	resolver := identity.NewResolver(sessions)

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(resolver, cfg.SessionTTL)
	playHandler := handlers.NewPlayHandler(ledger, reporter, resolver, cfg.SessionTTL)
	albumHandler := handlers.NewAlbumHandler(albumStore)
	imageHandler := handlers.NewImageHandler(albumStore, files, cfg.MaxUploadBytes)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity
	mux.HandleFunc("GET /api/identity", middleware.WithLogging(identityHandler.GetIdentity))

	// Plays and results
	mux.HandleFunc("POST /api/plays", middleware.WithLogging(playHandler.SubmitPlay))
	mux.HandleFunc("GET /api/albums/{date}/{number}/me", middleware.WithLogging(playHandler.GetUserResult))
	mux.HandleFunc("GET /api/albums/{date}/{number}/stats", middleware.WithLogging(playHandler.GetAlbumStats))

	// Albums
	mux.HandleFunc("GET /api/albums/{date}/{number}", middleware.WithLogging(albumHandler.GetAlbum))
	mux.HandleFunc("POST /api/albums/{date}/{number}/move", middleware.WithLogging(albumHandler.MoveAlbum))
	mux.HandleFunc("GET /api/albums/{date}", middleware.WithLogging(albumHandler.ListByDate))
	mux.HandleFunc("GET /api/today", middleware.WithLogging(albumHandler.Today))
	mux.HandleFunc("GET /api/history", middleware.WithLogging(albumHandler.History))

	// Images
	mux.HandleFunc("GET /api/image-of-the-day", middleware.WithLogging(imageHandler.ImageOfTheDay))
	mux.HandleFunc("GET /api/images", middleware.WithLogging(imageHandler.ListImages))
	mux.HandleFunc("POST /api/images", middleware.WithLogging(imageHandler.UploadImage))
	mux.HandleFunc("POST /api/images/{id}/schedule", middleware.WithLogging(imageHandler.ScheduleImage))
	mux.HandleFunc("GET /api/titles", middleware.WithLogging(imageHandler.GetTitles))

	// Uploaded files are only served from disk for the local store
	if local, ok := files.(*uploads.LocalStore); ok {
		mux.Handle("GET "+uploads.URLPrefix, local.Handler())
	}

	// Root endpoint. Unknown API paths never fall through to the frontend.
	if cfg.StaticDir != "" {
		mux.HandleFunc("GET /api/", http.NotFound)
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.StaticDir)))
	} else {
		mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(Banner))
		})
	}

	return mux
}
