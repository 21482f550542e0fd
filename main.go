package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/daily-gallery/cliparse"
	"github.com/danielhkuo/daily-gallery/db"
	"github.com/danielhkuo/daily-gallery/identity"
	"github.com/danielhkuo/daily-gallery/middleware"
	"github.com/danielhkuo/daily-gallery/router"
	"github.com/danielhkuo/daily-gallery/uploads"
)

func main() {
	var err error

	// A .env file is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database (pings before returning)
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		slog.Error("session store unavailable", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	files, err := newUploadStore(cfg)
	if err != nil {
		slog.Error("upload store unavailable", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, sessions, files)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight requests finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// newSessionStore returns the Redis store when REDIS_ADDR is set and the
// in-memory store otherwise.
func newSessionStore(ctx context.Context, cfg cliparse.Config) (identity.SessionStore, func(), error) {
	if !cfg.UseRedis() {
		slog.Info("Sessions in memory", "ttl", cfg.SessionTTL)
		return identity.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	rdb, err := identity.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Sessions in redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return identity.NewRedisStore(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
}

func newUploadStore(cfg cliparse.Config) (uploads.Store, error) {
	if cfg.UseCloudinary() {
		slog.Info("Uploads to cloudinary", "cloud", cfg.CloudinaryCloudName)
		store, err := uploads.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.MaxUploadBytes)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	slog.Info("Uploads to local directory", "dir", cfg.UploadDir)
	store, err := uploads.NewLocalStore(cfg.UploadDir, cfg.BaseURL, cfg.MaxUploadBytes)
	if err != nil {
		return nil, err
	}
	return store, nil
}
