package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults
const (
	DefaultPort           = 3318
	DefaultUploadDir      = "./uploads"
	DefaultMaxUploadBytes = 16 << 20
	DefaultSessionTTL     = 365 * 24 * time.Hour
	DefaultTxMaxAttempts  = 5
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	HashSalt     string

	UploadDir      string
	MaxUploadBytes int64
	BaseURL        string
	StaticDir      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	TxMaxAttempts int
}

// UseRedis reports whether sessions go to Redis instead of memory.
func (c Config) UseRedis() bool {
	return c.RedisAddr != ""
}

// UseCloudinary reports whether uploads go to Cloudinary instead of UploadDir.
func (c Config) UseCloudinary() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// ParseFlags validates flags and fills unset values from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("daily-gallery", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.HashSalt, "hash-salt", "", "User id hash salt (prefer env)")

	// Storage
	fs.StringVar(&cfg.UploadDir, "upload-dir", "", "Directory for uploaded images")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", 0, "Maximum upload size in bytes")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL prefixed to upload links")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "Frontend directory served at /")

	// Sessions
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for sessions (host:port)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Session lifetime")

	fs.IntVar(&cfg.TxMaxAttempts, "tx-attempts", 0, "Attempts for a conflicting transaction")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", DefaultPort)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("DATABASE_TYPE must be sqlite or postgres, got %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.HashSalt == "" {
		cfg.HashSalt = os.Getenv("USER_HASH_SALT")
	}
	if cfg.HashSalt == "" {
		return Config{}, errors.New("USER_HASH_SALT required")
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = envString("UPLOAD_DIR", DefaultUploadDir)
	}
	if cfg.MaxUploadBytes == 0 {
		n, err := envInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxUploadBytes = int64(n)
	}
	if cfg.MaxUploadBytes < 1 {
		return Config{}, errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = os.Getenv("STATIC_DIR")
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	cfg.RedisDB = redisDB

	if cfg.SessionTTL == 0 {
		ttl, err := envDuration("SESSION_TTL", DefaultSessionTTL)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionTTL = ttl
	}
	if cfg.SessionTTL < 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}

	cfg.CloudinaryCloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.CloudinaryAPIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.CloudinaryAPISecret = os.Getenv("CLOUDINARY_API_SECRET")
	anyCloudinary := cfg.CloudinaryCloudName != "" || cfg.CloudinaryAPIKey != "" || cfg.CloudinaryAPISecret != ""
	if anyCloudinary && !cfg.UseCloudinary() {
		return Config{}, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set together")
	}

	if cfg.TxMaxAttempts == 0 {
		n, err := envInt("TX_MAX_ATTEMPTS", DefaultTxMaxAttempts)
		if err != nil {
			return Config{}, err
		}
		cfg.TxMaxAttempts = n
	}
	if cfg.TxMaxAttempts < 1 {
		return Config{}, errors.New("TX_MAX_ATTEMPTS must be at least 1")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %q", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %q", key, v)
	}
	return d, nil
}
