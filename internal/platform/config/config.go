package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the router and adapters need, populated from env.
// Zero values fall back to dev-friendly defaults so `go run ./cmd/web` works
// with no environment at all (in-memory repos, fs uploads, random-ish secret).
type Config struct {
	Addr string

	// Postgres DSN. Empty means in-memory repositories.
	DatabaseDSN string

	// Secret for signing session cookies.
	SessionSecret string
	// How long an authenticated session cookie stays valid.
	SessionTTL time.Duration
	// How long abandoned wizard state survives before the store drops it.
	WizardTTL time.Duration

	// Uploads: fs | s3 | memory
	UploadsDriver string
	UploadsDir    string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
}

func FromEnv() Config {
	cfg := Config{
		Addr:          ":8080",
		DatabaseDSN:   os.Getenv("DB_DSN"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    durationEnv("SESSION_TTL", 24*time.Hour),
		WizardTTL:     durationEnv("WIZARD_TTL", 30*time.Minute),
		UploadsDriver: strings.ToLower(strings.TrimSpace(os.Getenv("UPLOADS_DRIVER"))),
		UploadsDir:    os.Getenv("UPLOADS_DIR"),
		S3Bucket:      os.Getenv("UPLOADS_S3_BUCKET"),
		S3Region:      os.Getenv("UPLOADS_S3_REGION"),
		S3Endpoint:    os.Getenv("UPLOADS_S3_ENDPOINT"),
	}

	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.Addr = ":" + v
		}
	}
	if cfg.SessionSecret == "" {
		// dev fallback; production must set SESSION_SECRET
		cfg.SessionSecret = "dev-insecure-secret"
	}
	if cfg.UploadsDriver == "" {
		cfg.UploadsDriver = "fs"
	}
	if cfg.UploadsDir == "" {
		cfg.UploadsDir = "./uploads"
	}

	return cfg
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
