package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the process-wide settings read from the environment.
type Config struct {
	// DatabaseURL points at a postgres instance. When empty the server
	// falls back to a local sqlite file at SQLitePath.
	DatabaseURL  string `env:"DATABASE_URL"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"jwfoods.db"`
	Port         string `env:"PORT" envDefault:"8080"`
	SecretKey    string `env:"SECRET_KEY" envDefault:"dev-secret"`
	CookieSecure bool   `env:"COOKIE_SECURE"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseURL = NormalizeDatabaseURL(strings.TrimSpace(cfg.DatabaseURL))
	return cfg, nil
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme (still
// handed out by some hosting providers) to postgresql://, and defaults
// sslmode=disable for local URLs that don't specify one.
func NormalizeDatabaseURL(url string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "postgres://") {
		url = "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "localhost") || strings.Contains(url, "127.0.0.1") {
		if strings.Contains(url, "?") {
			return url + "&sslmode=disable"
		}
		return url + "?sslmode=disable"
	}
	return url
}
