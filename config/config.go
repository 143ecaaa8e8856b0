package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFeedURL is the public session feed used when FEED_URL is not set.
const DefaultFeedURL = "https://sleepingpill.javazone.no/public/allSessions/javazone_2025"

// Config holds all configuration for the application
type Config struct {
	Environment  string
	FeedURL      string
	FavoritesDB  string
	LogFile      string
	FetchTimeout time.Duration
}

// Load loads configuration from environment variables
// It attempts to load from .env file if not in production
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file if not in production
	// We don't return error here because in production .env might not exist
	// and we rely on system environment variables
	if env != "production" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
		}
	}

	cfg := &Config{
		Environment: env,
		FeedURL:     os.Getenv("FEED_URL"),
		FavoritesDB: os.Getenv("FAVORITES_DB"),
		LogFile:     os.Getenv("LOG_FILE"),
	}

	// Set defaults
	if cfg.FeedURL == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if cfg.FavoritesDB == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.FavoritesDB = filepath.Join(home, ".confsched", "favorites.db")
	}

	// A zero timeout means no deadline on the feed request.
	cfg.FetchTimeout = 30 * time.Second
	if s := os.Getenv("FETCH_TIMEOUT_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		}
	}

	return cfg, nil
}
