package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Values come from the
// environment (optionally via a .env file) with sensible local defaults.
type Config struct {
	BindAddr string // Listen address for the HTTP/WebSocket server

	PollInterval  time.Duration // State poll cadence against the player
	ScriptTimeout time.Duration // Per-osascript invocation timeout

	ArtworkCacheDir    string // Root of the on-disk artwork cache tree
	ArtworkDefaultSize int    // Square pixel size used when the client sends none

	ArtistLookupURL string        // Base URL of the artist search endpoint
	HTTPTimeout     time.Duration // Timeout for outbound artwork downloads

	PlaylistTrackLimit int // Max playlist tracks returned per browse request

	LogLevel      string
	LogPath       string
	LogMaxSize    int // megabytes
	LogMaxBackups int
	LogMaxAge     int // days
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override variables already set in the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables and defaults.")
	}

	cacheBase := getEnv("ARTWORK_CACHE_DIR", filepath.Join(os.TempDir(), "cortlandcast", "artwork"))

	return &Config{
		BindAddr:           getEnv("BIND_ADDR", ":7766"),
		PollInterval:       time.Duration(getEnvInt("POLL_INTERVAL_MS", 500)) * time.Millisecond,
		ScriptTimeout:      time.Duration(getEnvInt("SCRIPT_TIMEOUT_SECONDS", 15)) * time.Second,
		ArtworkCacheDir:    cacheBase,
		ArtworkDefaultSize: getEnvInt("ARTWORK_DEFAULT_SIZE", 600),
		ArtistLookupURL:    getEnv("ARTIST_LOOKUP_URL", "https://itunes.apple.com/search"),
		HTTPTimeout:        time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 20)) * time.Second,
		PlaylistTrackLimit: getEnvInt("PLAYLIST_TRACK_LIMIT", 100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPath:            getEnv("LOG_PATH", ""),
		LogMaxSize:         getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:          getEnvInt("LOG_MAX_AGE_DAYS", 14),
	}
}
