// Package config holds the server's environment-backed configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the table server needs from its environment.
type Config struct {
	// ListenAddr is the host:port the HTTP listener binds to.
	ListenAddr string
	// LogLevel is a logrus level name ("info", "debug", ...).
	LogLevel string
	// RoomIdleTimeout is how long an empty room lingers before cleanup.
	RoomIdleTimeout time.Duration
	// MaxRooms caps the number of concurrently hosted games.
	MaxRooms int
}

// Load reads configuration from the environment, after loading a .env file
// if one is present. Missing variables fall back to defaults.
func Load() (*Config, error) {
	// A missing .env file is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:      getEnv("HANDFOOT_LISTEN_ADDR", ":8080"),
		LogLevel:        getEnv("HANDFOOT_LOG_LEVEL", "info"),
		RoomIdleTimeout: 15 * time.Minute,
		MaxRooms:        256,
	}

	if v := os.Getenv("HANDFOOT_ROOM_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parsing HANDFOOT_ROOM_IDLE_TIMEOUT: %w", err)
		}
		cfg.RoomIdleTimeout = d
	}
	if v := os.Getenv("HANDFOOT_MAX_ROOMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("parsing HANDFOOT_MAX_ROOMS: %q is not a positive integer", v)
		}
		cfg.MaxRooms = n
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
