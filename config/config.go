// Package config loads the handful of environment-driven settings the
// server and workers need: the upstream endpoints and API key, the KV
// backend to use, the HTTP port, and the worker cadences.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. It is
// built once in cmd/transitctl and passed down explicitly; nothing in
// this module reaches back into os.Getenv after this point.
type Config struct {
	ListeningPort int

	StaticURL      string
	TripUpdatesURL string
	VehiclePosURL  string
	AlertsURL      string
	UpstreamAPIKey string

	KVBackend       string // "memory", "sqlite", or "postgres"
	SQLiteOnDisk    bool
	SQLiteDir       string
	PostgresConnStr string

	RealtimeCadence time.Duration
	RealtimeTTL     time.Duration
	RealtimeTimeout time.Duration
	ScheduleCron    string
}

// Load reads .env (if present) then the environment, falling back to
// defaults matched to the spec's design cadences.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
	}

	backend := os.Getenv("KV_BACKEND")
	if backend == "" {
		backend = "memory"
	}

	sqliteDir := os.Getenv("SQLITE_DIR")
	if sqliteDir == "" {
		sqliteDir = "."
	}

	cronSpec := os.Getenv("SCHEDULE_CRON")
	if cronSpec == "" {
		cronSpec = "0 3 * * *" // daily at 03:00
	}

	return &Config{
		ListeningPort: port,

		StaticURL:      os.Getenv("STATIC_FEED_URL"),
		TripUpdatesURL: os.Getenv("TRIP_UPDATES_URL"),
		VehiclePosURL:  os.Getenv("VEHICLE_POSITIONS_URL"),
		AlertsURL:      os.Getenv("ALERTS_URL"),
		UpstreamAPIKey: os.Getenv("UPSTREAM_API_KEY"),

		KVBackend:       backend,
		SQLiteOnDisk:    os.Getenv("SQLITE_ON_DISK") == "1",
		SQLiteDir:       sqliteDir,
		PostgresConnStr: os.Getenv("POSTGRES_CONN_STR"),

		RealtimeCadence: 120 * time.Second,
		RealtimeTTL:     180 * time.Second,
		RealtimeTimeout: 10 * time.Second,
		ScheduleCron:    cronSpec,
	}, nil
}
