package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	SnapshotPath        string
	SnapshotWorkerCount int
	SnapshotQueueSize   int
	SessionTTLMinutes   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:estimator.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		SnapshotPath:        envOr("SNAPSHOT_PATH", "questions.snapshot.json"),
		SnapshotWorkerCount: envIntOr("SNAPSHOT_WORKER_COUNT", 1),
		SnapshotQueueSize:   envIntOr("SNAPSHOT_QUEUE_SIZE", 16),
		SessionTTLMinutes:   envIntOr("SESSION_TTL_MINUTES", 60),
	}
}

// Validate checks that the configuration is usable before the server starts.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("SNAPSHOT_PATH cannot be empty")
	}
	if c.SnapshotWorkerCount <= 0 {
		return fmt.Errorf("SNAPSHOT_WORKER_COUNT must be positive")
	}
	if c.SnapshotQueueSize <= 0 {
		return fmt.Errorf("SNAPSHOT_QUEUE_SIZE must be positive")
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
