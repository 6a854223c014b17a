// Package config reads engine configuration from the environment with
// sensible defaults. A .env file in the working directory is loaded first
// when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Env string // "development" or "production"

	DatabaseType string // sqlite (default), mysql, postgres
	DatabasePath string // sqlite file path
	DatabaseURL  string // mysql/postgres connection string

	MigrationsPath string

	SessionSize          int           // default study-queue size
	VelocityWindowDays   int           // default velocity window
	GraphRefreshInterval time.Duration // background graph rebuild cadence
}

// Load reads configuration from environment variables, after a best-effort
// .env load.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                  getEnv("MNEMO_ENV", "development"),
		DatabaseType:         getEnv("DB_TYPE", "sqlite"),
		DatabasePath:         getEnv("DB_PATH", "./mnemo.db"),
		DatabaseURL:          getEnv("DB_URL", ""),
		MigrationsPath:       getEnv("MIGRATIONS_PATH", "./migrations"),
		SessionSize:          getEnvInt("SESSION_SIZE", 20),
		VelocityWindowDays:   getEnvInt("VELOCITY_WINDOW_DAYS", 7),
		GraphRefreshInterval: getEnvDuration("GRAPH_REFRESH_INTERVAL", 5*time.Minute),
	}
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
