// Package config loads application configuration from environment variables.
// An explicit *Config is passed into constructors; there is no package-level
// mutable state, so switching environments means building a new store from
// the same Config rather than rebinding globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environments supported by the dashboard. Each one has its own SQLite file
// and its own OAuth connection registry under DataDir.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
)

// Config holds application configuration.
type Config struct {
	// Server
	Environment string
	Port        string

	// Storage
	DataDir string

	// Pluggy aggregator credentials
	PluggyClientID     string
	PluggyClientSecret string
	PluggyBaseURL      string

	// Backups
	BackupDir           string
	BackupIntervalHours int
	BackupMaxAgeHours   int
	BackupRetentionDays int
}

// Load loads configuration from environment variables, reading a .env file
// first when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist; plain environment variables work too.
		fmt.Println("Warning: .env file not found")
	}

	env := getEnv("ENV", EnvDev)
	if !ValidEnvironment(env) {
		return nil, fmt.Errorf("unknown environment %q (want %s or %s)", env, EnvProd, EnvDev)
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "5000"),
		DataDir:     dataDir,

		PluggyClientID:     getEnv("PLUGGY_CLIENT_ID", ""),
		PluggyClientSecret: getEnv("PLUGGY_CLIENT_SECRET", ""),
		PluggyBaseURL:      getEnv("PLUGGY_BASE_URL", "https://api.pluggy.ai"),

		BackupDir:           getEnv("BACKUP_DIR", "backups"),
		BackupIntervalHours: getEnvInt("BACKUP_INTERVAL_HOURS", 6),
		BackupMaxAgeHours:   getEnvInt("BACKUP_MAX_AGE_HOURS", 24),
		BackupRetentionDays: getEnvInt("BACKUP_RETENTION_DAYS", 30),
	}, nil
}

// ValidEnvironment reports whether env names a known environment.
func ValidEnvironment(env string) bool {
	return env == EnvProd || env == EnvDev
}

// DatabasePath returns the SQLite file path for the given environment.
func (c *Config) DatabasePath(env string) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("finance_%s.db", env))
}

// ConnectionsPath returns the OAuth connection registry path for the given
// environment.
func (c *Config) ConnectionsPath(env string) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("oauth_connections_%s.json", env))
}

// BackupPath returns the backup directory for the given environment.
func (c *Config) BackupPath(env string) string {
	return filepath.Join(c.BackupDir, env)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
