// Package config provides configuration management for the ledger service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	DataDir         string   // Base directory for the database and backups
	DatabasePath    string   // Resolved path to ledger.db
	BackupDir       string   // Directory for nightly backups
	BackupSchedule  string   // Cron expression for the backup job
	BackupKeep      int      // Number of backup files to retain
	MaintSchedule   string   // Cron expression for database maintenance
	AllowedOrigins  []string // CORS origins for the API
	LogLevel        string
	Port            int
	DevMode         bool
	BackupsDisabled bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; explicit environment variables win.
func Load() (*Config, error) {
	// .env is optional - ignore the error when the file does not exist
	_ = godotenv.Load()

	dataDir := getEnv("LEDGER_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory %q: %w", dataDir, err)
	}

	port, err := getEnvInt("LEDGER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	backupKeep, err := getEnvInt("LEDGER_BACKUP_KEEP", 14)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         absDataDir,
		DatabasePath:    filepath.Join(absDataDir, "ledger.db"),
		BackupDir:       getEnv("LEDGER_BACKUP_DIR", filepath.Join(absDataDir, "backups")),
		BackupSchedule:  getEnv("LEDGER_BACKUP_SCHEDULE", "0 0 3 * * *"),
		BackupKeep:      backupKeep,
		MaintSchedule:   getEnv("LEDGER_MAINT_SCHEDULE", "0 30 3 * * 0"),
		AllowedOrigins:  splitList(getEnv("LEDGER_ALLOWED_ORIGINS", "*")),
		LogLevel:        getEnv("LEDGER_LOG_LEVEL", "info"),
		Port:            port,
		DevMode:         getEnvBool("LEDGER_DEV_MODE", false),
		BackupsDisabled: getEnvBool("LEDGER_BACKUPS_DISABLED", false),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
