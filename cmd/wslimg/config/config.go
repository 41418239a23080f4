package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	CatalogPath  string
	ManifestPath string
	ExecTimeout  time.Duration
	LogLevel     string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := &Config{
		CatalogPath:  getEnv("WSLIMG_CATALOG", defaultCatalogPath()),
		ManifestPath: getEnv("WSLIMG_MANIFEST_PATH", "/etc/wsl-image-manifest.json"),
		ExecTimeout:  getDuration("WSLIMG_EXEC_TIMEOUT", 30*time.Second),
		LogLevel:     getEnv("WSLIMG_LOG_LEVEL", "info"),
	}

	return cfg
}

func defaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "catalog.json"
	}
	return filepath.Join(home, ".wslimg", "catalog.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
