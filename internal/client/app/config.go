package app

import (
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	ServiceURL    string        // Optional: base URL of the community service (default: http://localhost:3000)
	SessionFile   string        // Optional: path to the SQLite session database (default: under the user config dir)
	MasterKeyPath string        // Optional: path to the master key file sealing stored sessions
	HTTPTimeout   time.Duration // Optional: per-request timeout (default: 10s)
	Env           string        // Environment (dev, staging, prod) (default: dev)
	LogLevel      string        // Log level (debug, info, warn, error) (default: info)
	LogFormat     string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		ServiceURL:    getEnvOrDefault("GAMEHIVE_SERVICE_URL", "http://localhost:3000"),
		SessionFile:   getEnvOrDefault("GAMEHIVE_SESSION_FILE", defaultSessionFile()),
		MasterKeyPath: os.Getenv("GAMEHIVE_MASTER_KEY_PATH"), // Optional
		HTTPTimeout:   getEnvDurationOrDefault("GAMEHIVE_HTTP_TIMEOUT", 10*time.Second),
		Env:           getEnvOrDefault("ENV", "dev"),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:     getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// defaultSessionFile places the session database under the user config dir,
// falling back to the working directory when that is unavailable.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "gamehive.db"
	}
	return filepath.Join(dir, "gamehive", "session.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
