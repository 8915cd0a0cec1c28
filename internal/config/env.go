package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files into the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// ApplyEnv overrides file settings with CRAWLER_* variables.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CRAWLER_DATA_DIR")); v != "" {
		cfg.App.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CRAWLER_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CRAWLER_LOG_LEVEL")); v != "" {
		cfg.App.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("CRAWLER_STORE_DRIVER")); v != "" {
		cfg.Store.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("CRAWLER_STORE_DSN")); v != "" {
		cfg.Store.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("CRAWLER_REDIS_URL")); v != "" {
		cfg.History.RedisURL = v
		cfg.History.Driver = "redis"
	}
}
