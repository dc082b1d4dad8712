// File path: internal/pipeline/config.go
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config controls pipeline construction: where audit records and
// rendered artifacts go, and how long a single provider call may take.
type Config struct {
	HistoryPath     string
	MemoryPath      string
	ProviderTimeout time.Duration
}

// DefaultConfig returns the baseline configuration used when no
// overrides are supplied.
func DefaultConfig() Config {
	return Config{
		HistoryPath:     filepath.Join("data", "history.db"),
		MemoryPath:      filepath.Join("data", "insights"),
		ProviderTimeout: 30 * time.Second,
	}
}

// LoadConfig builds a Config from defaults and environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("CLASSPULSE_HISTORY_PATH")); value != "" {
		cfg.HistoryPath = value
	}
	if value := strings.TrimSpace(os.Getenv("CLASSPULSE_MEMORY_PATH")); value != "" {
		cfg.MemoryPath = value
	}
	if value := strings.TrimSpace(os.Getenv("CLASSPULSE_PROVIDER_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse CLASSPULSE_PROVIDER_TIMEOUT: %w", err)
		}
		cfg.ProviderTimeout = dur
	}
	return applyDefaults(cfg), nil
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.HistoryPath) == "" {
		cfg.HistoryPath = defaults.HistoryPath
	}
	if strings.TrimSpace(cfg.MemoryPath) == "" {
		cfg.MemoryPath = defaults.MemoryPath
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaults.ProviderTimeout
	}
	return cfg
}
