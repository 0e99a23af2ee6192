package app

import (
	"fmt"
	"strings"
)

// Config holds everything an App instance needs to run.
type Config struct {
	// ProjectPath is the .hcl project file or directory to load.
	ProjectPath string
	// Workers bounds the scheduler's concurrency. Zero selects the default.
	Workers int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is "text" or "json".
	LogFormat string
	// CacheBackend selects the result cache: "memory", "file" or "redis".
	CacheBackend string
	// CacheDir is the file backend's root directory.
	CacheDir string
	// RedisURL is the redis backend's connection URL.
	RedisURL string
	// RunID tags the run's log lines. Auto-generated when empty.
	RunID string
}

// NewConfig validates and normalizes a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" {
		return nil, fmt.Errorf("a project path is required")
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.CacheBackend {
	case "":
		cfg.CacheBackend = "memory"
	case "memory", "file", "redis":
	default:
		return nil, fmt.Errorf("invalid cache backend %q: must be 'memory', 'file', or 'redis'", cfg.CacheBackend)
	}
	if cfg.CacheBackend == "file" && cfg.CacheDir == "" {
		return nil, fmt.Errorf("the file cache backend requires a cache directory")
	}
	if cfg.CacheBackend == "redis" && cfg.RedisURL == "" {
		return nil, fmt.Errorf("the redis cache backend requires a redis URL")
	}

	return &cfg, nil
}
