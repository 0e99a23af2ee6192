package app

import (
	"io"
	"log/slog"
)

// logLevels is the single source of the accepted log-level names. NewConfig
// validates against this map, so lookups in newLogger never miss.
var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the App's logger from an already-validated Config.
// Loggers are per-App instances; the process-global default is never touched,
// so embedding callers keep their own logging intact.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[cfg.LogLevel]}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
