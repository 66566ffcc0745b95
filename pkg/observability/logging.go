package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log formats accepted by InitLogger.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string // debug, info, warn or error; empty means info
	Format string // json or text; empty means text
	Output io.Writer

	// Service and Version tag every record when set.
	Service string
	Version string
}

// Validate rejects level and format names InitLogger would not recognize.
func (c LogConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", LogFormatJSON, LogFormatText:
		return nil
	default:
		return fmt.Errorf("unknown log format %q (want json or text)", c.Format)
	}
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// InitLogger builds the process logger and installs it as the slog default.
// Unknown names fall back to info and text; call Validate first to reject them.
func InitLogger(cfg LogConfig) *slog.Logger {
	level, _ := ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, LogFormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	if cfg.Version != "" {
		logger = logger.With(slog.String("version", cfg.Version))
	}
	slog.SetDefault(logger)
	return logger
}
