package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/pkg/config"
)

// ParseConfig is an helper that loads the configuration and validates it.
func ParseConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("failed to validate config: %w", err)
	}

	return cfg, nil
}

// SetupLogger creates a zerolog logger writing to stderr.
//
// Configuration options:
//   - Output format (text or JSON)
//   - Log level (debug, info, warn, error); unknown levels fall back to info
//   - Stack traces for error logs
func SetupLogger(cfg config.LogConfig) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	w := out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logCtx := zerolog.New(w).Level(level).With().Timestamp()
	if cfg.Trace {
		logCtx = logCtx.Caller().Stack()
	}
	return logCtx.Logger()
}
