// Package logging configures the process-wide structured logger.
//
// Trimmed from ManuGH-xg2g's internal/log package: a single zerolog
// writer with a service name and an instance id, no HTTP middleware, no
// OpenTelemetry correlation and no audit buffer — this is a headless
// daemon with no HTTP surface to instrument.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config captures the options for configuring the global logger.
type Config struct {
	Level  string    // "debug", "info", "warn", "error"; default "info"
	Output io.Writer // defaults to os.Stdout
}

// Configure initializes the global zerolog logger and returns a logger
// tagged with a fresh instance id that should be threaded through the
// rest of the process via context or direct passing.
func Configure(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stdout
	}

	logger := zerolog.New(writer).With().
		Timestamp().
		Str("service", "gipan").
		Str("instance_id", uuid.New().String()).
		Logger()

	return logger
}
