// Package logging configures zerolog for the teamstats service.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// ServiceName is attached to every log line as the "service" field.
const ServiceName = "teamstats"

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.DurationFieldUnit = time.Millisecond

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Str("service", ServiceName).
		Logger()

	log.Logger = logger

	return logger
}

// ParseLevel validates a configured level name.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// parseLevel converts LogLevel to zerolog.Level; unknown levels mean info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a child of the global logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithTask returns logger annotated with a task's correlation token and team.
func WithTask(logger zerolog.Logger, correlationID string, team int) zerolog.Logger {
	return logger.With().
		Str("correlation_id", correlationID).
		Int("team", team).
		Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache hits and misses
//   - Per-item queue events (enqueue, dequeue)
//   - Per-team extraction counts in bulk runs
//
// Info: Normal operation events
//   - Team request accepted and processed
//   - Worker service start/stop
//   - Bulk run start and completion
//   - Server startup/shutdown
//
// Warn: Failures recovered locally
//   - Fetch failures (empty result cached)
//   - Unparseable payloads
//   - Invalid configuration replaced by a default
//
// Error: Conditions requiring attention
//   - Handler errors and panics caught by the queue loop
//   - Result cache write failures
//   - Aborted bulk runs
//
// Context Fields:
//   - component: emitting package (queue, worker, pipeline, bulk, api, ...)
//   - correlation_id: token returned to the caller on enqueue
//   - team: team number
//   - worker_id: consumer index within the worker service
//   - outcome: ok, no_data, fetch_failed or parse_failed
//   - records: number of stat records produced
//   - duration: processing time in milliseconds
//   - error_class: fetch failure class (client, server, network, unexpected)
//   - status_code: upstream HTTP status code
//   - queue_len: tasks waiting after the event
