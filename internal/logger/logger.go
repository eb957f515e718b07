// Package logger builds the zerolog loggers used by the command and the server.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLevel is the environment variable that selects the log level.
const EnvLevel = "HYDRANGEA_LOG_LEVEL"

// New returns a timestamped JSON logger writing to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger writing to w, normally stderr.
// Stdout is left alone because the MCP server speaks its protocol there.
func NewConsole(w io.Writer, level zerolog.Level) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05"}, level)
}

// LevelFromEnv reads EnvLevel, falling back to def when unset or unparsable.
func LevelFromEnv(def zerolog.Level) zerolog.Level {
	raw := strings.TrimSpace(os.Getenv(EnvLevel))
	if raw == "" {
		return def
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return def
	}
	return level
}
