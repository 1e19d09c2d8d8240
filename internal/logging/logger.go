// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds a logger writing JSON lines, or human-readable console output
// when pretty is set. Unknown levels fall back to info.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Setup installs the logger as the global zerolog logger and returns it.
func Setup(level string, pretty bool) zerolog.Logger {
	l := New(os.Stdout, level, pretty)
	zerolog.SetGlobalLevel(l.GetLevel())
	log.Logger = l
	return l
}
