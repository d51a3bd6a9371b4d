package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AlertField marks log events an operator must act on.
const AlertField = "alert"

// New builds the API server logger on stdout. pretty switches to console output.
func New(level string, pretty bool) zerolog.Logger {
	return build(os.Stdout, level, pretty).Caller().Logger()
}

// NewCLI logs to stderr so portalctl reports on stdout stay machine readable.
func NewCLI(level string, pretty bool) zerolog.Logger {
	return build(os.Stderr, level, pretty).Logger()
}

// NewWithWriter is New without the console writer or caller field.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(w, level, false).Logger()
}

func build(w io.Writer, level string, pretty bool) zerolog.Context {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("app", "eseva-portal")
}

// Component returns a child logger tagged with the adapter or job name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Alert starts an ERROR event tagged with alert=name so it can be routed
// to a pager or a reconciliation queue.
func Alert(log zerolog.Logger, name string) *zerolog.Event {
	return log.Error().Str(AlertField, name)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
