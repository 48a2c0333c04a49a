// Package logger holds the diagnostic logger used by the CLI, the file
// watcher and config loading. Script output does not go through here.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
}

// Logger is the process-wide diagnostic logger. It writes warnings and
// above to stderr until Configure is called.
var Logger = newLogger(os.Stderr, "text").Level(zerolog.WarnLevel)

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format == "json" {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.StampMilli,
	}).With().Timestamp().Logger()
}

// Configure replaces Logger. level is a zerolog level name ("debug",
// "info", "warn", "error", "disabled"); format is "text" or "json".
func Configure(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	switch format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", format)
	}
	Logger = newLogger(w, format).Level(lvl)
	return nil
}

// Open returns the writer for a logging.output setting: "stderr", "stdout"
// or a file path opened for appending. The returned close func is a no-op
// for the standard streams.
func Open(output string) (io.Writer, func() error, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, func() error { return nil }, nil
	case "stdout":
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, f.Close, nil
}

func Debug() *zerolog.Event { return Logger.Debug() }
func Info() *zerolog.Event  { return Logger.Info() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }
