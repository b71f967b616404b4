// Package logging builds the colorized slog loggers used by the cairn
// command.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Level is a log level accepted on the command line and in config files.
type Level slog.Level

const (
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// ParseLevel converts a textual level. Unknown values map to LevelInfo.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// String returns the lowercase level name.
func (l Level) String() string {
	return strings.ToLower(slog.Level(l).String())
}

// Options tune NewLogger.
type Options struct {
	// NoColor disables ANSI colors, for log files and pipes.
	NoColor bool
	// Source adds file:line to each record.
	Source bool
}

// NewLogger returns a tint-backed logger writing to w, or to stderr if w
// is nil.
func NewLogger(w io.Writer, level Level, opts ...Options) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      slog.Level(level),
		AddSource:  o.Source,
		NoColor:    o.NoColor,
		TimeFormat: time.TimeOnly,
	}))
}
