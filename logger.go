package cairn

import (
	"log/slog"
	"sync/atomic"

	"github.com/CaymanFreeman/Cairn/backend"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger for cairn and the packages it drives.
// By default, cairn produces no log output. Pass nil to restore silence.
//
// Log levels used by cairn:
//   - [slog.LevelDebug]: per-frame outcomes (timeouts, skipped ticks)
//   - [slog.LevelInfo]: state transitions, adapter selection, reconfigures
//   - [slog.LevelWarn]: structural recovery (surface lost, drain timeout)
//   - [slog.LevelError]: fatal errors
//
// Orchestrators capture the logger when they are created. Registered
// backends that accept a logger receive it immediately.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)

	for _, name := range backend.Available() {
		if b := backend.Get(name); b != nil {
			propagateLogger(b, l)
		}
	}
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(b backend.Backend, l *slog.Logger) {
	if ls, ok := b.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
