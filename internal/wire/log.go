package wire

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// formatting the message entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by the wire packages (client, server,
// transports and capture). Nothing is logged by default; passing nil restores
// the silent default.
//
// Levels:
//   - [slog.LevelDebug]: every command handled, error objects sent through
//   - [slog.LevelInfo]: connection lifecycle
//   - [slog.LevelWarn]: recoverable anomalies such as unknown chained structs
//   - [slog.LevelError]: fatal protocol errors and disconnections
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger, safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
