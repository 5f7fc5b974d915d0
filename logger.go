package sdfplay

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NopLogger returns a logger that discards all output.
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

var (
	sinksMu sync.RWMutex
	sinks   []func(*slog.Logger)
)

func init() {
	loggerPtr.Store(NopLogger())
}

// SetLogger configures the logger for sdfplay and every package that
// registered itself with [RegisterLogSink]. By default nothing is logged.
// Pass nil to restore the silent default.
//
// Log levels used by sdfplay:
//   - [slog.LevelDebug]: diagnostics (uniform sizes, poll misses, barriers)
//   - [slog.LevelInfo]: lifecycle (adapter selected, artifact published)
//   - [slog.LevelWarn]: non-fatal issues (stat failures, dropped artifacts)
//   - [slog.LevelError]: scene build failures
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.RLock()
	defer sinksMu.RUnlock()
	for _, sink := range sinks {
		sink(l)
	}
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// RegisterLogSink registers a package-level logger setter. The sink is
// called immediately with the current logger and again on every
// [SetLogger] call. Packages that cannot import sdfplay's callers use this
// to keep their own atomic logger in sync.
func RegisterLogSink(sink func(*slog.Logger)) {
	if sink == nil {
		return
	}
	sinksMu.Lock()
	sinks = append(sinks, sink)
	sinksMu.Unlock()
	sink(Logger())
}
