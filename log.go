package admitctl

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger used by admitctl, stored as an atomic
// pointer to allow safe concurrent reads and writes. Named "logger" instead
// of "log" to avoid shadowing the stdlib "log" package.
//
// A nil value means no custom logger has been set; Logger() falls back to a
// cached default derived from slog.Default().
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the default-derived logger (slog.Default() with the
// admitctl component attribute) so it is not re-created on every Logger()
// call. Calling SetLogger(nil) clears the cache, letting the next Logger()
// call pick up a changed slog.Default().
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. If no custom logger has
// been set via SetLogger, it returns a cached logger derived from
// slog.Default() with the admitctl component attribute. Safe to call from
// multiple goroutines.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

// newDefaultLogger creates the default logger with the admitctl component
// attribute.
func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "admitctl")
}

// SetLogger replaces the package-level logger used by admitctl. This allows
// applications to integrate admitctl's diagnostic logging (queue pressure,
// evictions, fatal invariant violations) with their own logging
// infrastructure. The provided logger should already carry any desired
// attributes; admitctl adds none beyond what SetLogger was given.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next Logger() call and cached.
// Call SetLogger(nil) after slog.SetDefault() to pick up the change.
//
// SetLogger is safe to call concurrently with other admitctl operations.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
