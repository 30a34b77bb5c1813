// Package log provides a structured logging interface for limego explanation requests.
//
// The Logger interface mirrors the method set of log/slog so that the explainer can
// run on top of slog (the default, see SetupLogger), zerolog (NewZerologLogger) or the
// in-memory TestLogger without knowing which one it talks to.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "lime",
//	    log.ModelNameKey, "gpd-quantile",
//	)
//	logger.Info("Explanation finished",
//	    log.OperationKey, log.OperationExplain,
//	    log.SamplesKey, 5000,
//	    log.R2ScoreKey, 0.93,
//	)
package log

import (
	"context"
	"log/slog"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. A value implementing error is rendered
// with its message; backends that understand cockroachdb stacks (slog with
// ErrFmtHandler) additionally attach the stack trace.
type Logger interface {
	// Debug logs detailed diagnostic information such as per-stage timings.
	Debug(msg string, fields ...any)

	// Info logs general operational information.
	Info(msg string, fields ...any)

	// Warn logs situations that did not stop the request, e.g. a poor local fit.
	Warn(msg string, fields ...any)

	// Error logs a failed operation.
	//
	//   logger.Error("Explanation failed",
	//       log.ErrAttrKey, err,
	//       log.OperationKey, log.OperationExplain,
	//   )
	Error(msg string, fields ...any)

	// With returns a Logger that adds the given fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted. Use it to skip
	// building expensive debug payloads.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slog() slog.Level {
	return slog.Level(l)
}

// LoggerProvider creates loggers, allowing tests to inject a capturing backend.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
