// Package logging provides a logging abstraction layer that decouples the application
// from specific logging frameworks. This allows for easier testing and flexibility
// in choosing logging implementations.
package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for structured logging throughout the application.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached
	WithField(key string, value interface{}) Logger

	// WithFields returns a new logger with multiple fields attached
	WithFields(fields ...Field) Logger

	// Fatal logs a fatal-level message and exits the program
	Fatal(msg string, fields ...Field)

	// Fatalf logs a fatal-level message with formatting and exits the program
	Fatalf(msg string, args ...interface{})
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = logrus.New()
)

// GetLogger returns a Logger backed by the process-wide logrus instance.
// Packages that are not handed a logger through their constructor fall back to it.
func GetLogger() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return NewLogrusAdapterFromLogger(defaultLogger)
}

// SetAllLogLevels applies level to the global logrus logger and the default logger.
func SetAllLogLevels(level logrus.Level) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	logrus.SetLevel(level)
	defaultLogger.SetLevel(level)
}

// SetDefaultLogger replaces the logrus instance returned through GetLogger.
func SetDefaultLogger(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = logger
}
