package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogrusAdapter is the Logger used outside tests. Derived loggers share the
// underlying *logrus.Logger and differ only in their attached fields.
type LogrusAdapter struct {
	logger *logrus.Logger
	entry  *logrus.Entry
}

// NewLogrusAdapter returns a stderr logger. level is one of debug, info, warn
// or error (unknown values fall back to info); format is "json" or "text".
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterWithOutput(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to out instead of stderr.
// A nil writer keeps the logrus default.
func NewLogrusAdapterWithOutput(level, format string, out io.Writer) Logger {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}
	logger.SetLevel(parseLevel(logger, level))
	logger.SetFormatter(formatter(format))
	return wrap(logger)
}

// NewLogrusAdapterFromLogger wraps an existing logger; nil gets a fresh one.
func NewLogrusAdapterFromLogger(logger *logrus.Logger) Logger {
	if logger == nil {
		logger = logrus.New()
	}
	return wrap(logger)
}

func wrap(logger *logrus.Logger) *LogrusAdapter {
	return &LogrusAdapter{logger: logger, entry: logrus.NewEntry(logger)}
}

func parseLevel(logger *logrus.Logger, level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", level)
		return logrus.InfoLevel
	}
	return lvl
}

func formatter(format string) logrus.Formatter {
	if strings.EqualFold(format, "json") {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{FullTimestamp: true}
}

func (l *LogrusAdapter) derive(entry *logrus.Entry) Logger {
	return &LogrusAdapter{logger: l.logger, entry: entry}
}

func (l *LogrusAdapter) with(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return l.entry.WithFields(data)
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.with(fields).Debug(msg) }
func (l *LogrusAdapter) Info(msg string, fields ...Field)  { l.with(fields).Info(msg) }
func (l *LogrusAdapter) Warn(msg string, fields ...Field)  { l.with(fields).Warn(msg) }
func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.with(fields).Error(msg) }

// Fatal logs and exits with status 1.
func (l *LogrusAdapter) Fatal(msg string, fields ...Field) { l.with(fields).Fatal(msg) }

// Fatalf logs a formatted message and exits with status 1.
func (l *LogrusAdapter) Fatalf(msg string, args ...interface{}) { l.entry.Fatalf(msg, args...) }

func (l *LogrusAdapter) WithError(err error) Logger { return l.derive(l.entry.WithError(err)) }

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.derive(l.entry.WithField(key, value))
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger { return l.derive(l.with(fields)) }

// Logrus exposes the underlying logger for packages that take one directly.
func (l *LogrusAdapter) Logrus() *logrus.Logger {
	return l.logger
}
