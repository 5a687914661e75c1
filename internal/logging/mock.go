package logging

import (
	"fmt"
	"sync"
)

// MockLogger captures log entries for verification in tests.
// Loggers derived through WithError/WithField share the parent's entry list.
type MockLogger struct {
	store         *entryStore
	pendingError  error
	pendingFields []Field
}

type entryStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single log entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{store: &entryStore{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.store == nil {
		m.store = &entryStore{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

// Debug logs a debug-level message with optional fields.
func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }

// Info logs an info-level message with optional fields.
func (m *MockLogger) Info(msg string, fields ...Field) { m.record("INFO", msg, fields) }

// Warn logs a warning-level message with optional fields.
func (m *MockLogger) Warn(msg string, fields ...Field) { m.record("WARN", msg, fields) }

// Error logs an error-level message with optional fields.
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatal records a fatal entry. It does not exit.
func (m *MockLogger) Fatal(msg string, fields ...Field) { m.record("FATAL", msg, fields) }

// Fatalf records a formatted fatal entry. It does not exit.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

// WithError returns a logger sharing this logger's entries with err attached.
func (m *MockLogger) WithError(err error) Logger {
	if m.store == nil {
		m.store = &entryStore{}
	}
	return &MockLogger{store: m.store, pendingError: err, pendingFields: m.pendingFields}
}

// WithField returns a logger sharing this logger's entries with one more field.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a logger sharing this logger's entries with more fields.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	if m.store == nil {
		m.store = &entryStore{}
	}
	merged := make([]Field, 0, len(m.pendingFields)+len(fields))
	merged = append(merged, m.pendingFields...)
	merged = append(merged, fields...)
	return &MockLogger{store: m.store, pendingError: m.pendingError, pendingFields: merged}
}

// Entries returns a copy of the captured entries.
func (m *MockLogger) Entries() []LogEntry {
	if m.store == nil {
		return nil
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	out := make([]LogEntry, len(m.store.entries))
	copy(out, m.store.entries)
	return out
}

// HasEntry reports whether a message was logged at level.
func (m *MockLogger) HasEntry(level, msg string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
