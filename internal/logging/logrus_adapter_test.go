package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedAdapter(level logrus.Level) (Logger, *bytes.Buffer) {
	logrusLogger := logrus.New()
	var buf bytes.Buffer
	logrusLogger.SetOutput(&buf)
	logrusLogger.SetLevel(level)
	logrusLogger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return NewLogrusAdapterFromLogger(logrusLogger), &buf
}

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
		expectJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info json", level: "info", format: "json", expectLevel: logrus.InfoLevel, expectJSON: true},
		{name: "upper-case level", level: "WARN", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "loud", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.Logrus().Level)

			_, isJSON := adapter.Logrus().Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.expectJSON, isJSON)
		})
	}
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.Logrus())
}

func TestLogrusAdapter_LevelsAndFields(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.DebugLevel)

	logger.Debug("classifying", Field{Key: FieldDescription, Value: "DUNKIN DONUTS"})
	logger.Info("aggregated", Field{Key: FieldCount, Value: 3})
	logger.Warn("unclassified rows", Field{Key: FieldUnclassified, Value: 1})
	logger.Error("write failed", Field{Key: FieldOutputFile, Value: "out.csv"})

	out := buf.String()
	for _, want := range []string{"classifying", "DUNKIN DONUTS", "aggregated", "count=3", "unclassified=1", "out.csv"} {
		assert.Contains(t, out, want)
	}
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.WarnLevel)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogrusAdapter_WithErrorAndFields(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	logger.WithError(errors.New("row 4: bad amount")).
		WithField(FieldFile, "january.csv").
		WithFields(Field{Key: FieldRow, Value: 4}).
		Error("parse failed")

	out := buf.String()
	assert.Contains(t, out, "parse failed")
	assert.Contains(t, out, "row 4: bad amount")
	assert.Contains(t, out, "january.csv")
	assert.Contains(t, out, "row=4")
}

func TestLogrusAdapter_FieldsAccumulate(t *testing.T) {
	logger, buf := newBufferedAdapter(logrus.InfoLevel)

	base := logger.WithFields(Field{Key: "a", Value: 1})
	base.Info("first", Field{Key: "b", Value: "x"})
	base.Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "a=1")
	assert.Contains(t, string(lines[0]), "b=x")
	assert.Contains(t, string(lines[1]), "a=1")
	assert.NotContains(t, string(lines[1]), "b=x")
}

func TestGetLogger_UsesDefaultLevel(t *testing.T) {
	l := logrus.New()
	var buf bytes.Buffer
	l.SetOutput(&buf)
	SetDefaultLogger(l)
	SetAllLogLevels(logrus.ErrorLevel)
	t.Cleanup(func() {
		SetDefaultLogger(logrus.New())
		SetAllLogLevels(logrus.InfoLevel)
	})

	GetLogger().Info("suppressed")
	GetLogger().Error("visible")

	assert.NotContains(t, buf.String(), "suppressed")
	assert.Contains(t, buf.String(), "visible")
}

func TestMockLogger_SharedEntries(t *testing.T) {
	m := NewMockLogger()
	m.WithField(FieldCategory, "Coffee").Info("matched")
	m.WithError(errors.New("boom")).Warn("retrying")

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, []Field{{Key: FieldCategory, Value: "Coffee"}}, entries[0].Fields)
	assert.EqualError(t, entries[1].Error, "boom")
	assert.True(t, m.HasEntry("WARN", "retrying"))
}

func TestLogrusAdapter_ImplementsInterface(t *testing.T) {
	var _ Logger = (*LogrusAdapter)(nil)
	var _ Logger = (*MockLogger)(nil)
}
