package check

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	messages []notify.Message
}

func (r *recorder) Post(_ context.Context, msg notify.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func setup(t *testing.T) (*container.Container, *recorder, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "text"},
		CSV:     config.CSVConfig{Delimiter: ","},
		Budget:  config.BudgetConfig{WindowDays: 30, ReviewMonths: 1},
		Data:    config.DataConfig{Directory: dir},
		Output:  config.OutputConfig{Directory: filepath.Join(dir, "out"), Format: "csv"},
		Discord: config.DiscordConfig{Attempts: 1},
	}
	rec := &recorder{}
	c, err := container.NewContainerWithLogger(context.Background(), cfg, logging.NewMockLogger(),
		container.WithNotifier(rec))
	require.NoError(t, err)
	return c, rec, dir
}

func TestMessage(t *testing.T) {
	now := time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "The CSV file for month: December and year: 2024 was found.", Message(now, true))
	assert.Equal(t, "The CSV file for month: December and year: 2024 was not found.", Message(now, false))
}

func TestRun(t *testing.T) {
	now := time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC)

	t.Run("missing", func(t *testing.T) {
		c, rec, _ := setup(t)
		var out bytes.Buffer
		found, err := Run(context.Background(), c, "", now, true, &out)
		require.NoError(t, err)
		assert.False(t, found)
		require.Len(t, rec.messages, 1)
		assert.Equal(t, Message(now, false), rec.messages[0].Content)
		assert.Equal(t, Message(now, false)+"\n", out.String())
	})

	t.Run("present", func(t *testing.T) {
		c, rec, dir := setup(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "December 2024 - transactions.csv"), []byte("date,description,amount\n"), 0600))
		var out bytes.Buffer
		found, err := Run(context.Background(), c, "", now, false, &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, rec.messages)
	})

	t.Run("other folder", func(t *testing.T) {
		c, _, _ := setup(t)
		other := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(other, "December 2024 - transactions.csv"), []byte(""), 0600))
		var out bytes.Buffer
		found, err := Run(context.Background(), c, other, now, false, &out)
		require.NoError(t, err)
		assert.True(t, found)
	})
}
