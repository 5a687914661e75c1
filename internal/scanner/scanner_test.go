package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/budget-csv/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("date,description,amount\n"), 0600))
	return path
}

func TestMonthFileName(t *testing.T) {
	assert.Equal(t, "December 2024 - transactions.csv", MonthFileName(2024, time.December))
}

func TestParseMonthFileName(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"January 2024 - transactions.csv", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"/data/March 2023 - export (1).csv", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"combined_transactions.csv", time.Time{}, false},
		{"Smarch 2024 - transactions.csv", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMonthFileName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLastMonths(t *testing.T) {
	now := time.Date(2024, time.March, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, []time.Time{
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, LastMonths(now, 2, 0))

	withCutoff := LastMonths(now, 2, 15)
	require.Len(t, withCutoff, 3)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), withCutoff[2])
}

func TestMonthScanner_FindMonthFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.csv")
	want := touch(t, dir, "December 2024 - transactions.csv")
	touch(t, dir, "November 2024 - transactions.csv")

	s := NewMonthScanner(dir, logging.NewMockLogger())

	got, found, err := s.FindMonthFile(2024, time.December)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)

	_, found, err = s.FindMonthFile(2024, time.October)
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = NewMonthScanner(filepath.Join(dir, "missing"), nil).FindMonthFile(2024, time.October)
	assert.Error(t, err)
}

func TestMonthScanner_HasMonthFile(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "May 2025 - transactions.csv")
	s := NewMonthScanner(dir, logging.NewMockLogger())

	found, err := s.HasMonthFile(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.HasMonthFile(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMonthScanner_MonthPaths(t *testing.T) {
	s := NewMonthScanner("/data", nil)
	paths := s.MonthPaths([]time.Time{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, []string{filepath.Join("/data", "February 2024 - transactions.csv")}, paths)
}
