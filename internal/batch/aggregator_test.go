package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRange_String(t *testing.T) {
	dr := DateRange{Start: date(2024, 1, 16), End: date(2024, 2, 15)}
	assert.Equal(t, "2024-01-16_2024-02-15", dr.String())
	assert.Equal(t, "", DateRange{}.String())
}

func TestDateRange_Merge(t *testing.T) {
	a := DateRange{Start: date(2024, 2, 1), End: date(2024, 2, 29)}
	b := DateRange{Start: date(2024, 1, 1), End: date(2024, 1, 31)}

	assert.Equal(t, DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 29)}, a.Merge(b))
	assert.Equal(t, a, DateRange{}.Merge(a))
	assert.Equal(t, a, a.Merge(DateRange{}))
}

func TestDateRange_Contains(t *testing.T) {
	dr := DateRange{Start: date(2024, 1, 16), End: date(2024, 2, 15)}

	assert.True(t, dr.Contains(date(2024, 1, 16)))
	assert.True(t, dr.Contains(date(2024, 2, 15).Add(20*time.Hour)))
	assert.False(t, dr.Contains(date(2024, 1, 15)))
	assert.False(t, dr.Contains(date(2024, 2, 16)))
	assert.False(t, DateRange{}.Contains(date(2024, 1, 1)))
}

func TestBillingCycles(t *testing.T) {
	cycles, err := BillingCycles(date(2024, 3, 10), 2, 15)
	require.NoError(t, err)
	assert.Equal(t, []DateRange{
		{Start: date(2024, 2, 16), End: date(2024, 3, 15)},
		{Start: date(2024, 1, 16), End: date(2024, 2, 15)},
	}, cycles)
}

func TestBillingCycles_ClampsToMonthLength(t *testing.T) {
	cycles, err := BillingCycles(date(2024, 3, 1), 2, 31)
	require.NoError(t, err)
	assert.Equal(t, []DateRange{
		{Start: date(2024, 3, 1), End: date(2024, 3, 31)},
		{Start: date(2024, 2, 1), End: date(2024, 2, 29)},
	}, cycles)

	cycles, err = BillingCycles(date(2024, 1, 5), 1, 30)
	require.NoError(t, err)
	assert.Equal(t, DateRange{Start: date(2023, 12, 31), End: date(2024, 1, 30)}, cycles[0])
}

func TestBillingCycles_Invalid(t *testing.T) {
	for _, tc := range []struct{ n, cutoff int }{{1, 0}, {1, 32}, {0, 10}} {
		_, err := BillingCycles(date(2024, 1, 1), tc.n, tc.cutoff)
		assert.True(t, errors.Is(err, parsererror.ErrConfigInvalid), "n=%d cutoff=%d", tc.n, tc.cutoff)
	}
}

func TestSegment(t *testing.T) {
	cycles := []DateRange{
		{Start: date(2024, 2, 16), End: date(2024, 3, 15)},
		{Start: date(2024, 1, 16), End: date(2024, 2, 15)},
	}
	txs := []models.Transaction{
		{Date: date(2024, 1, 15), Description: "before"},
		{Date: date(2024, 1, 16), Description: "first day"},
		{Date: date(2024, 3, 15), Description: "last day"},
		{Date: date(2024, 3, 16), Description: "after"},
	}

	got := Segment(txs, cycles)
	require.Len(t, got, 2)
	assert.Equal(t, "first day", got[0].Description)
	assert.Equal(t, "last day", got[1].Description)
	assert.Empty(t, Segment(txs, nil))
}

type mockParser struct {
	mock.Mock
	calls atomic.Int32
}

func (m *mockParser) ParseFile(path string) ([]models.Transaction, error) {
	m.calls.Add(1)
	args := m.Called(path)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func createFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("date,description,amount\n"), 0600))
	}
	return paths
}

func TestLoader_LoadMonths(t *testing.T) {
	dir := t.TempDir()
	paths := createFiles(t, dir, "February 2024 - transactions.csv", "December 2023 - transactions.csv")
	missing := filepath.Join(dir, "January 2024 - transactions.csv")

	feb := []models.Transaction{{Date: date(2024, 2, 3), Description: "feb", Amount: decimal.NewFromInt(2)}}
	dec := []models.Transaction{{Date: date(2023, 12, 3), Description: "dec", Amount: decimal.NewFromInt(1)}}

	parser := &mockParser{}
	parser.On("ParseFile", paths[0]).Return(feb, nil)
	parser.On("ParseFile", paths[1]).Return(dec, nil)

	logger := logging.NewMockLogger()
	loader := NewLoader(parser, logger, 2)

	got, err := loader.LoadMonths(context.Background(), []string{paths[0], missing, paths[1]})
	require.NoError(t, err)
	assert.Equal(t, []models.Transaction{feb[0], dec[0]}, got)
	assert.True(t, logger.HasEntry("INFO", "Missing export, skipping"))
	parser.AssertExpectations(t)
	assert.Equal(t, int32(2), parser.calls.Load())
}

func TestLoader_LoadMonths_NoFiles(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(&mockParser{}, logging.NewMockLogger(), 0)

	_, err := loader.LoadMonths(context.Background(), []string{filepath.Join(dir, "a.csv")})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestLoader_LoadMonths_MalformedFails(t *testing.T) {
	dir := t.TempDir()
	paths := createFiles(t, dir, "a.csv", "b.csv")

	parseErr := &parsererror.ParseError{Parser: "transactions", Row: 4, Field: "amount", Value: "x", Err: errors.New("bad")}
	parser := &mockParser{}
	parser.On("ParseFile", paths[0]).Return([]models.Transaction{}, nil).Maybe()
	parser.On("ParseFile", paths[1]).Return(nil, parseErr)

	_, err := NewLoader(parser, logging.NewMockLogger(), 0).LoadMonths(context.Background(), paths)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parsererror.ErrInputMalformed))
	assert.Contains(t, err.Error(), "b.csv")
}

func TestLoader_LoadMonths_Cancelled(t *testing.T) {
	dir := t.TempDir()
	paths := createFiles(t, dir, "a.csv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	parser := &mockParser{}
	_, err := NewLoader(parser, logging.NewMockLogger(), 1).LoadMonths(ctx, paths)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), parser.calls.Load())
}
