package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(opts Options) *Parser {
	return New(opts, logging.NewMockLogger())
}

func TestParse_ValidExport(t *testing.T) {
	input := "Date,Description,Amount\n" +
		"2024-01-01,STOP AND SHOP #123,54.20\n" +
		"\n" +
		"2024-01-02, DUNKIN DONUTS ,\"$1,004.50\"\n" +
		"01/03/2024,UNKNOWN VENDOR,(10.00)\n"

	txs, err := newTestParser(Options{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, "STOP AND SHOP #123", txs[0].Description)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("54.20")))

	assert.Equal(t, "DUNKIN DONUTS", txs[1].Description)
	assert.True(t, txs[1].Amount.Equal(decimal.RequireFromString("1004.50")))

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), txs[2].Date)
	assert.True(t, txs[2].Amount.Equal(decimal.RequireFromString("-10.00")))
}

func TestParse_ExtraColumnsAndOrder(t *testing.T) {
	input := "amount;Card;date;description\n12.5;visa;2024-02-01;Gas Station\n"

	txs, err := newTestParser(Options{Delimiter: ';'}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Gas Station", txs[0].Description)
	assert.Equal(t, "12.50", txs[0].Amount.StringFixed(2))
}

func TestParse_NegativeDebits(t *testing.T) {
	input := "date,description,amount\n2024-01-15,Coffee Shop,$-5.00\n2024-01-16,Refund,3.00\n"

	txs, err := newTestParser(Options{NegativeDebits: true}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "5.00", txs[0].Amount.StringFixed(2))
	assert.Equal(t, "-3.00", txs[1].Amount.StringFixed(2))
}

func TestParse_ConfiguredDateFormat(t *testing.T) {
	input := "date,description,amount\n15.01.2024,Migros,20\n"

	txs, err := newTestParser(Options{DateFormat: "02.01.2006"}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
}

func TestParse_MalformedRowFailsWholeFile(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRow   int
		wantField string
	}{
		{
			name:      "bad amount",
			input:     "date,description,amount\n2024-01-01,OK,1.00\n2024-01-02,BAD,12.3x\n",
			wantRow:   3,
			wantField: ColumnAmount,
		},
		{
			name:      "empty amount",
			input:     "date,description,amount\n2024-01-01,EMPTY,\n",
			wantRow:   2,
			wantField: ColumnAmount,
		},
		{
			name:      "bad date",
			input:     "date,description,amount\n\n2024-13-45,BAD,1.00\n",
			wantRow:   3,
			wantField: ColumnDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := newTestParser(Options{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, txs)
			assert.True(t, errors.Is(err, parsererror.ErrInputMalformed))

			var perr *parsererror.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantRow, perr.Row)
			assert.Equal(t, tt.wantField, perr.Field)
		})
	}
}

func TestParse_InvalidFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing amount column", "date,description\n2024-01-01,x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser(Options{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			var ferr *parsererror.InvalidFormatError
			assert.True(t, errors.As(err, &ferr))
			assert.True(t, errors.Is(err, parsererror.ErrInputMalformed))
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	txs, err := newTestParser(Options{}).Parse(strings.NewReader("date,description,amount\n"))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "January 2024 - transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffDate,Description,Amount\n2024-01-01,A,1\n"), 0600))

	logger := logging.NewMockLogger()
	txs, err := New(Options{}, logger).ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.True(t, logger.HasEntry("INFO", "Parsed transaction export"))

	_, err = New(Options{}, logger).ParseFile(filepath.Join(dir, "missing.csv"))
	assert.True(t, errors.Is(err, parsererror.ErrInputMalformed))
}
