// Package csvparser reads transaction exports (date, description, amount) into
// models.Transaction values. Any unparseable row fails the whole file.
package csvparser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/budget-csv/internal/currencyutils"
	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/gocarina/gocsv"
)

const parserName = "transactions"

// Required column headers, matched case-insensitively.
const (
	ColumnDate        = "date"
	ColumnDescription = "description"
	ColumnAmount      = "amount"
)

// transactionRow maps one CSV record. Fields stay strings so that each value
// is converted with row context.
type transactionRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// Options controls how exports are read.
type Options struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// DateFormat is a Go layout; empty means auto-detect per value.
	DateFormat string
	// NegativeDebits is set for exports that write spending as negative amounts.
	NegativeDebits bool
}

// Parser reads transaction exports.
type Parser struct {
	opts   Options
	logger logging.Logger
}

// New creates a Parser. A nil logger falls back to the package default.
func New(opts Options, logger logging.Logger) *Parser {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Parser{opts: opts, logger: logger}
}

// ParseFile parses the export at path.
func (p *Parser) ParseFile(path string) ([]models.Transaction, error) {
	p.logger.Info("Parsing transaction export", logging.Field{Key: logging.FieldFile, Value: path})

	f, err := os.Open(path)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       path,
			ExpectedFormat: "CSV with date, description and amount columns",
			Msg:            "cannot open file",
			Err:            err,
		}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.WithError(cerr).Warn("Failed to close file")
		}
	}()

	return p.parse(f, path)
}

// Parse parses an export from r.
func (p *Parser) Parse(r io.Reader) ([]models.Transaction, error) {
	return p.parse(r, "<reader>")
}

func (p *Parser) parse(r io.Reader, source string) ([]models.Transaction, error) {
	records, lines, err := p.readRecords(r, source)
	if err != nil {
		return nil, err
	}

	var rows []transactionRow
	if len(records) > 1 {
		if err := gocsv.UnmarshalCSV(&recordReader{records: records}, &rows); err != nil {
			return nil, &parsererror.InvalidFormatError{
				FilePath:       source,
				ExpectedFormat: "CSV with date, description and amount columns",
				Msg:            "cannot decode records",
				Err:            err,
			}
		}
	}

	txs := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := p.convertRow(row, lines[i+1])
		if err != nil {
			p.logger.WithError(err).Error("Rejecting transaction export",
				logging.Field{Key: logging.FieldFile, Value: source},
				logging.Field{Key: logging.FieldRow, Value: lines[i+1]})
			return nil, err
		}
		txs = append(txs, tx)
	}

	p.logger.Info("Parsed transaction export",
		logging.Field{Key: logging.FieldFile, Value: source},
		logging.Field{Key: logging.FieldCount, Value: len(txs)})
	return txs, nil
}

// readRecords returns the non-blank records with a lower-cased header and the
// source line of each record.
func (p *Parser) readRecords(r io.Reader, source string) ([][]string, []int, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, nil, &parsererror.ParseError{Parser: parserName, Row: line, Field: "record", Err: err}
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	if len(records) == 0 {
		return nil, nil, &parsererror.InvalidFormatError{
			FilePath:       source,
			ExpectedFormat: "CSV with date, description and amount columns",
			Msg:            "file is empty",
		}
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	for _, required := range []string{ColumnDate, ColumnDescription, ColumnAmount} {
		if !contains(header, required) {
			return nil, nil, &parsererror.InvalidFormatError{
				FilePath:       source,
				ExpectedFormat: "CSV with date, description and amount columns",
				Msg:            fmt.Sprintf("missing column %q", required),
			}
		}
	}

	return records, lines, nil
}

func (p *Parser) convertRow(row transactionRow, line int) (models.Transaction, error) {
	date, _, err := dateutils.ParseDate(row.Date, p.opts.DateFormat)
	if err != nil {
		return models.Transaction{}, &parsererror.ParseError{
			Parser: parserName, Row: line, Field: ColumnDate, Value: row.Date, Err: err,
		}
	}

	amount, err := currencyutils.ParseAmount(row.Amount)
	if err != nil {
		return models.Transaction{}, &parsererror.ParseError{
			Parser: parserName, Row: line, Field: ColumnAmount, Value: row.Amount, Err: err,
		}
	}
	if p.opts.NegativeDebits {
		amount = amount.Neg()
	}

	return models.NewTransaction(date, strings.TrimSpace(row.Description), amount), nil
}

// recordReader hands already-read records to gocsv.
type recordReader struct {
	records [][]string
	pos     int
}

func (r *recordReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
