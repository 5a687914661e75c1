// Package batch loads several monthly exports at once and cuts the combined
// transactions down to billing cycles.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"golang.org/x/sync/errgroup"
)

// ErrNoFiles is returned when none of the requested exports exist.
var ErrNoFiles = errors.New("no transaction files found for the specified period")

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format(models.DateLayoutISO),
		dr.End.Format(models.DateLayoutISO))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// Contains reports whether the calendar date of t lies within the range.
func (dr DateRange) Contains(t time.Time) bool {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return false
	}
	return dateutils.CompareDates(t, dr.Start) >= 0 && dateutils.CompareDates(t, dr.End) <= 0
}

// BillingCycles returns the n billing cycles ending on or before reference's
// month, most recent first. A cycle ends on cutoffDay, clamped to the length
// of its month, and starts the day after the previous month's cutoff.
func BillingCycles(reference time.Time, n, cutoffDay int) ([]DateRange, error) {
	if cutoffDay < 1 || cutoffDay > 31 {
		return nil, parsererror.NewConfigError("billing_cutoff_day", strconv.Itoa(cutoffDay), "must be between 1 and 31")
	}
	if n < 1 {
		return nil, parsererror.NewConfigError("months", strconv.Itoa(n), "must be at least 1")
	}

	cycles := make([]DateRange, 0, n)
	for i := 0; i < n; i++ {
		endMonth := dateutils.AddMonths(reference, -i)
		startMonth := dateutils.AddMonths(endMonth, -1)
		cycles = append(cycles, DateRange{
			Start: cutoffIn(startMonth, cutoffDay).AddDate(0, 0, 1),
			End:   cutoffIn(endMonth, cutoffDay),
		})
	}
	return cycles, nil
}

func cutoffIn(month time.Time, cutoffDay int) time.Time {
	day := cutoffDay
	if last := dateutils.DaysInMonth(month.Year(), month.Month()); day > last {
		day = last
	}
	return time.Date(month.Year(), month.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Span merges ranges into the overall range covering all of them.
func Span(ranges []DateRange) DateRange {
	var span DateRange
	for _, r := range ranges {
		span = span.Merge(r)
	}
	return span
}

// Segment keeps the transactions dated within the overall span of cycles.
func Segment(txs []models.Transaction, cycles []DateRange) []models.Transaction {
	span := Span(cycles)
	kept := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if span.Contains(tx.Date) {
			kept = append(kept, tx)
		}
	}
	return kept
}

// TransactionParser reads one export file.
type TransactionParser interface {
	ParseFile(path string) ([]models.Transaction, error)
}

// Loader reads monthly exports concurrently.
type Loader struct {
	parser      TransactionParser
	logger      logging.Logger
	concurrency int
}

// NewLoader creates a Loader. concurrency <= 0 means one goroutine per file.
func NewLoader(parser TransactionParser, logger logging.Logger, concurrency int) *Loader {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Loader{parser: parser, logger: logger, concurrency: concurrency}
}

// LoadMonths parses every existing file of paths and concatenates their
// transactions in path order. Missing files are skipped; a malformed file
// fails the whole load. ErrNoFiles is returned when nothing was found.
func (l *Loader) LoadMonths(ctx context.Context, paths []string) ([]models.Transaction, error) {
	results := make([][]models.Transaction, len(paths))
	found := make([]bool, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}

	for i, path := range paths {
		if !fileutils.FileExists(path) {
			l.logger.Info("Missing export, skipping", logging.Field{Key: logging.FieldFile, Value: path})
			continue
		}
		found[i] = true

		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			txs, err := l.parser.ParseFile(path)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", filepath.Base(path), err)
			}
			results[i] = txs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.WithError(err).Error("Failed to load monthly exports")
		return nil, err
	}

	var all []models.Transaction
	count := 0
	for i, txs := range results {
		if found[i] {
			count++
		}
		all = append(all, txs...)
	}
	if count == 0 {
		return nil, ErrNoFiles
	}

	l.logger.Info("Loaded monthly exports",
		logging.Field{Key: logging.FieldMonths, Value: count},
		logging.Field{Key: logging.FieldCount, Value: len(all)})
	return all, nil
}
