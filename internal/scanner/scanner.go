// Package scanner locates the monthly transaction exports, named
// "<Month YYYY> - transactions.csv", in a data folder.
package scanner

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
)

// MonthFileSuffix follows the month label in export file names.
const MonthFileSuffix = " - transactions.csv"

// MonthFileName returns the export file name for a month, e.g.
// "January 2024 - transactions.csv".
func MonthFileName(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(models.MonthFileLayout) + MonthFileSuffix
}

// ParseMonthFileName extracts the month from an export file name. Anything
// after the first " -" is ignored.
func ParseMonthFileName(name string) (time.Time, bool) {
	label, _, found := strings.Cut(filepath.Base(name), " -")
	if !found {
		return time.Time{}, false
	}
	month, err := time.Parse(models.MonthFileLayout, strings.TrimSpace(label))
	if err != nil {
		return time.Time{}, false
	}
	return month, true
}

// LastMonths returns the first day of each of the n calendar months preceding
// now, most recent first. With a billing cutoff day one extra month is
// returned so the oldest cycle is fully covered.
func LastMonths(now time.Time, n, cutoffDay int) []time.Time {
	if cutoffDay > 0 {
		n++
	}
	months := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		months = append(months, dateutils.AddMonths(now, -i))
	}
	return months
}

// MonthScanner looks up exports in one directory.
type MonthScanner struct {
	dir    string
	logger logging.Logger
}

// NewMonthScanner creates a scanner over dir.
func NewMonthScanner(dir string, logger logging.Logger) *MonthScanner {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &MonthScanner{
		dir:    dir,
		logger: logger.WithField("component", "MonthScanner"),
	}
}

// Dir returns the scanned directory.
func (s *MonthScanner) Dir() string {
	return s.dir
}

// FindMonthFile returns the first export (in name order) whose label is the
// requested month. found is false when there is none.
func (s *MonthScanner) FindMonthFile(year int, month time.Month) (string, bool, error) {
	files, err := fileutils.ListFilesWithExtension(s.dir, ".csv")
	if err != nil {
		s.logger.WithError(err).Error("Failed to list exports",
			logging.Field{Key: logging.FieldFile, Value: s.dir})
		return "", false, fmt.Errorf("failed to list exports in %s: %w", s.dir, err)
	}

	for _, f := range files {
		fileMonth, ok := ParseMonthFileName(f)
		if !ok {
			s.logger.Debug("Skipping file not named after a month",
				logging.Field{Key: logging.FieldFile, Value: f})
			continue
		}
		if fileMonth.Year() == year && fileMonth.Month() == month {
			return f, true, nil
		}
	}
	return "", false, nil
}

// HasMonthFile reports whether the export of now's month is present.
func (s *MonthScanner) HasMonthFile(now time.Time) (bool, error) {
	_, found, err := s.FindMonthFile(now.Year(), now.Month())
	return found, err
}

// MonthPaths returns the expected export paths for months, whether or not
// the files exist.
func (s *MonthScanner) MonthPaths(months []time.Time) []string {
	paths := make([]string, len(months))
	for i, m := range months {
		paths[i] = filepath.Join(s.dir, MonthFileName(m.Year(), m.Month()))
	}
	return paths
}
