// Package dateutils parses the dates found in bank and card exports and
// provides the calendar arithmetic used for budget periods.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts seen in card and bank exports.
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutUS        = "01/02/2006"
	DateLayoutUSShort   = "1/2/2006"
	DateLayoutUSTwoYear = "01/02/06"
	DateLayoutFull      = "2006-01-02 15:04:05"
	DateLayoutMonthName = "January 2, 2006"
	DateLayoutAbbrev    = "Jan 2, 2006"
)

// CommonFormats is the auto-detection order. US layouts come before any
// day-first layout since the exports are US statements.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutUS,
	DateLayoutUSShort,
	DateLayoutUSTwoYear,
	DateLayoutFull,
	DateLayoutISO + "T15:04:05Z07:00",
	DateLayoutMonthName,
	DateLayoutAbbrev,
	"2006/01/02",
}

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate parses dateStr with layout, or tries CommonFormats when layout is
// empty. The result is a civil date at UTC midnight; the matched layout is
// returned alongside.
func ParseDate(dateStr, layout string) (time.Time, string, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}

	layouts := CommonFormats
	if layout != "" {
		layouts = []string{layout}
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, clean); err == nil {
			return ToCivil(t), l, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToCivil keeps only the calendar date of t, at UTC midnight.
func ToCivil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ToISODate formats a date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// StartOfMonth returns the first day of the month of date.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month of date.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// DaysInMonth returns the number of days of the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves to the first day of the month n months away from date.
// Unlike time.AddDate it never overflows into the following month.
func AddMonths(date time.Time, n int) time.Time {
	return StartOfMonth(date).AddDate(0, n, 0)
}

// CompareDates compares the calendar dates of two times and returns -1, 0 or 1.
func CompareDates(date1, date2 time.Time) int {
	date1 = ToCivil(date1)
	date2 = ToCivil(date2)

	switch {
	case date1.Before(date2):
		return -1
	case date1.After(date2):
		return 1
	default:
		return 0
	}
}
