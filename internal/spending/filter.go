package spending

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/models"

	"github.com/shopspring/decimal"
)

// DefaultExcludePatterns drops card payments and interest lines, which are
// transfers rather than spending.
var DefaultExcludePatterns = []string{"payment", "interest charge"}

// FilterOptions selects which transactions reach the views.
type FilterOptions struct {
	// ExcludePatterns are case-insensitive substrings; a matching description is dropped.
	ExcludePatterns []string
	// SpendingOnly drops refunds and credits (amounts <= 0).
	SpendingOnly bool
}

// Filter returns the transactions kept by opts, in input order. The input is
// not modified.
func Filter(txs []models.Transaction, opts FilterOptions) []models.Transaction {
	patterns := make([]string, 0, len(opts.ExcludePatterns))
	for _, p := range opts.ExcludePatterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			patterns = append(patterns, p)
		}
	}

	kept := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if opts.SpendingOnly && !tx.IsSpend() {
			continue
		}
		if excluded(tx.Description, patterns) {
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}

func excluded(description string, patterns []string) bool {
	desc := strings.ToLower(description)
	for _, p := range patterns {
		if strings.Contains(desc, p) {
			return true
		}
	}
	return false
}

// Summary is the gross spend and date span of a transaction set.
type Summary struct {
	GrossSpend decimal.Decimal
	First      time.Time
	Last       time.Time
	Count      int
}

// Summarize sums positive amounts and finds the first and last dates.
func Summarize(txs []models.Transaction) Summary {
	s := Summary{GrossSpend: decimal.Zero, Count: len(txs)}
	for _, tx := range txs {
		if tx.IsSpend() {
			s.GrossSpend = s.GrossSpend.Add(tx.Amount)
		}
		d := models.CivilDate(tx.Date)
		if d.IsZero() {
			continue
		}
		if s.First.IsZero() || d.Before(s.First) {
			s.First = d
		}
		if d.After(s.Last) {
			s.Last = d
		}
	}
	return s
}

// Headline renders the report title, e.g. "$68.70 spent over January 01, 2024 to January 03, 2024".
func Headline(txs []models.Transaction) string {
	s := Summarize(txs)
	if s.First.IsZero() {
		return fmt.Sprintf("%s spent", models.FormatDollars(s.GrossSpend))
	}
	return fmt.Sprintf("%s spent over %s to %s",
		models.FormatDollars(s.GrossSpend),
		s.First.Format(models.DateLayoutHeadline),
		s.Last.Format(models.DateLayoutHeadline))
}
