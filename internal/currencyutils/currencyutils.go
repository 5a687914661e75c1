// Package currencyutils turns the amount strings of exports into exact decimals.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = regexp.MustCompile(`[€$£¥\s]|USD|US\$`)

// ParseAmount parses an amount like "$1,234.56", "-12.00", "(12.00)" or
// "12.00-" into an exact decimal. Parentheses and a trailing minus mean negative.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized, negative := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	if negative {
		amount = amount.Neg()
	}

	return amount, nil
}

// StandardizeAmount strips currency symbols, whitespace and thousands
// separators, and reports whether accounting-style negation was found.
func StandardizeAmount(amountStr string) (string, bool) {
	s := currencySymbols.ReplaceAllString(strings.TrimSpace(amountStr), "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative = true
	}
	if strings.HasSuffix(s, "-") {
		s = strings.TrimSuffix(s, "-")
		negative = !negative
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "'", "")

	return s, negative
}
