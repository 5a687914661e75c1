// Package models provides the data structures used throughout the application.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one row of a spending export. Positive amounts are money spent.
type Transaction struct {
	Date        time.Time       `json:"date" yaml:"date"`
	Description string          `json:"description" yaml:"description"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount"`
}

// NewTransaction builds a Transaction with the date truncated to its calendar day.
func NewTransaction(date time.Time, description string, amount decimal.Decimal) Transaction {
	return Transaction{
		Date:        CivilDate(date),
		Description: description,
		Amount:      amount,
	}
}

// String renders the transaction the way the unclassified report lists it.
func (t Transaction) String() string {
	return fmt.Sprintf("%s  %s  %s", t.Date.Format(DateLayoutISO), t.Description, t.Amount.StringFixed(2))
}

// IsSpend reports whether the transaction is a debit (positive amount).
func (t Transaction) IsSpend() bool {
	return t.Amount.IsPositive()
}

// ClassifiedTransaction is a Transaction with the category it matched.
type ClassifiedTransaction struct {
	Transaction
	Category string `json:"category" yaml:"category"`
}

// IsUnclassified reports whether no keyword matched the transaction.
func (c ClassifiedTransaction) IsUnclassified() bool {
	return c.Category == Unclassified
}

// CivilDate drops the time-of-day and location, keeping the calendar date in UTC.
func CivilDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SumAmounts adds up the amounts of txs exactly.
func SumAmounts(txs []Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	return sum
}
