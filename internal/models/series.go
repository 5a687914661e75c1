package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySpendPoint is one day of the cumulative spend view.
type DailySpendPoint struct {
	DayIndex   int             `json:"day_index" yaml:"day_index"`
	Date       time.Time       `json:"date" yaml:"date"`
	Cumulative decimal.Decimal `json:"cumulative_spend" yaml:"cumulative_spend"`
	Budget     decimal.Decimal `json:"budget_line" yaml:"budget_line"`
}

// OverBudget reports whether actual spend is above the budget line on that day.
func (p DailySpendPoint) OverBudget() bool {
	return p.Cumulative.GreaterThan(p.Budget)
}
