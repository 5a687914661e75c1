package spending

import (
	"strconv"
	"time"

	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
)

// WindowOptions configures the cumulative spend view.
type WindowOptions struct {
	// Days is the window length. Must be greater than 1.
	Days int
	// TargetBudget is the value the budget line reaches on the last day.
	TargetBudget decimal.Decimal
	// Anchor is day 0. Zero means the earliest transaction date.
	Anchor time.Time
}

// CumulativeSeries returns one point per day of the window, holding the
// running spend total and the linear budget line. Transactions dated outside
// [anchor, anchor+Days) are ignored. Days without transactions repeat the
// previous cumulative value.
func CumulativeSeries(txs []models.Transaction, opts WindowOptions) ([]models.DailySpendPoint, error) {
	if opts.Days <= 1 {
		return nil, parsererror.NewConfigError("window_days", strconv.Itoa(opts.Days), "must be greater than 1")
	}

	anchor := models.CivilDate(opts.Anchor)
	if anchor.IsZero() {
		anchor = earliestDate(txs)
	}

	daily := make([]decimal.Decimal, opts.Days)
	for i := range daily {
		daily[i] = decimal.Zero
	}
	if !anchor.IsZero() {
		for _, tx := range txs {
			day, ok := dayIndex(anchor, tx.Date, opts.Days)
			if !ok {
				continue
			}
			daily[day] = daily[day].Add(tx.Amount)
		}
	}

	points := make([]models.DailySpendPoint, opts.Days)
	last := decimal.NewFromInt(int64(opts.Days - 1))
	running := decimal.Zero
	for i := range points {
		running = running.Add(daily[i])
		points[i] = models.DailySpendPoint{
			DayIndex:   i,
			Cumulative: running,
			Budget:     budgetLine(opts.TargetBudget, i, opts.Days, last),
		}
		if !anchor.IsZero() {
			points[i].Date = anchor.AddDate(0, 0, i)
		}
	}

	return points, nil
}

// WindowSpend returns the cumulative spend at the end of the window.
func WindowSpend(points []models.DailySpendPoint) decimal.Decimal {
	if len(points) == 0 {
		return decimal.Zero
	}
	return points[len(points)-1].Cumulative
}

// budgetLine pins both ends exactly; intermediate values use 16 digits of
// division precision.
func budgetLine(target decimal.Decimal, i, days int, last decimal.Decimal) decimal.Decimal {
	switch i {
	case 0:
		return decimal.Zero
	case days - 1:
		return target
	}
	return target.Mul(decimal.NewFromInt(int64(i))).Div(last)
}

func dayIndex(anchor, date time.Time, days int) (int, bool) {
	date = models.CivilDate(date)
	if date.Before(anchor) {
		return 0, false
	}
	// Civil dates are UTC midnights, so the hour count is an exact multiple of 24.
	idx := int(date.Sub(anchor).Hours() / 24)
	if idx >= days {
		return 0, false
	}
	return idx, true
}

func earliestDate(txs []models.Transaction) time.Time {
	var earliest time.Time
	for _, tx := range txs {
		d := models.CivilDate(tx.Date)
		if d.IsZero() {
			continue
		}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}
	return earliest
}
