package spending

import (
	"errors"
	"testing"
	"time"

	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cumulativeStrings(points []models.DailySpendPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Cumulative.StringFixed(2)
	}
	return out
}

func budgetStrings(points []models.DailySpendPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Budget.StringFixed(2)
	}
	return out
}

func TestCumulativeSeries_Scenario(t *testing.T) {
	points, err := CumulativeSeries(sampleTransactions(), WindowOptions{
		Days:         3,
		TargetBudget: decimal.NewFromInt(90),
		Anchor:       day(2024, 1, 1),
	})
	require.NoError(t, err)

	require.Len(t, points, 3)
	for i, p := range points {
		assert.Equal(t, i, p.DayIndex)
		assert.Equal(t, day(2024, 1, 1+i), p.Date)
	}
	assert.Equal(t, []string{"54.20", "58.70", "68.70"}, cumulativeStrings(points))
	assert.Equal(t, []string{"0.00", "45.00", "90.00"}, budgetStrings(points))
	assert.Equal(t, "68.70", WindowSpend(points).StringFixed(2))
}

func TestCumulativeSeries_InvalidWindow(t *testing.T) {
	for _, days := range []int{1, 0, -5} {
		_, err := CumulativeSeries(sampleTransactions(), WindowOptions{Days: days, TargetBudget: decimal.NewFromInt(90)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, parsererror.ErrConfigInvalid), "days=%d", days)
	}
}

func TestCumulativeSeries_EmptySet(t *testing.T) {
	points, err := CumulativeSeries(nil, WindowOptions{Days: 5, TargetBudget: decimal.NewFromInt(100)})
	require.NoError(t, err)

	require.Len(t, points, 5)
	for _, p := range points {
		assert.True(t, p.Cumulative.IsZero())
		assert.True(t, p.Date.IsZero())
	}
	assert.Equal(t, []string{"0.00", "25.00", "50.00", "75.00", "100.00"}, budgetStrings(points))
}

func TestCumulativeSeries_DefaultsAnchorToEarliestDate(t *testing.T) {
	txs := []models.Transaction{
		tx(day(2024, 3, 5), "later", "5.00"),
		tx(day(2024, 3, 2), "earliest", "1.00"),
	}
	points, err := CumulativeSeries(txs, WindowOptions{Days: 4})
	require.NoError(t, err)

	assert.Equal(t, day(2024, 3, 2), points[0].Date)
	assert.Equal(t, []string{"1.00", "1.00", "1.00", "6.00"}, cumulativeStrings(points))
}

func TestCumulativeSeries_ExcludesOutOfWindow(t *testing.T) {
	txs := []models.Transaction{
		tx(day(2023, 12, 31), "before", "100.00"),
		tx(day(2024, 1, 1), "first", "1.00"),
		tx(day(2024, 1, 3), "gap", "2.00"),
		tx(day(2024, 1, 5), "after", "100.00"),
	}
	points, err := CumulativeSeries(txs, WindowOptions{Days: 4, Anchor: day(2024, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"1.00", "1.00", "3.00", "3.00"}, cumulativeStrings(points))
}

func TestCumulativeSeries_BudgetLineEndpointsExact(t *testing.T) {
	target := decimal.RequireFromString("1000.01")
	points, err := CumulativeSeries(nil, WindowOptions{Days: 31, TargetBudget: target})
	require.NoError(t, err)

	require.Len(t, points, 31)
	assert.True(t, points[0].Budget.IsZero())
	assert.True(t, points[30].Budget.Equal(target))
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Budget.GreaterThan(points[i-1].Budget))
	}
}

func TestCumulativeSeries_IgnoresTimeOfDay(t *testing.T) {
	txs := []models.Transaction{{
		Date:        day(2024, 1, 2).Add(23 * time.Hour),
		Description: "late",
		Amount:      decimal.NewFromInt(7),
	}}
	points, err := CumulativeSeries(txs, WindowOptions{Days: 2, Anchor: day(2024, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"0.00", "7.00"}, cumulativeStrings(points))
	assert.True(t, points[1].OverBudget())
}
