package spending

import (
	"testing"

	"fjacquet/budget-csv/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	txs := []models.Transaction{
		tx(day(2024, 1, 1), "STOP AND SHOP", "54.20"),
		tx(day(2024, 1, 2), "AUTOPAY PAYMENT - THANK YOU", "-500.00"),
		tx(day(2024, 1, 3), "INTEREST CHARGE ON PURCHASES", "12.34"),
		tx(day(2024, 1, 4), "AMAZON REFUND", "-20.00"),
	}

	tests := []struct {
		name  string
		opts  FilterOptions
		wantN []string
	}{
		{
			name:  "no filter",
			opts:  FilterOptions{},
			wantN: []string{"STOP AND SHOP", "AUTOPAY PAYMENT - THANK YOU", "INTEREST CHARGE ON PURCHASES", "AMAZON REFUND"},
		},
		{
			name:  "default patterns",
			opts:  FilterOptions{ExcludePatterns: DefaultExcludePatterns},
			wantN: []string{"STOP AND SHOP", "AMAZON REFUND"},
		},
		{
			name:  "spending only",
			opts:  FilterOptions{SpendingOnly: true},
			wantN: []string{"STOP AND SHOP", "INTEREST CHARGE ON PURCHASES"},
		},
		{
			name:  "both with blank pattern",
			opts:  FilterOptions{ExcludePatterns: []string{" ", "Interest Charge"}, SpendingOnly: true},
			wantN: []string{"STOP AND SHOP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(txs, tt.opts)
			names := make([]string, len(got))
			for i, g := range got {
				names[i] = g.Description
			}
			assert.Equal(t, tt.wantN, names)
		})
	}
	assert.Len(t, txs, 4)
}

func TestHeadline(t *testing.T) {
	txs := []models.Transaction{
		tx(day(2024, 1, 3), "UNKNOWN VENDOR", "10.00"),
		tx(day(2024, 1, 1), "STOP AND SHOP", "1054.20"),
		tx(day(2024, 1, 2), "REFUND", "-4.50"),
	}
	assert.Equal(t, "$1,064.20 spent over January 01, 2024 to January 03, 2024", Headline(txs))
	assert.Equal(t, "$0.00 spent", Headline(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTransactions())
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "68.70", s.GrossSpend.StringFixed(2))
	assert.Equal(t, day(2024, 1, 1), s.First)
	assert.Equal(t, day(2024, 1, 3), s.Last)
}
