// Package spending computes the two analytical views over a transaction set:
// per-category totals and the cumulative daily spend against a budget line.
package spending

import (
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregate classifies every transaction through classifier and sums amounts
// per category. Totals follow table declaration order with the Unclassified
// bucket always appended last, even when nothing fell into it. A nil
// classifier treats everything as Unclassified.
func Aggregate(txs []models.Transaction, classifier *categorizer.Classifier) models.CategorySummary {
	if classifier == nil {
		classifier = categorizer.NewClassifier(nil, nil)
	}

	names := classifier.Table().Categories()
	index := make(map[string]int, len(names)+1)
	totals := make([]models.CategoryTotal, 0, len(names)+1)
	for i, name := range names {
		index[name] = i
		totals = append(totals, models.CategoryTotal{Category: name, Total: decimal.Zero})
	}
	unclassifiedIdx := len(totals)
	totals = append(totals, models.CategoryTotal{Category: models.Unclassified, Total: decimal.Zero})

	var unclassified []models.Transaction
	for _, ct := range classifier.ClassifyAll(txs) {
		i, ok := index[ct.Category]
		if !ok {
			i = unclassifiedIdx
			unclassified = append(unclassified, ct.Transaction)
		}
		totals[i].Total = totals[i].Total.Add(ct.Amount)
	}

	return models.CategorySummary{Totals: totals, Unclassified: unclassified}
}
