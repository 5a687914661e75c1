package models

import "github.com/shopspring/decimal"

// CategoryConfig is one column of the classification table: a category and its keywords.
type CategoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoriesConfig represents the structure of the categories YAML file
type CategoriesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string          `json:"category" yaml:"category"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
}

// CategorySummary is the categorical view: totals in table order with the
// Unclassified bucket last, and the transactions that fell into it.
type CategorySummary struct {
	Totals       []CategoryTotal `json:"totals" yaml:"totals"`
	Unclassified []Transaction   `json:"unclassified" yaml:"unclassified"`
}

// Sum returns the sum of every category total, Unclassified included.
func (s CategorySummary) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, t := range s.Totals {
		sum = sum.Add(t.Total)
	}
	return sum
}

// Total returns the total for category and whether the category is present.
func (s CategorySummary) Total(category string) (decimal.Decimal, bool) {
	for _, t := range s.Totals {
		if t.Category == category {
			return t.Total, true
		}
	}
	return decimal.Zero, false
}
