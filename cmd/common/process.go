// Package common contains shared functionality for command handlers
package common

import (
	"fmt"

	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/report"
	"fjacquet/budget-csv/internal/spending"

	"github.com/shopspring/decimal"
)

// FilterOptions builds the spend filter from the budget configuration.
func FilterOptions(cfg *config.Config) spending.FilterOptions {
	return spending.FilterOptions{
		ExcludePatterns: cfg.Budget.ExcludePatterns,
		SpendingOnly:    cfg.Budget.SpendingOnly,
	}
}

// LoadSpending parses input and drops payments and other excluded rows.
func LoadSpending(c *container.Container, input string) ([]models.Transaction, error) {
	kept, _, err := loadSpending(c, input)
	return kept, err
}

func loadSpending(c *container.Container, input string) ([]models.Transaction, int, error) {
	txs, err := c.GetParser().ParseFile(input)
	if err != nil {
		return nil, 0, err
	}
	kept := spending.Filter(txs, FilterOptions(c.GetConfig()))
	excluded := len(txs) - len(kept)
	if excluded > 0 {
		c.GetLogger().Info("Excluded transactions from the analysis",
			logging.Field{Key: logging.FieldFile, Value: input},
			logging.Field{Key: logging.FieldCount, Value: excluded},
			logging.Field{Key: "patterns", Value: c.GetConfig().Budget.ExcludePatterns})
	}
	return kept, excluded, nil
}

// CategoryResult is the outcome of a category breakdown.
type CategoryResult struct {
	Summary  models.CategorySummary
	Headline string
	Files    []string
	// Excluded is the number of rows filtered out before aggregation.
	Excluded int
}

// RunCategories aggregates input by category and writes the reports.
func RunCategories(c *container.Container, input string, table *categorizer.Table) (*CategoryResult, error) {
	logger := c.GetLogger()

	txs, excluded, err := loadSpending(c, input)
	if err != nil {
		return nil, err
	}

	summary := spending.Aggregate(txs, categorizer.NewClassifier(table, logger))
	headline := spending.Headline(txs)

	meta := report.NewMetadata(input, headline)
	meta.Excluded = excluded
	files, err := c.GetReportGenerator().WriteCategoryReport(summary, meta)
	if err != nil {
		return nil, fmt.Errorf("failed to write category report: %w", err)
	}

	if n := len(summary.Unclassified); n > 0 {
		logger.Warn("Some transactions matched no category",
			logging.Field{Key: logging.FieldUnclassified, Value: n},
			logging.Field{Key: logging.FieldFile, Value: files[len(files)-1]})
	}
	logger.Info("Category breakdown completed",
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: "excluded", Value: excluded},
		logging.Field{Key: logging.FieldTotal, Value: summary.Sum().StringFixed(2)})

	return &CategoryResult{Summary: summary, Headline: headline, Files: files, Excluded: excluded}, nil
}

// TrendOptions configures a cumulative spend run.
type TrendOptions struct {
	Days   int
	Budget decimal.Decimal
	Anchor config.Anchor
}

// TrendResult is the outcome of a cumulative spend run.
type TrendResult struct {
	Points   []models.DailySpendPoint
	Total    decimal.Decimal
	Headline string
	File     string
}

// RunTrend computes the cumulative spend series of input and writes it.
func RunTrend(c *container.Container, input string, opts TrendOptions) (*TrendResult, error) {
	txs, err := LoadSpending(c, input)
	if err != nil {
		return nil, err
	}

	anchor := opts.Anchor.Resolve(spending.Summarize(txs).First)
	points, err := spending.CumulativeSeries(txs, spending.WindowOptions{
		Days:         opts.Days,
		TargetBudget: opts.Budget,
		Anchor:       anchor,
	})
	if err != nil {
		return nil, err
	}

	headline := spending.Headline(txs)
	file, err := c.GetReportGenerator().WriteTrendReport(points, report.NewMetadata(input, headline))
	if err != nil {
		return nil, fmt.Errorf("failed to write trend report: %w", err)
	}

	total := spending.WindowSpend(points)
	c.GetLogger().Info("Spending trend completed",
		logging.Field{Key: logging.FieldWindowDays, Value: opts.Days},
		logging.Field{Key: logging.FieldBudget, Value: opts.Budget.StringFixed(2)},
		logging.Field{Key: logging.FieldTotal, Value: total.StringFixed(2)})

	return &TrendResult{Points: points, Total: total, Headline: headline, File: file}, nil
}
