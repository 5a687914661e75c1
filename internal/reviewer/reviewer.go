// Package reviewer asks a language model to review several months of spending
// against a budget.
package reviewer

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/report"
	"fjacquet/budget-csv/internal/spending"

	"github.com/shopspring/decimal"
)

// SystemPrompt frames the model as a spending reviewer.
const SystemPrompt = "You are a financial assistant reviewing personal spending data."

// NoDataMessage is returned instead of calling the model on an empty period.
const NoDataMessage = "No transaction data to analyze."

// ReviewRequest describes the period to review.
type ReviewRequest struct {
	Transactions []models.Transaction
	Budget       decimal.Decimal
	Months       int
	// CutoffDay is the billing cutoff day, 0 for calendar months.
	CutoffDay int
}

// Reviewer builds review prompts and sends them to an AIClient.
type Reviewer struct {
	client AIClient
	table  *categorizer.Table
	logger logging.Logger
}

// NewReviewer creates a Reviewer. table may be nil, in which case the prompt
// carries no category breakdown.
func NewReviewer(client AIClient, table *categorizer.Table, logger logging.Logger) *Reviewer {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &Reviewer{
		client: client,
		table:  table,
		logger: logger.WithField("component", "Reviewer"),
	}
}

// Review returns the model's analysis of req.
func (r *Reviewer) Review(ctx context.Context, req ReviewRequest) (string, error) {
	if len(req.Transactions) == 0 {
		r.logger.Warn("Review requested for an empty period")
		return NoDataMessage, nil
	}
	if r.client == nil {
		return "", fmt.Errorf("AI review is not configured")
	}

	var summary *models.CategorySummary
	if r.table != nil && r.table.Len() > 0 {
		s := spending.Aggregate(req.Transactions, categorizer.NewClassifier(r.table, r.logger))
		summary = &s
	}

	prompt := BuildPrompt(req, summary)
	r.logger.Info("Requesting spending review",
		logging.Field{Key: logging.FieldMonths, Value: req.Months},
		logging.Field{Key: logging.FieldCount, Value: len(req.Transactions)},
		logging.Field{Key: logging.FieldBudget, Value: req.Budget.StringFixed(2)})

	analysis, err := r.client.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		r.logger.WithError(err).Error("Spending review failed")
		return "", fmt.Errorf("failed to review spending: %w", err)
	}
	return strings.TrimSpace(analysis), nil
}

// BuildPrompt renders the review prompt. Wording differs between calendar
// months and billing periods.
func BuildPrompt(req ReviewRequest, summary *models.CategorySummary) string {
	var period, detail string
	if req.CutoffDay > 0 {
		descriptor := plural(req.Months, "billing period", "billing periods")
		period = fmt.Sprintf("last %d %s", req.Months, descriptor)
		detail = fmt.Sprintf("where each billing period ends on approximately day %d of the month. "+
			"Analyze my spending patterns across these %d billing periods.", req.CutoffDay, req.Months)
	} else {
		descriptor := plural(req.Months, "month", "months")
		period = fmt.Sprintf("last %d calendar %s", req.Months, descriptor)
		detail = fmt.Sprintf("Analyze my spending patterns over these %d calendar %s.", req.Months, descriptor)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Review my transactions for the %s. %s\n", period, detail)
	fmt.Fprintf(&b, "Tell me how I did against my budget of %s.\n", models.FormatDollars(req.Budget))
	b.WriteString("Summarize where most of my spending went.\n")
	b.WriteString("Identify if my overall spending is increasing or decreasing across this period.\n")
	b.WriteString("Note any other significant trends, patterns, or anomalies you observe in the spending data.\n")

	if summary != nil {
		b.WriteString("\nCategory Totals:\n")
		b.WriteString(report.FormatCategoryTable(*summary))
		b.WriteString("\n")
	}

	b.WriteString("\nTransactions Data:\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Date\tDescription\tAmount")
	for _, tx := range req.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tx.Date.Format(models.DateLayoutISO), tx.Description, tx.Amount.StringFixed(2))
	}
	_ = w.Flush()

	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
