// Package review implements the multi-month AI budget review command.
package review

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/batch"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/reviewer"
	"fjacquet/budget-csv/internal/scanner"
	"fjacquet/budget-csv/internal/spending"

	"github.com/spf13/cobra"
)

// Options are the review command flags. Zero values fall back to the
// configuration.
type Options struct {
	Folder    string
	Months    int
	Budget    string
	CutoffDay int
	// Now is the run date; zero means time.Now.
	Now time.Time
}

var opts Options

// Cmd represents the review command
var Cmd = &cobra.Command{
	Use:   "review",
	Short: "Ask Gemini to review the last months of spending",
	Long: `Load the monthly exports of the last months (or billing periods when a
cutoff day is set) and ask Gemini how spending compares to the budget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.Folder, "folder", "", "Folder holding the '<Month YYYY> - transactions.csv' exports")
	Cmd.Flags().IntVarP(&opts.Months, "months", "m", 0, "Number of months or billing periods to review")
	Cmd.Flags().StringVarP(&opts.Budget, "budget", "b", "", "Budget for the whole period")
	Cmd.Flags().IntVar(&opts.CutoffDay, "cutoff-day", 0, "Billing cycle cutoff day (1-31); calendar months when unset")
}

// Run loads the period, asks for a review and prints it to out.
func Run(ctx context.Context, c *container.Container, o Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := c.GetConfig()
	logger := c.GetLogger().WithField("command", "review")

	if o.Folder == "" {
		o.Folder = cfg.Data.Directory
	}
	if o.Months == 0 {
		o.Months = cfg.Budget.ReviewMonths
	}
	if o.Budget == "" {
		o.Budget = cfg.Budget.Target
	}
	if o.CutoffDay == 0 {
		o.CutoffDay = cfg.Budget.BillingCutoffDay
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	budget, err := config.ParseBudget(o.Budget)
	if err != nil {
		return err
	}

	// Validate before touching any file.
	var cycles []batch.DateRange
	if o.CutoffDay != 0 {
		cycles, err = batch.BillingCycles(dateutils.AddMonths(o.Now, -1), o.Months, o.CutoffDay)
		if err != nil {
			return err
		}
	} else if o.Months < 1 {
		return fmt.Errorf("months must be at least 1, got %d", o.Months)
	}

	months := scanner.LastMonths(o.Now, o.Months, o.CutoffDay)
	paths := scanner.NewMonthScanner(o.Folder, logger).MonthPaths(months)

	txs, err := c.GetLoader().LoadMonths(ctx, paths)
	if err != nil {
		return err
	}
	txs = spending.Filter(txs, common.FilterOptions(cfg))

	if cycles != nil {
		span := batch.Span(cycles)
		txs = batch.Segment(txs, cycles)
		logger.Info("Segmented transactions by billing cycle",
			logging.Field{Key: "period", Value: span.String()},
			logging.Field{Key: logging.FieldCount, Value: len(txs)})
	}

	table, err := c.LoadTable()
	if err != nil {
		return err
	}

	analysis, err := c.Reviewer(table).Review(ctx, reviewer.ReviewRequest{
		Transactions: txs,
		Budget:       budget,
		Months:       o.Months,
		CutoffDay:    o.CutoffDay,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Spending Analysis:\n%s\n", analysis)
	return err
}
