// Package trend implements the cumulative spending command.
package trend

import (
	"fmt"
	"io"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/models"

	"github.com/spf13/cobra"
)

// Options are the trend command flags. Empty values fall back to the
// budget section of the configuration.
type Options struct {
	Input  string
	Budget string
	Days   int
	Anchor string
}

var opts Options

// Cmd represents the trend command
var Cmd = &cobra.Command{
	Use:   "trend",
	Short: "Track cumulative spending against a linear budget",
	Long: `Compute the running spend total for each day of a window starting at the
anchor, next to a budget line rising linearly from zero to the target.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction export (CSV)")
	Cmd.Flags().StringVarP(&opts.Budget, "budget", "b", "", "Target budget reached on the last day of the window")
	Cmd.Flags().IntVarP(&opts.Days, "days", "d", 0, "Window length in days (default from config, 30)")
	Cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "First day of the window: YYYY-MM-DD or 'month'")
	_ = Cmd.MarkFlagRequired("input")
}

// Resolve merges o with the configured defaults.
func Resolve(cfg *config.Config, o Options) (common.TrendOptions, error) {
	budget := cfg.Budget.Target
	if o.Budget != "" {
		budget = o.Budget
	}
	target, err := config.ParseBudget(budget)
	if err != nil {
		return common.TrendOptions{}, err
	}

	days := cfg.Budget.WindowDays
	if o.Days != 0 {
		days = o.Days
	}

	anchorStr := cfg.Budget.Anchor
	if o.Anchor != "" {
		anchorStr = o.Anchor
	}
	anchor, err := config.ParseAnchor(anchorStr)
	if err != nil {
		return common.TrendOptions{}, err
	}

	return common.TrendOptions{Days: days, Budget: target, Anchor: anchor}, nil
}

// Run computes and writes the trend, then prints a short summary to out.
func Run(c *container.Container, o Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application not initialized")
	}

	trendOpts, err := Resolve(c.GetConfig(), o)
	if err != nil {
		return err
	}

	result, err := common.RunTrend(c, o.Input, trendOpts)
	if err != nil {
		return err
	}

	status := "within budget"
	if last := result.Points[len(result.Points)-1]; last.OverBudget() {
		status = "over budget"
	}
	_, err = fmt.Fprintf(out, "%s\nWindow total: %s of %s (%s)\nTrend written to %s\n",
		result.Headline,
		models.FormatDollars(result.Total),
		models.FormatDollars(trendOpts.Budget),
		status,
		result.File)
	return err
}
