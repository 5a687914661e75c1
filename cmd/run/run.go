// Package run analyses last month's export and posts the results.
package run

import (
	"context"
	"fmt"
	"io"
	"time"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/cmd/trend"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/notify"
	"fjacquet/budget-csv/internal/report"
	"fjacquet/budget-csv/internal/scanner"

	"github.com/spf13/cobra"
)

// MissingExportMessage is posted when last month's export is absent.
const MissingExportMessage = "Last month's CSV Export is missing."

// Options are the run command flags.
type Options struct {
	Folder string
	Budget string
	// Now is the run date; zero means time.Now.
	Now time.Time
}

var opts Options

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Analyse last month's export and post the results",
	Long: `Find last month's export, compute the spending trend and the category
breakdown, and post both to Discord with the report files attached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVar(&opts.Folder, "folder", "", "Folder holding the monthly exports (default from config)")
	Cmd.Flags().StringVarP(&opts.Budget, "budget", "b", "", "Target budget for the month")
}

// Run executes the monthly analysis.
func Run(ctx context.Context, c *container.Container, o Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	logger := c.GetLogger().WithField("command", "run")
	notifier := c.GetNotifier()

	s := c.GetScanner()
	if o.Folder != "" {
		s = scanner.NewMonthScanner(o.Folder, logger)
	}

	lastMonth := dateutils.AddMonths(o.Now, -1)
	file, found, err := s.FindMonthFile(lastMonth.Year(), lastMonth.Month())
	if err != nil {
		return err
	}
	if !found {
		post(ctx, notifier, logger, notify.Message{Content: MissingExportMessage})
		_, err := fmt.Fprintln(out, MissingExportMessage)
		return err
	}
	logger.Info("Analysing export", logging.Field{Key: logging.FieldFile, Value: file})

	trendOpts, err := trend.Resolve(c.GetConfig(), trend.Options{Budget: o.Budget})
	if err != nil {
		return err
	}
	trendResult, err := common.RunTrend(c, file, trendOpts)
	if err != nil {
		return err
	}

	table, err := c.LoadTable()
	if err != nil {
		return err
	}
	categoryResult, err := common.RunCategories(c, file, table)
	if err != nil {
		return err
	}

	post(ctx, notifier, logger, notify.Message{
		Content:     fmt.Sprintf("Analysis completed for file: %s\nGraph and categories are ready!\n%s", file, trendResult.Headline),
		Attachments: []string{trendResult.File},
	})
	post(ctx, notifier, logger, notify.Message{
		Content:     "Categories Breakdown\n```\n" + report.FormatCategoryTable(categoryResult.Summary) + "\n```",
		Attachments: categoryResult.Files,
	})

	_, err = fmt.Fprintf(out, "Analysis completed for file: %s\n%s\n\n%s\n",
		file, trendResult.Headline, report.FormatCategoryTable(categoryResult.Summary))
	return err
}

// post logs delivery failures; the analysis itself has already succeeded.
func post(ctx context.Context, n notify.Notifier, logger logging.Logger, msg notify.Message) {
	if err := n.Post(ctx, msg); err != nil {
		logger.WithError(err).Error("Failed to send Discord notification")
	}
}
