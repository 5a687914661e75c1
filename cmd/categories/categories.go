// Package categories implements the category breakdown command.
package categories

import (
	"fmt"
	"io"

	"fjacquet/budget-csv/cmd/common"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/container"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/report"

	"github.com/spf13/cobra"
)

// Options are the categories command flags.
type Options struct {
	Input    string
	SaveYAML string
}

var opts Options

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Break spending down by category",
	Long: `Classify every transaction of an export with the keyword table, write the
per-category totals and list the transactions that matched no category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(root.GetContainer(), opts, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction export (CSV)")
	Cmd.Flags().StringVar(&opts.SaveYAML, "save-yaml", "", "Also save the classification table as YAML to this path")
	_ = Cmd.MarkFlagRequired("input")
}

// Run executes the breakdown and prints the totals table to out.
func Run(c *container.Container, o Options, out io.Writer) error {
	if c == nil {
		return fmt.Errorf("application not initialized")
	}

	table, err := c.LoadTable()
	if err != nil {
		return err
	}

	result, err := common.RunCategories(c, o.Input, table)
	if err != nil {
		return err
	}

	if o.SaveYAML != "" {
		if err := c.GetStore().SaveCategories(o.SaveYAML, TableConfigs(table)); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(out, "%s\n\n%s\n\n%s\n", result.Headline,
		report.FormatCategoryTable(result.Summary), report.FormatUnclassified(result.Summary.Unclassified))
	return err
}

// TableConfigs converts a table back to its ordered category configs.
func TableConfigs(table *categorizer.Table) []models.CategoryConfig {
	names := table.Categories()
	configs := make([]models.CategoryConfig, 0, len(names))
	for _, name := range names {
		configs = append(configs, models.CategoryConfig{Name: name, Keywords: table.Keywords(name)})
	}
	return configs
}
