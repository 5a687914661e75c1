// Package report writes the categorical and cumulative views to disk for a
// chart renderer, and formats them as text for chat notifications.
package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/models"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Output file names, the extension follows the format.
const (
	CategoryTotalsBase   = "category_totals"
	SpendingTrendBase    = "spending_trend"
	UnclassifiedFileName = "unclassified_transactions.txt"
)

// Metadata identifies one run in the written reports.
type Metadata struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Source      string    `json:"source" yaml:"source"`
	Headline    string    `json:"headline,omitempty" yaml:"headline,omitempty"`
	// Excluded counts rows filtered out before aggregation.
	Excluded    int       `json:"excluded_rows" yaml:"excluded_rows"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// NewMetadata stamps a new run identifier.
func NewMetadata(source, headline string) Metadata {
	return Metadata{
		RunID:       uuid.NewString(),
		Source:      source,
		Headline:    headline,
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
	}
}

type categoryRow struct {
	Category string `csv:"category" json:"category" yaml:"category"`
	Total    string `csv:"total" json:"total" yaml:"total"`
}

type transactionRow struct {
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
	Amount      string `json:"amount" yaml:"amount"`
}

type trendRow struct {
	DayIndex   int    `csv:"day_index" json:"day_index" yaml:"day_index"`
	Date       string `csv:"date" json:"date,omitempty" yaml:"date,omitempty"`
	Cumulative string `csv:"cumulative_spend" json:"cumulative_spend" yaml:"cumulative_spend"`
	Budget     string `csv:"budget_line" json:"budget_line" yaml:"budget_line"`
}

type categoryDocument struct {
	Metadata     Metadata         `json:"metadata" yaml:"metadata"`
	Totals       []categoryRow    `json:"totals" yaml:"totals"`
	Unclassified []transactionRow `json:"unclassified" yaml:"unclassified"`
}

type trendDocument struct {
	Metadata Metadata   `json:"metadata" yaml:"metadata"`
	Points   []trendRow `json:"points" yaml:"points"`
}

// ReportGenerator renders and writes reports in one format.
type ReportGenerator struct {
	outputDir string
	format    string
	logger    logging.Logger
}

// NewReportGenerator creates a generator writing into outputDir.
func NewReportGenerator(outputDir, format string, logger logging.Logger) (*ReportGenerator, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if !ValidFormat(format) {
		return nil, parsererror.NewConfigError("output format", format, "must be csv, json or yaml")
	}
	if outputDir == "" {
		outputDir = "."
	}
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &ReportGenerator{
		outputDir: outputDir,
		format:    format,
		logger:    logger.WithField("component", "ReportGenerator"),
	}, nil
}

// ValidFormat reports whether format is a supported output format.
func ValidFormat(format string) bool {
	switch format {
	case FormatCSV, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// Format returns the output format.
func (g *ReportGenerator) Format() string {
	return g.format
}

// GenerateCategoryReport renders the category totals. CSV output holds only
// the totals; JSON and YAML also carry the metadata and unclassified rows.
func (g *ReportGenerator) GenerateCategoryReport(summary models.CategorySummary, meta Metadata) ([]byte, error) {
	rows := make([]categoryRow, len(summary.Totals))
	for i, t := range summary.Totals {
		rows[i] = categoryRow{Category: t.Category, Total: t.Total.StringFixed(2)}
	}

	if g.format == FormatCSV {
		return g.marshalCSV(&rows)
	}

	doc := categoryDocument{Metadata: meta, Totals: rows, Unclassified: make([]transactionRow, len(summary.Unclassified))}
	for i, tx := range summary.Unclassified {
		doc.Unclassified[i] = transactionRow{
			Date:        tx.Date.Format(models.DateLayoutISO),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
		}
	}
	return g.marshalDocument(doc)
}

// GenerateTrendReport renders the cumulative spend series.
func (g *ReportGenerator) GenerateTrendReport(points []models.DailySpendPoint, meta Metadata) ([]byte, error) {
	rows := make([]trendRow, len(points))
	for i, p := range points {
		rows[i] = trendRow{
			DayIndex:   p.DayIndex,
			Cumulative: p.Cumulative.StringFixed(2),
			Budget:     p.Budget.StringFixed(2),
		}
		if !p.Date.IsZero() {
			rows[i].Date = p.Date.Format(models.DateLayoutISO)
		}
	}

	if g.format == FormatCSV {
		return g.marshalCSV(&rows)
	}
	return g.marshalDocument(trendDocument{Metadata: meta, Points: rows})
}

// WriteCategoryReport writes the totals file and the unclassified listing,
// returning both paths.
func (g *ReportGenerator) WriteCategoryReport(summary models.CategorySummary, meta Metadata) ([]string, error) {
	data, err := g.GenerateCategoryReport(summary, meta)
	if err != nil {
		return nil, err
	}

	totalsPath := filepath.Join(g.outputDir, CategoryTotalsBase+"."+g.format)
	if err := g.write(totalsPath, data); err != nil {
		return nil, err
	}

	unclassifiedPath := filepath.Join(g.outputDir, UnclassifiedFileName)
	if err := g.write(unclassifiedPath, []byte(FormatUnclassified(summary.Unclassified)+"\n")); err != nil {
		return nil, err
	}

	g.logger.Info("Category report written",
		logging.Field{Key: logging.FieldOutputFile, Value: totalsPath},
		logging.Field{Key: logging.FieldUnclassified, Value: len(summary.Unclassified)},
		logging.Field{Key: "run_id", Value: meta.RunID})
	return []string{totalsPath, unclassifiedPath}, nil
}

// WriteTrendReport writes the cumulative series and returns its path.
func (g *ReportGenerator) WriteTrendReport(points []models.DailySpendPoint, meta Metadata) (string, error) {
	data, err := g.GenerateTrendReport(points, meta)
	if err != nil {
		return "", err
	}

	path := filepath.Join(g.outputDir, SpendingTrendBase+"."+g.format)
	if err := g.write(path, data); err != nil {
		return "", err
	}

	g.logger.Info("Trend report written",
		logging.Field{Key: logging.FieldOutputFile, Value: path},
		logging.Field{Key: logging.FieldWindowDays, Value: len(points)},
		logging.Field{Key: "run_id", Value: meta.RunID})
	return path, nil
}

func (g *ReportGenerator) write(path string, data []byte) error {
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionReportFile); err != nil {
		g.logger.WithError(err).Error("Failed to write report",
			logging.Field{Key: logging.FieldOutputFile, Value: path})
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func (g *ReportGenerator) marshalCSV(rows interface{}) ([]byte, error) {
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return data, nil
}

func (g *ReportGenerator) marshalDocument(doc interface{}) ([]byte, error) {
	switch g.format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return data, nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", g.format)
	}
}

// FormatCategoryTable renders totals as an aligned text table with the total
// spend on the last line.
func FormatCategoryTable(summary models.CategorySummary) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, t := range summary.Totals {
		fmt.Fprintf(w, "%s\t%s\t\n", t.Category, models.FormatDollars(t.Total))
	}
	fmt.Fprintf(w, "%s\t%s\t\n", "Total", models.FormatDollars(summary.Sum()))
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// FormatUnclassified renders the unclassified transactions for manual review.
func FormatUnclassified(txs []models.Transaction) string {
	if len(txs) == 0 {
		return fmt.Sprintf("No transactions categorized as '%s'.", models.Unclassified)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transactions categorized as '%s':\n", models.Unclassified)
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "date\tdescription\tamount")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tx.Date.Format(models.DateLayoutISO), tx.Description, tx.Amount.StringFixed(2))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
