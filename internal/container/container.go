// Package container provides dependency injection for the budget-csv application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"fjacquet/budget-csv/internal/batch"
	"fjacquet/budget-csv/internal/categorizer"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/csvparser"
	"fjacquet/budget-csv/internal/fileutils"
	"fjacquet/budget-csv/internal/gdrive"
	"fjacquet/budget-csv/internal/logging"
	"fjacquet/budget-csv/internal/notify"
	"fjacquet/budget-csv/internal/parsererror"
	"fjacquet/budget-csv/internal/report"
	"fjacquet/budget-csv/internal/reviewer"
	"fjacquet/budget-csv/internal/scanner"
	"fjacquet/budget-csv/internal/store"
)

// Monthly exports are small; a handful of readers is plenty.
const loaderConcurrency = 4

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    *store.CategoryStore
	parser   *csvparser.Parser
	reports  *report.ReportGenerator
	scanner  *scanner.MonthScanner
	loader   *batch.Loader
	aiClient reviewer.AIClient
	notifier notify.Notifier
	closers  []func() error
}

// NewContainer creates and wires all application dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	if adapter, ok := logger.(*logging.LogrusAdapter); ok {
		fileutils.SetLogger(adapter.Logrus())
		logging.SetDefaultLogger(adapter.Logrus())
	}

	return NewContainerWithLogger(ctx, cfg, logger)
}

// Option overrides a dependency after wiring.
type Option func(*Container)

// WithAIClient replaces the AI client, enabling reviews without Gemini.
func WithAIClient(client reviewer.AIClient) Option {
	return func(c *Container) {
		c.aiClient = client
	}
}

// WithNotifier replaces the status notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Container) {
		c.notifier = n
	}
}

// NewContainerWithLogger wires dependencies around an existing logger.
func NewContainerWithLogger(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{logger: logger, config: cfg}

	c.store = store.NewCategoryStore(cfg.Classification.File, logger)

	if len([]rune(cfg.CSV.Delimiter)) != 1 {
		return nil, parsererror.NewConfigError("csv.delimiter", cfg.CSV.Delimiter, "must be a single character")
	}
	c.parser = csvparser.New(csvparser.Options{
		Delimiter:      []rune(cfg.CSV.Delimiter)[0],
		DateFormat:     cfg.CSV.DateFormat,
		NegativeDebits: cfg.CSV.NegativeDebits,
	}, logger)

	reports, err := report.NewReportGenerator(cfg.Output.Directory, cfg.Output.Format, logger)
	if err != nil {
		return nil, err
	}
	c.reports = reports

	c.scanner = scanner.NewMonthScanner(cfg.Data.Directory, logger)
	c.loader = batch.NewLoader(c.parser, logger, loaderConcurrency)

	if cfg.AI.Enabled {
		gemini, err := reviewer.NewGeminiClient(ctx, reviewer.GeminiOptions{
			APIKey:          cfg.AI.APIKey,
			Model:           cfg.AI.Model,
			MaxOutputTokens: cfg.AI.MaxOutputTokens,
			Timeout:         cfg.AI.Timeout(),
		}, logger)
		if err != nil {
			return nil, err
		}
		c.aiClient = gemini
		c.closers = append(c.closers, gemini.Close)
		logger.Info("AI review enabled", logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		logger.Debug("AI review disabled")
	}

	c.notifier, err = newNotifier(cfg, c.aiClient, logger)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(c)
	}

	logger.Debug("Container initialized successfully",
		logging.Field{Key: "ai_enabled", Value: cfg.AI.Enabled},
		logging.Field{Key: "discord_enabled", Value: cfg.Discord.Enabled()})

	return c, nil
}

func newNotifier(cfg *config.Config, aiClient reviewer.AIClient, logger logging.Logger) (notify.Notifier, error) {
	if !cfg.Discord.Enabled() {
		return notify.NopNotifier{Logger: logger}, nil
	}

	attempts := cfg.Discord.Attempts
	if attempts < 1 {
		attempts = 1
	}
	discord, err := notify.NewDiscord(notify.DiscordOptions{
		BotToken:   cfg.Discord.BotToken,
		ChannelID:  cfg.Discord.ChannelID,
		BaseURL:    cfg.Discord.BaseURL,
		Attempts:   uint(attempts),
		RetryDelay: time.Duration(cfg.Discord.RetryDelaySeconds) * time.Second,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AI.RewriteStatus && aiClient != nil {
		return notify.NewRewritingNotifier(discord, aiClient, logger), nil
	}
	return discord, nil
}

// LoadTable loads the classification table. A missing file yields an empty
// table, so every transaction is Unclassified, unless classification is
// required.
func (c *Container) LoadTable() (*categorizer.Table, error) {
	table, err := c.store.LoadTable()
	if err == nil {
		if table.Len() == 0 && c.config.Classification.Required {
			return nil, parsererror.NewConfigError("classification.file", c.store.CategoriesFile,
				"classification table is empty")
		}
		return table, nil
	}

	if !c.config.Classification.Required && errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("Classification file not found, all transactions will be Unclassified",
			logging.Field{Key: logging.FieldFile, Value: c.store.CategoriesFile})
		return &categorizer.Table{}, nil
	}
	return nil, err
}

// Reviewer returns a budget reviewer using table for category totals.
func (c *Container) Reviewer(table *categorizer.Table) *reviewer.Reviewer {
	return reviewer.NewReviewer(c.aiClient, table, c.logger)
}

// DriveFetcher authorizes against Google Drive with the configured files.
func (c *Container) DriveFetcher(ctx context.Context) (*gdrive.Fetcher, error) {
	return gdrive.NewFetcher(ctx, gdrive.Options{
		CredentialsFile: c.config.Drive.CredentialsFile,
		TokenFile:       c.config.Drive.TokenFile,
	}, c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the classification store.
func (c *Container) GetStore() *store.CategoryStore {
	return c.store
}

// GetParser returns the transaction CSV parser.
func (c *Container) GetParser() *csvparser.Parser {
	return c.parser
}

// GetReportGenerator returns the report writer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// GetScanner returns the monthly export scanner.
func (c *Container) GetScanner() *scanner.MonthScanner {
	return c.scanner
}

// GetLoader returns the multi-month loader.
func (c *Container) GetLoader() *batch.Loader {
	return c.loader
}

// GetAIClient returns the AI client, or nil when AI is disabled.
func (c *Container) GetAIClient() reviewer.AIClient {
	return c.aiClient
}

// GetNotifier returns the status notifier. It is never nil.
func (c *Container) GetNotifier() notify.Notifier {
	return c.notifier
}

// Close releases clients holding connections.
func (c *Container) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
