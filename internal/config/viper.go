// Package config provides Viper-based hierarchical configuration management
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/dateutils"
	"fjacquet/budget-csv/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// AnchorMonth anchors a spending window on the first day of the earliest
// transaction's month.
const AnchorMonth = "month"

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig describes the transaction export layout.
type CSVConfig struct {
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
	DateFormat     string `mapstructure:"date_format" yaml:"date_format"`
	NegativeDebits bool   `mapstructure:"negative_debits" yaml:"negative_debits"`
}

// ClassificationConfig locates the category keyword table.
type ClassificationConfig struct {
	File     string `mapstructure:"file" yaml:"file"`
	Required bool   `mapstructure:"required" yaml:"required"`
}

// BudgetConfig holds the spending window and filter settings.
type BudgetConfig struct {
	Target           string   `mapstructure:"target" yaml:"target"`
	WindowDays       int      `mapstructure:"window_days" yaml:"window_days"`
	Anchor           string   `mapstructure:"anchor" yaml:"anchor"`
	BillingCutoffDay int      `mapstructure:"billing_cutoff_day" yaml:"billing_cutoff_day"`
	ReviewMonths     int      `mapstructure:"review_months" yaml:"review_months"`
	ExcludePatterns  []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	SpendingOnly     bool     `mapstructure:"spending_only" yaml:"spending_only"`
}

// TargetAmount parses Target. An empty target is zero.
func (b BudgetConfig) TargetAmount() (decimal.Decimal, error) {
	return ParseBudget(b.Target)
}

// DataConfig points at the folder holding the monthly exports.
type DataConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// OutputConfig controls where reports go.
type OutputConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	Format    string `mapstructure:"format" yaml:"format"`
}

// AIConfig configures the Gemini budget reviewer.
type AIConfig struct {
	Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
	Model           string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	RewriteStatus   bool   `mapstructure:"rewrite_status" yaml:"rewrite_status"`
	APIKey          string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
}

// Timeout returns TimeoutSeconds as a duration.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// DiscordConfig configures status notifications.
type DiscordConfig struct {
	BotToken          string `mapstructure:"bot_token" yaml:"-"`
	ChannelID         string `mapstructure:"channel_id" yaml:"channel_id"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	Attempts          int    `mapstructure:"attempts" yaml:"attempts"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
}

// Enabled reports whether both credentials are present.
func (d DiscordConfig) Enabled() bool {
	return d.BotToken != "" && d.ChannelID != ""
}

// DriveConfig locates the Google OAuth files.
type DriveConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	TokenFile       string `mapstructure:"token_file" yaml:"token_file"`
}

// Config represents the complete application configuration
type Config struct {
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	CSV            CSVConfig            `mapstructure:"csv" yaml:"csv"`
	Classification ClassificationConfig `mapstructure:"classification" yaml:"classification"`
	Budget         BudgetConfig         `mapstructure:"budget" yaml:"budget"`
	Data           DataConfig           `mapstructure:"data" yaml:"data"`
	Output         OutputConfig         `mapstructure:"output" yaml:"output"`
	AI             AIConfig             `mapstructure:"ai" yaml:"ai"`
	Discord        DiscordConfig        `mapstructure:"discord" yaml:"discord"`
	Drive          DriveConfig          `mapstructure:"drive" yaml:"drive"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading.
// A non-empty configFile replaces the search path.
func InitializeConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-csv")
		v.AddConfigPath(".budget-csv")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("BUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 5. Secrets keep their conventional unprefixed names
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("discord.bot_token", "DISCORD_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind DISCORD_BOT_TOKEN: %w", err)
	}
	if err := v.BindEnv("discord.channel_id", "DISCORD_CHANNEL_ID", "BUDGET_DISCORD_CHANNEL_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind DISCORD_CHANNEL_ID: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.date_format", "")
	v.SetDefault("csv.negative_debits", false)

	v.SetDefault("classification.file", "classification.csv")
	v.SetDefault("classification.required", false)

	v.SetDefault("budget.target", "0")
	v.SetDefault("budget.window_days", 30)
	v.SetDefault("budget.anchor", "")
	v.SetDefault("budget.billing_cutoff_day", 0)
	v.SetDefault("budget.review_months", 3)
	v.SetDefault("budget.exclude_patterns", []string{"payment", "interest charge"})
	v.SetDefault("budget.spending_only", false)

	v.SetDefault("data.directory", ".")

	v.SetDefault("output.directory", "output")
	v.SetDefault("output.format", "csv")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("ai.max_output_tokens", 1000)
	v.SetDefault("ai.rewrite_status", false)

	v.SetDefault("discord.channel_id", "")
	v.SetDefault("discord.base_url", "https://discord.com/api/v10")
	v.SetDefault("discord.attempts", 3)
	v.SetDefault("discord.retry_delay_seconds", 2)

	v.SetDefault("drive.credentials_file", "credentials.json")
	v.SetDefault("drive.token_file", "token.json")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return parsererror.NewConfigError("log.level", config.Log.Level, "unknown log level")
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return parsererror.NewConfigError("log.format", config.Log.Format, "must be 'text' or 'json'")
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return parsererror.NewConfigError("csv.delimiter", config.CSV.Delimiter, "must be a single character")
	}

	if config.Budget.WindowDays <= 1 {
		return parsererror.NewConfigError("budget.window_days", strconv.Itoa(config.Budget.WindowDays),
			"window must span at least two days")
	}

	if _, err := config.Budget.TargetAmount(); err != nil {
		return err
	}

	if _, err := ParseAnchor(config.Budget.Anchor); err != nil {
		return err
	}

	if config.Budget.BillingCutoffDay < 0 || config.Budget.BillingCutoffDay > 31 {
		return parsererror.NewConfigError("budget.billing_cutoff_day",
			strconv.Itoa(config.Budget.BillingCutoffDay), "must be between 0 and 31")
	}

	if config.Budget.ReviewMonths < 1 {
		return parsererror.NewConfigError("budget.review_months",
			strconv.Itoa(config.Budget.ReviewMonths), "must be at least 1")
	}

	switch config.Output.Format {
	case "csv", "json", "yaml":
	default:
		return parsererror.NewConfigError("output.format", config.Output.Format, "must be csv, json or yaml")
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return parsererror.NewConfigError("ai.api_key", "", "GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return parsererror.NewConfigError("ai.timeout_seconds",
				strconv.Itoa(config.AI.TimeoutSeconds), "must be between 1 and 300")
		}
	}

	if config.Discord.Attempts < 1 {
		return parsererror.NewConfigError("discord.attempts", strconv.Itoa(config.Discord.Attempts), "must be at least 1")
	}

	return nil
}

// ParseBudget parses a non-negative budget target such as "1500" or "$1,500.00".
func ParseBudget(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(s)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, parsererror.NewConfigError("budget.target", s, "not a number")
	}
	if d.IsNegative() {
		return decimal.Zero, parsererror.NewConfigError("budget.target", s, "must not be negative")
	}
	return d, nil
}

// Anchor is a parsed window anchor. Date is zero unless Kind is "date".
type Anchor struct {
	Kind string // "", "month" or "date"
	Date time.Time
}

// ParseAnchor accepts "", "month" or an ISO date.
func ParseAnchor(s string) (Anchor, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return Anchor{}, nil
	case AnchorMonth:
		return Anchor{Kind: AnchorMonth}, nil
	}
	d, _, err := dateutils.ParseDate(s, dateutils.DateLayoutISO)
	if err != nil {
		return Anchor{}, parsererror.NewConfigError("budget.anchor", s, "expected YYYY-MM-DD or 'month'")
	}
	return Anchor{Kind: "date", Date: d}, nil
}

// Resolve returns the concrete anchor for transactions whose earliest date
// is earliest. The zero time means the earliest transaction date.
func (a Anchor) Resolve(earliest time.Time) time.Time {
	switch a.Kind {
	case AnchorMonth:
		if earliest.IsZero() {
			return time.Time{}
		}
		return dateutils.StartOfMonth(earliest)
	case "date":
		return a.Date
	}
	return time.Time{}
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
