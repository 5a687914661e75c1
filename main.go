package main

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/budget-csv/cmd/categories"
	"fjacquet/budget-csv/cmd/check"
	"fjacquet/budget-csv/cmd/fetch"
	"fjacquet/budget-csv/cmd/review"
	"fjacquet/budget-csv/cmd/root"
	"fjacquet/budget-csv/cmd/run"
	"fjacquet/budget-csv/cmd/trend"
	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/logging"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	_ = godotenv.Load()

	// 2. Configure the global log level before any logger is created
	logging.SetAllLogLevels(logLevelFromEnv())

	// 3. Register flags and subcommands
	root.Init()
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(trend.Cmd)
	root.Cmd.AddCommand(review.Cmd)
	root.Cmd.AddCommand(check.Cmd)
	root.Cmd.AddCommand(run.Cmd)
	root.Cmd.AddCommand(fetch.Cmd)
}

// logLevelFromEnv reads LOG_LEVEL, or BUDGET_LOG_LEVEL, defaulting to info.
func logLevelFromEnv() logrus.Level {
	levelStr := config.GetEnv("LOG_LEVEL", config.GetEnv("BUDGET_LOG_LEVEL", "info"))
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
