// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"

	"fjacquet/budget-csv/internal/config"
	"fjacquet/budget-csv/internal/container"

	"github.com/spf13/cobra"
)

// CommonFlags are the persistent flags shared by every subcommand.
type CommonFlags struct {
	ConfigFile     string
	Classification string
	OutputDir      string
	Format         string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-csv",
		Short: "Classify card transactions and track spending against a budget.",
		Long: `budget-csv reads monthly transaction exports, groups spending into
categories by keyword, tracks cumulative spend against a budget line and can
post the results to Discord or ask Gemini for a budget review.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appContainer == nil {
				return nil
			}
			return appContainer.Close()
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default searches ./config.yaml, .budget-csv/, $HOME/.budget-csv/)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Classification, "classification", "c", "", "Classification table (CSV or YAML)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.OutputDir, "output-dir", "o", "", "Directory for generated reports")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Format, "format", "f", "", "Report format: csv, json or yaml")
}

func setup(cmd *cobra.Command, args []string) error {
	config.LoadEnv()

	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	ApplyFlags(cfg, SharedFlags)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	appContainer = c
	return nil
}

// ApplyFlags lets non-empty flag values override the loaded configuration.
func ApplyFlags(cfg *config.Config, flags CommonFlags) {
	if flags.Classification != "" {
		cfg.Classification.File = flags.Classification
	}
	if flags.OutputDir != "" {
		cfg.Output.Directory = flags.OutputDir
	}
	if flags.Format != "" {
		cfg.Output.Format = flags.Format
	}
}

// GetContainer returns the container built before the running command.
func GetContainer() *container.Container {
	return appContainer
}

// SetContainer replaces the container. Tests use it to run subcommands
// without going through configuration loading.
func SetContainer(c *container.Container) {
	appContainer = c
}
