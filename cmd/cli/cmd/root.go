// Package cmd provides the CLI commands for pricing-detective.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pricing-detective/internal/config"
	"pricing-detective/internal/container"
	"pricing-detective/internal/logging"
)

var (
	cfgFile string
	verbose bool
	apiURL  string
	noColor bool

	// app is built once flags and configuration are known
	app *container.Container
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pricing-detective",
	Short: "Detect deceptive pricing in software pricing pages",
	Long: `pricing-detective sends the text of a software tool's pricing page to the
analysis service and reports hidden fees, fake free tiers, usage caps and
other deceptive pricing patterns, with an overall honesty score.

Examples:
  pricing-detective analyze pricing.txt --tool Acme
  pbpaste | pricing-detective analyze - --format markdown
  pricing-detective trial`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .json, .yaml or .hcl (default is $HOME/.pricing-detective/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "analysis service base URL")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(trialCmd)
	rootCmd.AddCommand(deviceIDCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// initApp loads configuration, applies overrides and builds the container.
// Precedence: flags, then environment, then the config file, then defaults.
func initApp(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnv()

	if apiURL != "" {
		cfg.Backend.BaseURL = apiURL
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.Set(cfg)

	// Initialize logging
	if err := logging.Initialize(cfg.Logging); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	logging.Debug("configuration loaded",
		zap.String("path", path),
		zap.String("backend", cfg.Backend.BaseURL))

	app = container.New(cfg, logging.Logger)
	return nil
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Printing the version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pricing-detective version %s\n", config.Version)
	},
}
