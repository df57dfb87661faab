// Package cli implements the eve-value command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wn7ant/eve-value/pkg/config"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/server/aggregate"
	"github.com/wn7ant/eve-value/pkg/server/catalog"
	"github.com/wn7ant/eve-value/pkg/server/feed"
	"github.com/wn7ant/eve-value/pkg/server/refresh"
	"github.com/wn7ant/eve-value/pkg/server/valuation"

	// Import feeds to register them
	_ "github.com/wn7ant/eve-value/pkg/server/feed/esi"
	_ "github.com/wn7ant/eve-value/pkg/server/feed/fuzzwork"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "eve-value",
	Short: "Track the real-money value of PLEX offers and subscription plans",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads and validates the configuration and initializes the global
// logger. logOutput overrides the configured log destination when not
// empty.
func setup(logOutput string) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	output := cfg.Logging.Output
	if logOutput != "" {
		output = logOutput
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetGlobal(logger)

	return cfg, logger, nil
}

// buildRefresher wires the feed chain, catalog loader and valuation
// engine into a refresher.
func buildRefresher(cfg *config.Config, logger *logging.Logger) (*refresh.Refresher, error) {
	chain, err := feed.BuildChain(cfg.Feeds, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed chain: %w", err)
	}

	policy, err := aggregate.ParsePolicy(cfg.Refresh.Policy)
	if err != nil {
		return nil, err
	}

	return refresh.NewRefresher(refresh.Config{
		Feed:     chain,
		Catalog:  catalog.NewLoader(cfg.Catalog, logger),
		Engine:   valuation.NewEngine(cfg.Valuation.BlockSize, cfg.Valuation.Epsilon, logger),
		Policy:   policy,
		Interval: cfg.Refresh.Interval.ToDuration(),
		Timeout:  cfg.Refresh.Timeout.ToDuration(),
		Logger:   logger,
	}), nil
}
