package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sbp-deeplinks/internal/config"
	"sbp-deeplinks/internal/gateway"
	"sbp-deeplinks/internal/logging"
)

var (
	// Global flags
	configPath   string
	registryPath string
	logLevel     string

	cfg      *config.Config
	logger   *zap.Logger
	registry *gateway.YAMLBankRegistry
)

var rootCmd = &cobra.Command{
	Use:   "deeplinks",
	Short: "SBP bank deep-link generator and harvester",
	Long: `deeplinks turns a payment intent (account, amount, bank) into the ordered
list of URIs that open the bank's mobile app on its payment screen.

The harvest command drives a headless browser against a live payment page
and records every app URI the page tries to open, to keep the bank registry
up to date.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if registryPath != "" {
			cfg.RegistryPath = registryPath
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return err
		}

		registry, err = gateway.LoadBankRegistry(cmd.Context(), cfg.RegistryPath)
		if err != nil {
			return err
		}
		logger.Debug("bank registry loaded",
			zap.String("version", registry.Version()),
			zap.Strings("banks", registry.Codes()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "deeplinks.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Bank registry YAML (default: builtin)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(generateCmd, desktopCmd, banksCmd, harvestCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
