package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledger-bank/internal/config"
	"ledger-bank/internal/logger"
)

const version = "0.3.0"

var (
	// Global flags
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "banksim",
	Short: "banksim - concurrent bank ledger simulator",
	Long: `banksim replays a ledger of bank transactions against a fixed set of
accounts using a pool of concurrent workers.

Every account keeps its own log of attempted operations, and the bank keeps
a running tally of successful and failed transactions.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or text (overrides LOG_FORMAT)")
}

// loadConfig reads the environment and builds the logger, applying the global flags.
func loadConfig() (*config.Config, *logrus.Logger) {
	cfg := config.Load()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.SetOutput(os.Stderr)
	return cfg, log
}
