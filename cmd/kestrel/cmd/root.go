package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kestrel",
	Short: "A deterministic backtesting and risk-gated execution engine",
	Long: `Kestrel is a deterministic backtesting engine for short-horizon
trading strategies.

It provides tools for:
  - Backtesting confidence-scored alpha signals against historical bars
  - Multi-layer pre-trade risk checks with attributable rejections
  - Signal aggregation across independent alpha sources
  - Trade journaling to CSV or SQLite
  - Performance metrics with a strategy grade`,
}

var logLevel string

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

// newLogger builds the CLI's console logger honoring --log-level.
func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
