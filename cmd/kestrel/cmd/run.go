package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelquant/kestrel/alphas"
	"github.com/kestrelquant/kestrel/backtest"
	"github.com/kestrelquant/kestrel/config"
	"github.com/kestrelquant/kestrel/data"
	"github.com/kestrelquant/kestrel/internal/id"
	"github.com/kestrelquant/kestrel/journal"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from a config file",
	Long: `Run loads historical bars, evaluates the configured alphas bar by
bar, routes aggregated decisions through the risk gate and prints the
final report.

Example:
  kestrel run -c kestrel.yaml`,
	RunE: runBacktest,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "kestrel.yaml", "path to config file (YAML or JSON)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	files := make(map[market.Symbol]string, len(cfg.Data.Files))
	for sym, path := range cfg.Data.Files {
		s, err := market.NewSymbol(sym)
		if err != nil {
			return fmt.Errorf("data.files: %w", err)
		}
		files[s] = path
	}
	history, err := data.LoadHistoryCSV(files, log)
	if err != nil {
		return err
	}
	log.Info().Int("timestamps", history.Len()).Msg("history loaded")

	var models []alphas.Model
	if cfg.Alphas.EMACross.Enabled {
		m, err := alphas.NewEMACross(cfg.Alphas.EMACross.FastPeriod, cfg.Alphas.EMACross.SlowPeriod)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	if cfg.Alphas.MACD.Enabled {
		m, err := alphas.NewMACDAlpha(cfg.Alphas.MACD.FastPeriod, cfg.Alphas.MACD.SlowPeriod, cfg.Alphas.MACD.SignalPeriod)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	engine, err := backtest.NewEngine(cfg.Backtest, models, log)
	if err != nil {
		return err
	}

	res, err := engine.Run(cmd.Context(), history)
	if err != nil {
		return err
	}

	if err := persist(cfg.Journal, res); err != nil {
		return err
	}

	fmt.Print(report.Text(res))

	if cfg.Report.ChartFile != "" {
		if err := report.WriteEquityChartFile(res, cfg.Report.ChartFile); err != nil {
			return err
		}
		log.Info().Str("file", cfg.Report.ChartFile).Msg("equity chart written")
	}
	return nil
}

func persist(jc config.JournalConfig, res *backtest.Result) error {
	var j journal.Journal
	var err error
	switch jc.Type {
	case "csv":
		j, err = journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		j, err = journal.NewSQLite(jc.DBPath)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	defer j.Close()

	runID := id.NewGenerator(time.Now().UnixNano()).New(time.Now())
	return journal.WriteResult(j, runID, res)
}
