package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/kestrelquant/kestrel/backtest"
	"github.com/kestrelquant/kestrel/portfolio"
)

// CSVJournal writes trades and equity to two CSV files. RecordRun is a
// no-op; use SQLite when run summaries matter.
type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

// NewCSV creates both output files and writes their headers.
func NewCSV(tradesPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{
		"trade_id", "run_id", "symbol", "quantity", "entry_price", "exit_price",
		"entry_time", "exit_time", "commission", "slippage", "gross_pnl", "net_pnl",
		"exit_reason", "entry_confidence",
	}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "time", "value"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSVJournal) RecordRun(RunRecord) error { return nil }

func (j *CSVJournal) RecordTrade(runID string, t portfolio.ClosedTrade) error {
	err := j.trades.Write([]string{
		t.TradeID,
		runID,
		t.Symbol.String(),
		strconv.FormatInt(t.Quantity.Value(), 10),
		f(t.EntryPrice.Value()),
		f(t.ExitPrice.Value()),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.Commission),
		f(t.Slippage),
		f(t.GrossPnL),
		f(t.NetPnL),
		t.ExitReason.String(),
		f(t.EntryConfidence.Value()),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(runID string, p backtest.EquityPoint) error {
	err := j.equity.Write([]string{runID, p.Time.Format(time.RFC3339), f(p.Value)})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
