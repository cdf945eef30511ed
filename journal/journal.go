// Package journal persists completed runs: the trade ledger, the
// equity curve and a one-row run summary. Writing happens once at the
// end of a run; the engine core never blocks on journal I/O.
package journal

import (
	"time"

	"github.com/kestrelquant/kestrel/backtest"
	"github.com/kestrelquant/kestrel/portfolio"
)

// RunRecord is the one-row summary of a completed run.
type RunRecord struct {
	RunID          string
	Start          time.Time
	End            time.Time
	InitialCapital float64
	FinalValue     float64
	TotalTrades    int
	WinRatePct     float64
	SharpeRatio    float64
	MaxDrawdownPct float64
	Grade          string
}

// Journal is the persistence capability for run output.
type Journal interface {
	RecordRun(r RunRecord) error
	RecordTrade(runID string, t portfolio.ClosedTrade) error
	RecordEquity(runID string, p backtest.EquityPoint) error
	Close() error
}

// WriteResult persists a full result under the given run ID: summary
// row first, then every trade and equity point in order.
func WriteResult(j Journal, runID string, res *backtest.Result) error {
	rec := RunRecord{
		RunID:          runID,
		Start:          res.Start,
		End:            res.End,
		InitialCapital: res.Config.InitialCapital,
		FinalValue:     res.FinalValue(),
		TotalTrades:    res.Metrics.Trades.Total,
		WinRatePct:     res.Metrics.Trades.WinRatePct,
		SharpeRatio:    res.Metrics.SharpeRatio,
		MaxDrawdownPct: res.Metrics.MaxDrawdownPct,
		Grade:          res.Grade,
	}
	if err := j.RecordRun(rec); err != nil {
		return err
	}
	for _, t := range res.Trades {
		if err := j.RecordTrade(runID, t); err != nil {
			return err
		}
	}
	for _, p := range res.EquityCurve {
		if err := j.RecordEquity(runID, p); err != nil {
			return err
		}
	}
	return nil
}
