// Package backtest drives the bar-by-bar simulation loop: alphas in,
// aggregated decisions through the risk gate, equity out. The core is
// single-threaded and deterministic; only the per-cycle alpha fan-out
// runs concurrently, and its results are merged in a fixed order before
// they can influence anything.
package backtest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kestrelquant/kestrel/alphas"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/metrics"
	"github.com/kestrelquant/kestrel/portfolio"
	"github.com/kestrelquant/kestrel/risk"
	"github.com/kestrelquant/kestrel/signal"
)

// Feed supplies the pre-loaded historical bars for a run. Timestamps
// must be sorted ascending; a symbol missing from a cycle's snapshot
// simply has no update that cycle.
type Feed interface {
	Timestamps() []time.Time
	Snapshot(t time.Time) market.Snapshot
}

// Engine owns all mutable run state (risk state, positions, equity
// curve) for the duration of one Run call. It is not safe for
// concurrent use and is not reusable across runs.
type Engine struct {
	cfg    Config
	models []alphas.Model
	log    zerolog.Logger

	// Sizer may be replaced before Run; the default is a fixed fraction
	// of equity per Config.
	Sizer portfolio.Sizer
}

// NewEngine validates the configuration and builds an engine. An empty
// model list is legal and produces a flat run.
func NewEngine(cfg Config, models []alphas.Model, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		models: models,
		log:    log,
		Sizer: &portfolio.FixedFractionSizer{
			PositionPct:      cfg.DefaultPositionSizePct,
			ConfidenceScaled: cfg.UseConfidenceSizing,
		},
	}, nil
}

// Run executes the full historical range and returns a complete Result.
// There is no mid-run resume: cancelling ctx aborts the run wholesale
// with an error and no Result.
func (e *Engine) Run(ctx context.Context, feed Feed) (*Result, error) {
	if feed == nil {
		return nil, fmt.Errorf("backtest: feed is required")
	}

	rm, err := risk.NewManager(e.cfg.Risk, e.cfg.InitialCapital)
	if err != nil {
		return nil, err
	}
	pm, err := portfolio.NewManager(portfolio.Config{
		CommissionPerTrade:   e.cfg.CommissionPerTrade,
		SlippagePct:          e.cfg.SlippagePct,
		DefaultStopLossPct:   e.cfg.DefaultStopLossPct,
		DefaultTakeProfitPct: e.cfg.DefaultTakeProfitPct,
	}, e.cfg.InitialCapital, rm, e.log)
	if err != nil {
		return nil, err
	}

	timestamps := feed.Timestamps()
	equity := make([]EquityPoint, 0, len(timestamps)+1)
	if len(timestamps) > 0 {
		equity = append(equity, EquityPoint{Time: timestamps[0], Value: e.cfg.InitialCapital})
	}

	var prevDay time.Time
	var recorded, totalSignals, rejected int

	for _, ts := range timestamps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest: run aborted: %w", err)
		}

		snap := feed.Snapshot(ts)

		sigs := e.collectSignals(ctx, snap)
		totalSignals += len(sigs)
		decisions := signal.AggregateAll(e.cfg.AggregationStrategy, sigs)

		pm.MarkToMarket(closePrices(snap))

		if day := ts.UTC().Truncate(24 * time.Hour); !day.Equal(prevDay) {
			if !prevDay.IsZero() {
				rm.ResetDaily()
			}
			prevDay = day
		}

		pm.CheckExits(decisions, ts)

		for _, d := range decisions {
			if d.Action == signal.Hold || d.Confidence.Value() < e.cfg.MinConfidence {
				continue
			}
			bar, ok := snap.Get(d.Symbol)
			if !ok {
				continue
			}
			price := market.Price(bar.Close)
			qty := e.Sizer.Size(pm.PortfolioValue(), price, d.Confidence)
			violation, err := pm.ExecuteSignal(d, qty, price, ts)
			if err != nil {
				return nil, err
			}
			if violation != nil {
				rejected++
			}
		}

		// Feed realized results back into adaptive sizers exactly once
		// per trade, whatever path closed it.
		ledger := pm.Trades()
		for ; recorded < len(ledger); recorded++ {
			e.Sizer.RecordTrade(ledger[recorded].NetPnL)
		}

		equity = append(equity, EquityPoint{Time: ts, Value: pm.PortfolioValue()})
	}

	if len(timestamps) > 0 {
		pm.CloseAll(portfolio.ExitEndOfData, timestamps[len(timestamps)-1])
	}

	result := &Result{
		Config:          e.cfg,
		Trades:          pm.Trades(),
		EquityCurve:     equity,
		TotalSignals:    totalSignals,
		RejectedSignals: rejected,
	}
	if len(timestamps) > 0 {
		result.Start = timestamps[0]
		result.End = timestamps[len(timestamps)-1]
	}
	result.Metrics = metrics.Compute(result.EquityValues(), result.Trades, metrics.DefaultParams())
	result.Grade = result.Metrics.Grade()

	e.log.Info().
		Int("trades", len(result.Trades)).
		Float64("final_value", result.FinalValue()).
		Str("grade", result.Grade).
		Msg("run complete")
	return result, nil
}

// collectSignals fans the snapshot out to every alpha concurrently and
// merges the results deterministically. One alpha failing isolates that
// alpha for the cycle; the run continues.
func (e *Engine) collectSignals(ctx context.Context, snap market.Snapshot) []signal.Signal {
	perModel := make([][]signal.Signal, len(e.models))
	errs := make([]error, len(e.models))

	g, _ := errgroup.WithContext(ctx)
	for i, m := range e.models {
		i, m := i, m
		g.Go(func() error {
			m.Update(snap.Clone())
			sigs, err := m.GenerateSignals()
			if err != nil {
				errs[i] = err
				return nil
			}
			perModel[i] = sigs
			return nil
		})
	}
	_ = g.Wait()

	var flat []signal.Signal
	for i, sigs := range perModel {
		if errs[i] != nil {
			e.log.Warn().
				Str("alpha", e.models[i].Name()).
				Time("cycle", snap.Time).
				Err(errs[i]).
				Msg("alpha failed, skipped for cycle")
			continue
		}
		flat = append(flat, sigs...)
	}

	// Parallel fan-out must never change the outcome: fix the order
	// before aggregation sees it.
	sort.SliceStable(flat, func(i, j int) bool {
		if flat[i].Symbol != flat[j].Symbol {
			return flat[i].Symbol < flat[j].Symbol
		}
		return flat[i].Source < flat[j].Source
	})
	return flat
}

func closePrices(snap market.Snapshot) map[market.Symbol]market.Price {
	out := make(map[market.Symbol]market.Price, len(snap.Bars))
	for sym, bar := range snap.Bars {
		out[sym] = market.Price(bar.Close)
	}
	return out
}
