package backtest

import (
	"fmt"
	"math"

	"github.com/kestrelquant/kestrel/risk"
	"github.com/kestrelquant/kestrel/signal"
)

// Config is the full parameterization of one run.
type Config struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`

	// CommissionPerTrade is charged per fill in account currency.
	CommissionPerTrade float64 `json:"commission_per_trade" yaml:"commission_per_trade"`

	// SlippagePct is the exit-notional percentage lost to slippage
	// (0.05 means 0.05%).
	SlippagePct float64 `json:"slippage_pct" yaml:"slippage_pct"`

	// DefaultPositionSizePct is the equity fraction allocated per entry.
	DefaultPositionSizePct float64 `json:"default_position_size_pct" yaml:"default_position_size_pct"`

	// UseConfidenceSizing scales the allocation by signal confidence
	// into the 50%..100% band of DefaultPositionSizePct.
	UseConfidenceSizing bool `json:"use_confidence_sizing" yaml:"use_confidence_sizing"`

	// MinConfidence filters aggregated decisions before sizing.
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`

	// DefaultStopLossPct and DefaultTakeProfitPct apply when a decision
	// carries no explicit levels.
	DefaultStopLossPct   float64 `json:"default_stop_loss_pct" yaml:"default_stop_loss_pct"`
	DefaultTakeProfitPct float64 `json:"default_take_profit_pct" yaml:"default_take_profit_pct"`

	AggregationStrategy signal.Strategy `json:"aggregation_strategy" yaml:"aggregation_strategy"`

	Risk risk.Config `json:"risk" yaml:"risk"`
}

// DefaultConfig returns a runnable configuration for the given starting
// capital.
func DefaultConfig(initialCapital float64) Config {
	return Config{
		InitialCapital:         initialCapital,
		CommissionPerTrade:     1.0,
		SlippagePct:            0.05,
		DefaultPositionSizePct: 10.0,
		UseConfidenceSizing:    true,
		MinConfidence:          0.5,
		DefaultStopLossPct:     2.0,
		DefaultTakeProfitPct:   4.0,
		AggregationStrategy:    signal.WeightedAverage,
		Risk:                   risk.DefaultConfig(initialCapital),
	}
}

// Validate rejects configurations that cannot produce a meaningful run.
// These are fatal: a run never starts with a bad config.
func (c Config) Validate() error {
	if c.InitialCapital <= 0 || math.IsNaN(c.InitialCapital) || math.IsInf(c.InitialCapital, 0) {
		return fmt.Errorf("backtest: initial_capital must be positive and finite, got %v", c.InitialCapital)
	}
	for name, v := range map[string]float64{
		"commission_per_trade": c.CommissionPerTrade,
		"slippage_pct":         c.SlippagePct,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("backtest: %s must be non-negative and finite, got %v", name, v)
		}
	}
	if c.DefaultPositionSizePct <= 0 || c.DefaultPositionSizePct > 100 {
		return fmt.Errorf("backtest: default_position_size_pct must be in (0,100], got %v", c.DefaultPositionSizePct)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 || math.IsNaN(c.MinConfidence) {
		return fmt.Errorf("backtest: min_confidence must be in [0,1], got %v", c.MinConfidence)
	}
	if c.DefaultStopLossPct <= 0 || c.DefaultStopLossPct >= 100 {
		return fmt.Errorf("backtest: default_stop_loss_pct must be in (0,100), got %v", c.DefaultStopLossPct)
	}
	if c.DefaultTakeProfitPct <= 0 {
		return fmt.Errorf("backtest: default_take_profit_pct must be positive, got %v", c.DefaultTakeProfitPct)
	}
	return c.Risk.Validate()
}
