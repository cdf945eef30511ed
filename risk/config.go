// Package risk implements the pre-trade gate and post-trade bookkeeping
// that keep a run from silently burning capital. Every prospective trade
// passes through seven ordered checks; the first failure rejects the
// trade with a specific, value-carrying violation.
package risk

import (
	"fmt"
	"math"

	"github.com/kestrelquant/kestrel/market"
)

// Config holds the risk limits for one run.
type Config struct {
	// MaxOpenPositions caps concurrently open positions.
	MaxOpenPositions int `json:"max_open_positions" yaml:"max_open_positions"`

	// MaxRiskPerTradePct caps |entry-stop|*qty as a percentage of
	// portfolio value.
	MaxRiskPerTradePct float64 `json:"max_risk_per_trade_pct" yaml:"max_risk_per_trade_pct"`

	// MaxCorrelationExposurePct caps the summed notional of a
	// correlation group as a percentage of portfolio value.
	MaxCorrelationExposurePct float64 `json:"max_correlation_exposure_pct" yaml:"max_correlation_exposure_pct"`

	// MaxConsecutiveLosses halts entries after a losing streak.
	MaxConsecutiveLosses int `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`

	// MaxDailyDrawdownPct halts entries once the day's drawdown from
	// day-start value exceeds this percentage.
	MaxDailyDrawdownPct float64 `json:"max_daily_drawdown_pct" yaml:"max_daily_drawdown_pct"`

	// EmergencyStopValue is the absolute portfolio floor; below it
	// nothing trades.
	EmergencyStopValue float64 `json:"emergency_stop_value" yaml:"emergency_stop_value"`

	// CorrelationGroups maps a group name to the symbols that move
	// together for exposure purposes.
	CorrelationGroups map[string][]market.Symbol `json:"correlation_groups,omitempty" yaml:"correlation_groups,omitempty"`
}

// DefaultConfig returns the standard limits for the given starting
// capital: 10 positions, 0.5% risk per trade, 50% group exposure, 3
// straight losses, 5% daily drawdown, emergency stop at half the initial
// capital.
func DefaultConfig(initialCapital float64) Config {
	return Config{
		MaxOpenPositions:          10,
		MaxRiskPerTradePct:        0.5,
		MaxCorrelationExposurePct: 50.0,
		MaxConsecutiveLosses:      3,
		MaxDailyDrawdownPct:       5.0,
		EmergencyStopValue:        initialCapital * 0.5,
		CorrelationGroups:         DefaultCorrelationGroups(),
	}
}

// DefaultCorrelationGroups covers the index ETFs the reference alphas
// trade: the big tech trackers move together, as do the broad-market ones.
func DefaultCorrelationGroups() map[string][]market.Symbol {
	return map[string][]market.Symbol{
		"tech_etf":     {"QQQ", "XLK"},
		"broad_market": {"SPY", "IWM", "DIA"},
	}
}

// Validate rejects limits that would make the gate meaningless.
func (c Config) Validate() error {
	if c.MaxOpenPositions <= 0 {
		return fmt.Errorf("risk: max_open_positions must be positive, got %d", c.MaxOpenPositions)
	}
	if c.MaxRiskPerTradePct <= 0 || math.IsNaN(c.MaxRiskPerTradePct) || math.IsInf(c.MaxRiskPerTradePct, 0) {
		return fmt.Errorf("risk: max_risk_per_trade_pct must be a positive finite percentage, got %v", c.MaxRiskPerTradePct)
	}
	if c.MaxCorrelationExposurePct <= 0 || c.MaxCorrelationExposurePct > 100 {
		return fmt.Errorf("risk: max_correlation_exposure_pct must be in (0,100], got %v", c.MaxCorrelationExposurePct)
	}
	if c.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("risk: max_consecutive_losses must be positive, got %d", c.MaxConsecutiveLosses)
	}
	if c.MaxDailyDrawdownPct <= 0 || c.MaxDailyDrawdownPct > 100 {
		return fmt.Errorf("risk: max_daily_drawdown_pct must be in (0,100], got %v", c.MaxDailyDrawdownPct)
	}
	if c.EmergencyStopValue < 0 || math.IsNaN(c.EmergencyStopValue) || math.IsInf(c.EmergencyStopValue, 0) {
		return fmt.Errorf("risk: emergency_stop_value must be a non-negative finite value, got %v", c.EmergencyStopValue)
	}
	return nil
}
