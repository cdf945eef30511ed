package risk

import (
	"fmt"
	"math"

	"github.com/kestrelquant/kestrel/market"
)

// Request is one prospective trade presented to the gate. Direction is
// encoded in the quantity sign.
type Request struct {
	Symbol     market.Symbol
	Quantity   market.Quantity
	EntryPrice market.Price
	StopLoss   market.Price
}

// Account is the caller's view of capital at evaluation time: free cash
// and the notional value of each open position.
type Account struct {
	Cash          float64
	OpenPositions map[market.Symbol]float64
}

// Manager is the stateful pre-trade gate for one run. It is explicitly
// constructed and injected; there is no ambient shared instance. Not safe
// for concurrent use; the engine core runs single-threaded.
type Manager struct {
	cfg Config

	currentValue      float64
	dayStartValue     float64
	consecutiveLosses int
}

// NewManager builds a gate seeded with the run's starting capital.
func NewManager(cfg Config, initialValue float64) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initialValue <= 0 || math.IsNaN(initialValue) || math.IsInf(initialValue, 0) {
		return nil, fmt.Errorf("risk: initial value must be positive and finite, got %v", initialValue)
	}
	return &Manager{
		cfg:           cfg,
		currentValue:  initialValue,
		dayStartValue: initialValue,
	}, nil
}

// Evaluate runs the seven checks in fixed order and short-circuits on the
// first failure. The order is load-bearing: downstream expectations and
// scenario tests depend on which violation surfaces when several would
// fire.
func (m *Manager) Evaluate(req Request, acct Account) Result {
	notional := float64(req.Quantity.Abs()) * req.EntryPrice.Value()

	// 1. Sufficient capital.
	if notional > acct.Cash {
		return rejected(CodeInsufficientCapital,
			fmt.Sprintf("need $%.2f, have $%.2f", notional, acct.Cash), 0)
	}

	// 2. Position count.
	if len(acct.OpenPositions) >= m.cfg.MaxOpenPositions {
		return rejected(CodeMaxPositionsReached,
			fmt.Sprintf("%d open positions (max %d)", len(acct.OpenPositions), m.cfg.MaxOpenPositions), 0)
	}

	// 3. Per-trade risk.
	riskPct := m.riskPct(req)
	if riskPct > m.cfg.MaxRiskPerTradePct {
		return rejected(CodeExcessiveRisk,
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%", riskPct, m.cfg.MaxRiskPerTradePct), riskPct)
	}

	// 4. Correlation exposure, including the new trade.
	if group, exposurePct, over := m.groupExposure(req.Symbol, notional, acct.OpenPositions); over {
		return rejected(CodeCorrelationExposure,
			fmt.Sprintf("group %q exposure %.2f%% exceeds max %.2f%%", group, exposurePct, m.cfg.MaxCorrelationExposurePct), riskPct)
	}

	// 5. Losing streak.
	if m.consecutiveLosses >= m.cfg.MaxConsecutiveLosses {
		return rejected(CodeConsecutiveLosses,
			fmt.Sprintf("%d consecutive losses (max %d)", m.consecutiveLosses, m.cfg.MaxConsecutiveLosses), riskPct)
	}

	// 6. Daily drawdown.
	if dd := m.CurrentDrawdownPct(); dd > m.cfg.MaxDailyDrawdownPct {
		return rejected(CodeMaxDrawdownReached,
			fmt.Sprintf("daily drawdown %.2f%% exceeds max %.2f%%", dd, m.cfg.MaxDailyDrawdownPct), riskPct)
	}

	// 7. Emergency stop.
	if m.currentValue < m.cfg.EmergencyStopValue {
		return rejected(CodeEmergencyStop,
			fmt.Sprintf("portfolio $%.2f below emergency stop $%.2f", m.currentValue, m.cfg.EmergencyStopValue), riskPct)
	}

	return approved(riskPct)
}

func (m *Manager) riskPct(req Request) float64 {
	if m.currentValue <= 0 {
		return math.Inf(1)
	}
	riskAmount := math.Abs(req.EntryPrice.Value()-req.StopLoss.Value()) * float64(req.Quantity.Abs())
	return riskAmount / m.currentValue * 100.0
}

// groupExposure sums the open notional of the symbol's correlation group
// plus the new trade. Symbols outside every group never trip this check.
func (m *Manager) groupExposure(sym market.Symbol, newNotional float64, open map[market.Symbol]float64) (string, float64, bool) {
	if m.currentValue <= 0 {
		return "", 0, false
	}
	for name, members := range m.cfg.CorrelationGroups {
		inGroup := false
		for _, member := range members {
			if member == sym {
				inGroup = true
				break
			}
		}
		if !inGroup {
			continue
		}

		exposure := newNotional
		for _, member := range members {
			exposure += open[member]
		}
		pct := exposure / m.currentValue * 100.0
		if pct > m.cfg.MaxCorrelationExposurePct {
			return name, pct, true
		}
	}
	return "", 0, false
}

// RecordTradeResult feeds a realized P&L into the loss-streak counter:
// a loss increments it, anything non-negative resets it to zero.
func (m *Manager) RecordTradeResult(pnl float64) {
	if pnl < 0 {
		m.consecutiveLosses++
	} else {
		m.consecutiveLosses = 0
	}
}

// UpdatePortfolioValue feeds the mark-to-market value into subsequent
// checks.
func (m *Manager) UpdatePortfolioValue(v float64) {
	m.currentValue = v
}

// ResetDaily rolls the day boundary: day-start value becomes the current
// value and the loss streak clears. Nothing else is touched.
func (m *Manager) ResetDaily() {
	m.dayStartValue = m.currentValue
	m.consecutiveLosses = 0
}

// CurrentDrawdownPct is the decline from day-start value, in percent.
// Negative when the portfolio is up on the day.
func (m *Manager) CurrentDrawdownPct() float64 {
	if m.dayStartValue <= 0 {
		return 0
	}
	return (m.dayStartValue - m.currentValue) / m.dayStartValue * 100.0
}

// ConsecutiveLosses exposes the streak counter.
func (m *Manager) ConsecutiveLosses() int { return m.consecutiveLosses }

// Stats is a read-only snapshot of the tracked risk state.
type Stats struct {
	CurrentValue         float64 `json:"current_value"`
	DayStartValue        float64 `json:"day_start_value"`
	DailyDrawdownPct     float64 `json:"daily_drawdown_pct"`
	ConsecutiveLosses    int     `json:"consecutive_losses"`
	MaxDailyDrawdownPct  float64 `json:"max_daily_drawdown_pct"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	EmergencyStopValue   float64 `json:"emergency_stop_value"`
}

// Stats snapshots the current risk state.
func (m *Manager) Stats() Stats {
	return Stats{
		CurrentValue:         m.currentValue,
		DayStartValue:        m.dayStartValue,
		DailyDrawdownPct:     m.CurrentDrawdownPct(),
		ConsecutiveLosses:    m.consecutiveLosses,
		MaxDailyDrawdownPct:  m.cfg.MaxDailyDrawdownPct,
		MaxConsecutiveLosses: m.cfg.MaxConsecutiveLosses,
		EmergencyStopValue:   m.cfg.EmergencyStopValue,
	}
}

// IsHealthy reports whether every tracked value is inside its limit.
func (s Stats) IsHealthy() bool {
	return s.DailyDrawdownPct < s.MaxDailyDrawdownPct &&
		s.ConsecutiveLosses < s.MaxConsecutiveLosses &&
		s.CurrentValue >= s.EmergencyStopValue
}
