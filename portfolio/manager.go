package portfolio

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/kestrelquant/kestrel/internal/id"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/risk"
	"github.com/kestrelquant/kestrel/signal"
)

// Config holds the execution cost model and default exit levels.
type Config struct {
	// CommissionPerTrade is charged per fill; a round trip pays it
	// twice.
	CommissionPerTrade float64 `json:"commission_per_trade" yaml:"commission_per_trade"`

	// SlippagePct is the exit-notional percentage charged as slippage
	// cost on every close (0.05 means 0.05%).
	SlippagePct float64 `json:"slippage_pct" yaml:"slippage_pct"`

	// DefaultStopLossPct sets the stop when a decision carries none:
	// 2 means 2% adverse from entry.
	DefaultStopLossPct float64 `json:"default_stop_loss_pct" yaml:"default_stop_loss_pct"`

	// DefaultTakeProfitPct sets the target when a decision carries
	// none. The 4% default keeps the stock 2:1 reward-to-risk shape.
	DefaultTakeProfitPct float64 `json:"default_take_profit_pct" yaml:"default_take_profit_pct"`
}

// DefaultConfig matches the reference cost model: $1 a fill, 5bp
// slippage, 2%/4% exits.
func DefaultConfig() Config {
	return Config{
		CommissionPerTrade:   1.0,
		SlippagePct:          0.05,
		DefaultStopLossPct:   2.0,
		DefaultTakeProfitPct: 4.0,
	}
}

// Validate rejects cost parameters that would corrupt accounting.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"commission_per_trade": c.CommissionPerTrade,
		"slippage_pct":         c.SlippagePct,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("portfolio: %s must be non-negative and finite, got %v", name, v)
		}
	}
	if c.DefaultStopLossPct <= 0 || c.DefaultStopLossPct >= 100 {
		return fmt.Errorf("portfolio: default_stop_loss_pct must be in (0,100), got %v", c.DefaultStopLossPct)
	}
	if c.DefaultTakeProfitPct <= 0 {
		return fmt.Errorf("portfolio: default_take_profit_pct must be positive, got %v", c.DefaultTakeProfitPct)
	}
	return nil
}

// Manager exclusively owns the symbol->position map and the append-only
// closed-trade ledger for one run. Not safe for concurrent use.
type Manager struct {
	cfg  Config
	cash float64

	positions map[market.Symbol]*Position
	trades    []ClosedTrade

	riskMgr *risk.Manager
	ids     *id.Generator
	log     zerolog.Logger
}

// NewManager wires the manager to its risk gate. The logger may be
// zerolog.Nop() for library use.
func NewManager(cfg Config, initialCash float64, rm *risk.Manager, log zerolog.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if initialCash <= 0 || math.IsNaN(initialCash) || math.IsInf(initialCash, 0) {
		return nil, fmt.Errorf("portfolio: initial cash must be positive and finite, got %v", initialCash)
	}
	if rm == nil {
		return nil, fmt.Errorf("portfolio: risk manager is required")
	}
	return &Manager{
		cfg:       cfg,
		cash:      initialCash,
		positions: make(map[market.Symbol]*Position),
		riskMgr:   rm,
		// Fixed seed: trade IDs must be reproducible run-over-run.
		ids: id.NewGenerator(1),
		log: log,
	}, nil
}

// Cash is the free (unreserved) capital.
func (m *Manager) Cash() float64 { return m.cash }

// PositionCount is the number of open positions.
func (m *Manager) PositionCount() int { return len(m.positions) }

// Position returns a copy of the open position for sym, if any.
func (m *Manager) Position(sym market.Symbol) (Position, bool) {
	p, ok := m.positions[sym]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of all open positions, sorted by symbol.
func (m *Manager) Positions() []Position {
	out := make([]Position, 0, len(m.positions))
	for _, sym := range m.openSymbols() {
		out = append(out, *m.positions[sym])
	}
	return out
}

// Trades returns a copy of the ledger in close order.
func (m *Manager) Trades() []ClosedTrade {
	out := make([]ClosedTrade, len(m.trades))
	copy(out, m.trades)
	return out
}

// PortfolioValue is cash plus the mark-to-market value of every open
// position.
func (m *Manager) PortfolioValue() float64 {
	v := m.cash
	for _, p := range m.positions {
		v += p.MarketValue()
	}
	return v
}

// MarkToMarket updates position marks from the cycle's prices and feeds
// the resulting portfolio value to the risk manager. Symbols with no
// price this cycle keep their previous mark.
func (m *Manager) MarkToMarket(prices map[market.Symbol]market.Price) {
	for sym, p := range m.positions {
		if px, ok := prices[sym]; ok {
			p.CurrentPrice = px
		}
	}
	m.riskMgr.UpdatePortfolioValue(m.PortfolioValue())
}

// ExecuteSignal acts on one aggregated decision at the current price.
// qty is the unsigned share count chosen by the sizer; direction comes
// from the decision. A risk rejection is returned as a value, never an
// error: the caller skips the trade and keeps the violation.
func (m *Manager) ExecuteSignal(d signal.Decision, qty int64, price market.Price, now time.Time) (*risk.Violation, error) {
	switch d.Action {
	case signal.Hold:
		return nil, nil

	case signal.Close:
		if _, ok := m.positions[d.Symbol]; ok {
			m.closePosition(d.Symbol, price, ExitClose, now)
		}
		return nil, nil

	case signal.Buy, signal.Sell:
		// One open position per symbol, hard constraint. Reversals go
		// through CheckExits, scaling in is not supported.
		if _, ok := m.positions[d.Symbol]; ok {
			return nil, nil
		}
		if qty <= 0 {
			return nil, nil
		}
		return m.open(d, qty, price, now)

	default:
		return nil, fmt.Errorf("portfolio: unknown action %v for %s", d.Action, d.Symbol)
	}
}

func (m *Manager) open(d signal.Decision, qty int64, price market.Price, now time.Time) (*risk.Violation, error) {
	signedQty := market.Quantity(qty)
	if d.Action == signal.Sell {
		signedQty = -signedQty
	}

	stop := m.stopFor(d, price)
	take := m.takeFor(d, price)

	res := m.riskMgr.Evaluate(risk.Request{
		Symbol:     d.Symbol,
		Quantity:   signedQty,
		EntryPrice: price,
		StopLoss:   stop,
	}, risk.Account{Cash: m.cash, OpenPositions: m.notionals()})

	if !res.Approved {
		m.log.Warn().
			Str("symbol", d.Symbol.String()).
			Str("action", d.Action.String()).
			Int64("quantity", signedQty.Value()).
			Float64("entry_price", price.Value()).
			Float64("stop_loss", stop.Value()).
			Float64("risk_pct", res.RiskPct).
			Str("violation", res.Violation.String()).
			Msg("trade rejected")
		return res.Violation, nil
	}

	pos := &Position{
		Symbol:          d.Symbol,
		Quantity:        signedQty,
		EntryPrice:      price,
		EntryTime:       now,
		StopLoss:        stop,
		TakeProfit:      take,
		EntryConfidence: d.Confidence,
		CurrentPrice:    price,
	}
	m.cash -= pos.EntryNotional()
	m.positions[d.Symbol] = pos

	m.log.Info().
		Str("symbol", d.Symbol.String()).
		Str("action", d.Action.String()).
		Int64("quantity", signedQty.Value()).
		Float64("entry_price", price.Value()).
		Float64("stop_loss", stop.Value()).
		Float64("take_profit", take.Value()).
		Float64("confidence", d.Confidence.Value()).
		Msg("position opened")
	return nil, nil
}

// stopFor takes the decision's stop, else the default percentage on the
// adverse side of entry.
func (m *Manager) stopFor(d signal.Decision, price market.Price) market.Price {
	if d.StopLoss != nil {
		return *d.StopLoss
	}
	pct := m.cfg.DefaultStopLossPct / 100.0
	if d.Action == signal.Sell {
		return market.Price(price.Value() * (1 + pct))
	}
	return market.Price(price.Value() * (1 - pct))
}

func (m *Manager) takeFor(d signal.Decision, price market.Price) market.Price {
	if d.TakeProfit != nil {
		return *d.TakeProfit
	}
	pct := m.cfg.DefaultTakeProfitPct / 100.0
	if d.Action == signal.Sell {
		return market.Price(price.Value() * (1 - pct))
	}
	return market.Price(price.Value() * (1 + pct))
}

// CheckExits walks every open position in symbol order and closes the
// first triggered exit per position: StopLoss, then TakeProfit, then an
// opposing aggregated decision. At most one exit reason per close.
func (m *Manager) CheckExits(decisions []signal.Decision, now time.Time) []ClosedTrade {
	bysym := make(map[market.Symbol]signal.Decision, len(decisions))
	for _, d := range decisions {
		bysym[d.Symbol] = d
	}

	var closed []ClosedTrade
	for _, sym := range m.openSymbols() {
		p := m.positions[sym]

		var reason ExitReason
		switch {
		case p.stopHit():
			reason = ExitStopLoss
		case p.takeHit():
			reason = ExitTakeProfit
		case m.opposes(bysym, p):
			reason = ExitSignalReverse
		default:
			continue
		}

		closed = append(closed, m.closePosition(sym, p.CurrentPrice, reason, now))
	}
	return closed
}

func (m *Manager) opposes(decisions map[market.Symbol]signal.Decision, p *Position) bool {
	d, ok := decisions[p.Symbol]
	if !ok {
		return false
	}
	if p.Quantity.IsLong() {
		return d.Action == signal.Sell
	}
	return d.Action == signal.Buy
}

// CloseAll force-closes every open position at its current mark, in
// symbol order.
func (m *Manager) CloseAll(reason ExitReason, now time.Time) []ClosedTrade {
	var closed []ClosedTrade
	for _, sym := range m.openSymbols() {
		closed = append(closed, m.closePosition(sym, m.positions[sym].CurrentPrice, reason, now))
	}
	return closed
}

func (m *Manager) closePosition(sym market.Symbol, exitPrice market.Price, reason ExitReason, now time.Time) ClosedTrade {
	p := m.positions[sym]
	delete(m.positions, sym)

	gross := (exitPrice.Value() - p.EntryPrice.Value()) * float64(p.Quantity)
	slippage := exitPrice.Value() * float64(p.Quantity.Abs()) * m.cfg.SlippagePct / 100.0
	commission := 2 * m.cfg.CommissionPerTrade
	net := gross - commission - slippage

	// Release the reserved notional plus the realized result.
	m.cash += p.EntryNotional() + net

	trade := ClosedTrade{
		TradeID:         m.ids.New(now),
		Symbol:          sym,
		Quantity:        p.Quantity,
		EntryPrice:      p.EntryPrice,
		ExitPrice:       exitPrice,
		EntryTime:       p.EntryTime,
		ExitTime:        now,
		Commission:      commission,
		Slippage:        slippage,
		GrossPnL:        gross,
		NetPnL:          net,
		ExitReason:      reason,
		EntryConfidence: p.EntryConfidence,
	}
	m.trades = append(m.trades, trade)

	m.riskMgr.RecordTradeResult(net)
	m.riskMgr.UpdatePortfolioValue(m.PortfolioValue())

	m.log.Info().
		Str("symbol", sym.String()).
		Str("trade_id", trade.TradeID).
		Str("exit_reason", reason.String()).
		Float64("exit_price", exitPrice.Value()).
		Float64("gross_pnl", gross).
		Float64("net_pnl", net).
		Msg("position closed")
	return trade
}

// RiskStats snapshots the risk manager's tracked state.
func (m *Manager) RiskStats() risk.Stats { return m.riskMgr.Stats() }

// Healthy reports whether all tracked risk values are within limits.
func (m *Manager) Healthy() bool { return m.riskMgr.Stats().IsHealthy() }

func (m *Manager) openSymbols() []market.Symbol {
	syms := make([]market.Symbol, 0, len(m.positions))
	for sym := range m.positions {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

func (m *Manager) notionals() map[market.Symbol]float64 {
	out := make(map[market.Symbol]float64, len(m.positions))
	for sym, p := range m.positions {
		out[sym] = p.CurrentPrice.Value() * float64(p.Quantity.Abs())
	}
	return out
}
