// Package portfolio owns the open-position map and the closed-trade
// ledger: risk-gated entries, prioritized exits, and the cash accounting
// that keeps portfolio value equal to cash plus mark-to-market.
package portfolio

import (
	"time"

	"github.com/kestrelquant/kestrel/market"
)

// Position is one open holding. It is owned and mutated exclusively by
// the Manager and destroyed on exit.
type Position struct {
	Symbol          market.Symbol     `json:"symbol"`
	Quantity        market.Quantity   `json:"quantity"`
	EntryPrice      market.Price      `json:"entry_price"`
	EntryTime       time.Time         `json:"entry_time"`
	StopLoss        market.Price      `json:"stop_loss"`
	TakeProfit      market.Price      `json:"take_profit"`
	EntryConfidence market.Confidence `json:"entry_confidence"`

	// CurrentPrice is the last observed mark. Symbols with no bar in a
	// cycle simply keep their previous mark.
	CurrentPrice market.Price `json:"current_price"`
}

// UnrealizedPnL is sign-aware: a short profits when price falls.
func (p *Position) UnrealizedPnL() float64 {
	return (p.CurrentPrice.Value() - p.EntryPrice.Value()) * float64(p.Quantity)
}

// EntryNotional is the capital reserved when the position opened.
func (p *Position) EntryNotional() float64 {
	return p.EntryPrice.Value() * float64(p.Quantity.Abs())
}

// MarketValue is the reserved notional plus unrealized P&L, so that
// cash + sum of market values always equals portfolio value, for shorts
// as well as longs.
func (p *Position) MarketValue() float64 {
	return p.EntryNotional() + p.UnrealizedPnL()
}

func (p *Position) stopHit() bool {
	if p.Quantity.IsLong() {
		return p.CurrentPrice <= p.StopLoss
	}
	return p.CurrentPrice >= p.StopLoss
}

func (p *Position) takeHit() bool {
	if p.Quantity.IsLong() {
		return p.CurrentPrice >= p.TakeProfit
	}
	return p.CurrentPrice <= p.TakeProfit
}
