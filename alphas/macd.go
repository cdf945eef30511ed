package alphas

import (
	"fmt"
	"math"

	"github.com/kestrelquant/kestrel/indicators"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/signal"
)

// MACDAlpha signals on MACD histogram zero-crossings, one indicator per
// symbol. Histogram turning positive emits Buy, turning negative emits
// Sell. Confidence grows with the size of the swing relative to price.
type MACDAlpha struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	state   map[market.Symbol]*indicators.MACD
	last    map[market.Symbol]float64
	pending []signal.Signal
}

// NewMACDAlpha builds the alpha. The classic parameterization is
// (12, 26, 9).
func NewMACDAlpha(fast, slow, sig int) (*MACDAlpha, error) {
	if fast <= 0 || slow <= fast || sig <= 0 {
		return nil, fmt.Errorf("alphas: macd needs 0 < fast < slow and positive signal, got %d/%d/%d", fast, slow, sig)
	}
	return &MACDAlpha{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: sig,
		state:        make(map[market.Symbol]*indicators.MACD),
		last:         make(map[market.Symbol]float64),
	}, nil
}

func (a *MACDAlpha) Name() string {
	return fmt.Sprintf("macd_%d_%d_%d", a.fastPeriod, a.slowPeriod, a.signalPeriod)
}

func (a *MACDAlpha) Reset() {
	a.state = make(map[market.Symbol]*indicators.MACD)
	a.last = make(map[market.Symbol]float64)
	a.pending = nil
}

func (a *MACDAlpha) Update(snap market.Snapshot) {
	a.pending = a.pending[:0]

	for _, sym := range snap.Symbols() {
		bar, _ := snap.Get(sym)

		ind, ok := a.state[sym]
		if !ok {
			ind = indicators.NewMACD(a.fastPeriod, a.slowPeriod, a.signalPeriod)
			a.state[sym] = ind
		}
		ind.Update(bar)
		if !ind.Ready() {
			continue
		}

		hist := ind.Value()
		prev, seen := a.last[sym]
		a.last[sym] = hist
		if !seen {
			continue
		}

		var action signal.Action
		switch {
		case hist > 0 && prev <= 0:
			action = signal.Buy
		case hist < 0 && prev >= 0:
			action = signal.Sell
		default:
			continue
		}

		conf := histConfidence(hist-prev, bar.Close)
		reason := fmt.Sprintf("MACD histogram crossed zero (%.4f -> %.4f)", prev, hist)
		s, err := signal.New(sym, action, conf, reason, a.Name())
		if err != nil {
			continue
		}
		a.pending = append(a.pending, s)
	}
}

func (a *MACDAlpha) GenerateSignals() ([]signal.Signal, error) {
	out := make([]signal.Signal, len(a.pending))
	copy(out, a.pending)
	return out, nil
}

// histConfidence maps the histogram swing to [0.5, 0.9].
func histConfidence(swing, price float64) float64 {
	if price <= 0 {
		return 0.5
	}
	return math.Min(0.5+math.Abs(swing)/price*100, 0.9)
}
