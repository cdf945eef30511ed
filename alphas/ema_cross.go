package alphas

import (
	"fmt"
	"math"

	"github.com/kestrelquant/kestrel/indicators"
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/signal"
)

// EMACross signals on fast/slow EMA crossovers, one indicator pair per
// symbol. A bull cross (fast rising through slow) emits Buy, a bear
// cross emits Sell; no cross, no signal. Confidence grows with the
// separation of the EMAs relative to price.
type EMACross struct {
	fastPeriod int
	slowPeriod int

	state map[market.Symbol]*emaCrossState
	last  map[market.Symbol]float64

	// pending holds the cycle's detected crosses between Update and
	// GenerateSignals.
	pending []signal.Signal
}

type emaCrossState struct {
	fast *indicators.EMA
	slow *indicators.EMA
}

// NewEMACross builds the alpha with the given fast and slow periods.
func NewEMACross(fastPeriod, slowPeriod int) (*EMACross, error) {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil, fmt.Errorf("alphas: ema cross needs 0 < fast < slow, got %d/%d", fastPeriod, slowPeriod)
	}
	return &EMACross{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		state:      make(map[market.Symbol]*emaCrossState),
		last:       make(map[market.Symbol]float64),
	}, nil
}

func (a *EMACross) Name() string {
	return fmt.Sprintf("ema_cross_%d_%d", a.fastPeriod, a.slowPeriod)
}

func (a *EMACross) Reset() {
	a.state = make(map[market.Symbol]*emaCrossState)
	a.last = make(map[market.Symbol]float64)
	a.pending = nil
}

// Update feeds each symbol's bar into its indicator pair. Crosses are
// detected here and held until GenerateSignals drains them.
func (a *EMACross) Update(snap market.Snapshot) {
	a.pending = a.pending[:0]

	for _, sym := range snap.Symbols() {
		bar, _ := snap.Get(sym)

		st, ok := a.state[sym]
		if !ok {
			st = &emaCrossState{
				fast: indicators.NewEMA(a.fastPeriod),
				slow: indicators.NewEMA(a.slowPeriod),
			}
			a.state[sym] = st
		}
		st.fast.Update(bar)
		st.slow.Update(bar)

		if !st.fast.Ready() || !st.slow.Ready() {
			continue
		}
		diff := st.fast.Value() - st.slow.Value()

		prev, seen := a.last[sym]
		a.last[sym] = diff
		if !seen {
			continue
		}

		switch {
		case diff > 0 && prev <= 0:
			a.emit(sym, signal.Buy, diff, bar.Close)
		case diff < 0 && prev >= 0:
			a.emit(sym, signal.Sell, diff, bar.Close)
		}
	}
}

func (a *EMACross) emit(sym market.Symbol, action signal.Action, diff, price float64) {
	conf := crossConfidence(diff, price)
	reason := fmt.Sprintf("fast EMA crossed %s slow EMA (diff %.4f)", crossWord(action), diff)
	s, err := signal.New(sym, action, conf, reason, a.Name())
	if err != nil {
		return
	}
	a.pending = append(a.pending, s)
}

func (a *EMACross) GenerateSignals() ([]signal.Signal, error) {
	out := make([]signal.Signal, len(a.pending))
	copy(out, a.pending)
	return out, nil
}

// crossConfidence maps EMA separation to [0.5, 0.95]: a cross is worth
// at least coin-flip-plus conviction, and strong separation tops out
// below certainty.
func crossConfidence(diff, price float64) float64 {
	if price <= 0 {
		return 0.5
	}
	sep := math.Abs(diff) / price
	return math.Min(0.5+sep*50, 0.95)
}

func crossWord(a signal.Action) string {
	if a == signal.Buy {
		return "above"
	}
	return "below"
}
