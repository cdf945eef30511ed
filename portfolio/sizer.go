package portfolio

import (
	"math"

	"github.com/kestrelquant/kestrel/market"
)

// Sizer chooses a share count for a prospective entry. Sizing is advice;
// the risk gate still rules on the sized request.
type Sizer interface {
	// Size returns the unsigned share count for the given equity,
	// entry price and signal conviction. Zero means skip the trade.
	Size(equity float64, price market.Price, conf market.Confidence) int64

	// RecordTrade feeds realized P&L back into adaptive sizers.
	RecordTrade(pnl float64)
}

// FixedFractionSizer allocates a fixed percentage of equity, optionally
// scaled by signal confidence into the 50%..100% band of that
// percentage.
type FixedFractionSizer struct {
	PositionPct      float64 // e.g. 10 for 10% of equity
	ConfidenceScaled bool
}

func (s FixedFractionSizer) Size(equity float64, price market.Price, conf market.Confidence) int64 {
	pct := s.PositionPct
	if s.ConfidenceScaled {
		pct *= 0.5 + 0.5*conf.Value()
	}
	value := equity * pct / 100.0
	if value <= 0 || price.Value() <= 0 {
		return 0
	}
	return int64(math.Floor(value / price.Value()))
}

func (FixedFractionSizer) RecordTrade(float64) {}

// KellySizer sizes by a capped fractional Kelly criterion fed from
// realized trade history: f = W - (1-W)/R, where W is the win rate and R
// the win/loss ratio. Until MinTrades results exist it falls back to the
// fixed fraction.
type KellySizer struct {
	// Fraction of full Kelly to use. Half Kelly is the sane default;
	// full Kelly overbets on estimation error.
	KellyFraction float64

	// MaxPositionPct hard-caps the allocation whatever Kelly says.
	MaxPositionPct float64

	// FallbackPct is used before enough history accumulates.
	FallbackPct float64

	// MinTrades is how many results are needed before Kelly engages.
	MinTrades int

	wins      int
	losses    int
	winTotal  float64
	lossTotal float64
}

// NewKellySizer returns a half-Kelly sizer capped at 25% of equity with a
// 10% fallback after 20 observed trades.
func NewKellySizer() *KellySizer {
	return &KellySizer{
		KellyFraction:  0.5,
		MaxPositionPct: 25.0,
		FallbackPct:    10.0,
		MinTrades:      20,
	}
}

func (s *KellySizer) RecordTrade(pnl float64) {
	if pnl > 0 {
		s.wins++
		s.winTotal += pnl
	} else if pnl < 0 {
		s.losses++
		s.lossTotal += -pnl
	}
}

// kellyPct is the capped allocation percentage, or the fallback when
// history is thin or the edge is non-positive.
func (s *KellySizer) kellyPct() float64 {
	total := s.wins + s.losses
	if total < s.MinTrades || s.wins == 0 || s.losses == 0 {
		return s.FallbackPct
	}

	winRate := float64(s.wins) / float64(total)
	avgWin := s.winTotal / float64(s.wins)
	avgLoss := s.lossTotal / float64(s.losses)
	if avgLoss <= 0 {
		return s.FallbackPct
	}

	ratio := avgWin / avgLoss
	kelly := winRate - (1-winRate)/ratio
	if kelly <= 0 {
		// Negative edge: size down hard rather than sitting out, the
		// risk gate handles actual halting.
		return math.Min(s.FallbackPct/2, s.MaxPositionPct)
	}

	pct := kelly * s.KellyFraction * 100.0
	return math.Min(pct, s.MaxPositionPct)
}

func (s *KellySizer) Size(equity float64, price market.Price, conf market.Confidence) int64 {
	value := equity * s.kellyPct() / 100.0
	if value <= 0 || price.Value() <= 0 {
		return 0
	}
	return int64(math.Floor(value / price.Value()))
}
