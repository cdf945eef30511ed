package indicators

import (
	"fmt"

	"github.com/kestrelquant/kestrel/market"
)

// SMA is a streaming simple moving average over closing prices.
type SMA struct {
	period int
	window []float64
}

// NewSMA builds a simple moving average with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		window: make([]float64, 0, period),
	}
}

func (s *SMA) Name() string { return fmt.Sprintf("SMA(%d)", s.period) }

func (s *SMA) Warmup() int { return s.period }

func (s *SMA) Reset() { s.window = s.window[:0] }

func (s *SMA) Update(b market.Bar) {
	s.window = append(s.window, b.Close)
	if len(s.window) > s.period {
		s.window = s.window[1:]
	}
}

func (s *SMA) Ready() bool { return len(s.window) >= s.period }

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range s.window {
		sum += v
	}
	return sum / float64(len(s.window))
}

// EMA is a streaming exponential moving average over closing prices. It
// seeds with the SMA of the first period bars, then applies the
// standard 2/(period+1) smoothing.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

// NewEMA builds an exponential moving average with the given period.
func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

func (e *EMA) Warmup() int { return e.period }

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(b market.Bar) {
	e.updateValue(b.Close)
}

func (e *EMA) updateValue(v float64) {
	if e.count < e.period {
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (v-e.ema)*e.multiplier + e.ema
}

func (e *EMA) Ready() bool { return e.count >= e.period }

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}
