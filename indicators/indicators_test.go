package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelquant/kestrel/market"
)

func bars(closes ...float64) []market.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

func TestSMAStreaming(t *testing.T) {
	t.Parallel()
	data := bars(102, 105, 106, 108, 110)

	sma := NewSMA(3)
	assert.Equal(t, "SMA(3)", sma.Name())
	assert.Equal(t, 3, sma.Warmup())
	assert.False(t, sma.Ready())
	assert.Equal(t, 0.0, sma.Value())

	sma.Update(data[0])
	sma.Update(data[1])
	assert.False(t, sma.Ready())

	sma.Update(data[2])
	assert.True(t, sma.Ready())
	assert.InDelta(t, (102.0+105.0+106.0)/3.0, sma.Value(), 1e-9)

	// Window slides: oldest bar drops off.
	sma.Update(data[3])
	assert.InDelta(t, (105.0+106.0+108.0)/3.0, sma.Value(), 1e-9)
}

func TestSMAReset(t *testing.T) {
	t.Parallel()

	sma := NewSMA(2)
	for _, b := range bars(100, 101) {
		sma.Update(b)
	}
	assert.True(t, sma.Ready())

	sma.Reset()
	assert.False(t, sma.Ready())
	assert.Equal(t, 0.0, sma.Value())
}

func TestEMAStreaming(t *testing.T) {
	t.Parallel()
	data := bars(102, 105, 106, 108, 110)

	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())
	assert.False(t, ema.Ready())

	ema.Update(data[0])
	ema.Update(data[1])
	assert.False(t, ema.Ready())

	// Seeds with the SMA of the first three closes.
	ema.Update(data[2])
	assert.True(t, ema.Ready())
	seed := (102.0 + 105.0 + 106.0) / 3.0
	assert.InDelta(t, seed, ema.Value(), 1e-9)

	// Then smooths with multiplier 2/(3+1) = 0.5.
	ema.Update(data[3])
	want := (108.0-seed)*0.5 + seed
	assert.InDelta(t, want, ema.Value(), 1e-9)
}

func TestEMAConvergesToConstant(t *testing.T) {
	t.Parallel()

	ema := NewEMA(5)
	for _, b := range bars(50, 50, 50, 50, 50, 50, 50, 50, 50, 50) {
		ema.Update(b)
	}
	assert.InDelta(t, 50.0, ema.Value(), 1e-9)
}

func TestMACD(t *testing.T) {
	t.Parallel()

	macd := NewMACD(3, 6, 3)
	assert.Equal(t, "MACD(3,6,3)", macd.Name())
	assert.Equal(t, 9, macd.Warmup())
	assert.False(t, macd.Ready())
	assert.Equal(t, 0.0, macd.Value())

	// Constant prices: both EMAs equal, line, signal and histogram all
	// stay zero once ready.
	for _, b := range bars(100, 100, 100, 100, 100, 100, 100, 100, 100, 100) {
		macd.Update(b)
	}
	assert.True(t, macd.Ready())
	assert.InDelta(t, 0.0, macd.Line(), 1e-9)
	assert.InDelta(t, 0.0, macd.Signal(), 1e-9)
	assert.InDelta(t, 0.0, macd.Value(), 1e-9)
}

func TestMACDTrendSign(t *testing.T) {
	t.Parallel()

	// A steady uptrend keeps the fast EMA above the slow one.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + 2*float64(i)
	}

	macd := NewMACD(3, 6, 3)
	for _, b := range bars(closes...) {
		macd.Update(b)
	}
	assert.True(t, macd.Ready())
	assert.Greater(t, macd.Line(), 0.0)
}

func TestMACDReset(t *testing.T) {
	t.Parallel()

	macd := NewMACD(2, 4, 2)
	for _, b := range bars(100, 102, 104, 106, 108, 110, 112) {
		macd.Update(b)
	}
	assert.True(t, macd.Ready())

	macd.Reset()
	assert.False(t, macd.Ready())
	assert.Equal(t, 0.0, macd.Value())
}

func TestStreamingInterfaceCompliance(t *testing.T) {
	t.Parallel()

	for _, ind := range []Streaming{NewSMA(5), NewEMA(5), NewMACD(12, 26, 9)} {
		assert.NotEmpty(t, ind.Name())
		assert.Greater(t, ind.Warmup(), 0)
		assert.False(t, ind.Ready())
	}
}
