package alphas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/signal"
)

func snapshots(sym string, closes ...float64) []market.Snapshot {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]market.Snapshot, len(closes))
	for i, c := range closes {
		snap := market.NewSnapshot(base.Add(time.Duration(i) * time.Hour))
		snap.Bars[market.Symbol(sym)] = market.Bar{
			Time: snap.Time, Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
		out[i] = snap
	}
	return out
}

func drive(t *testing.T, a Model, snaps []market.Snapshot) []signal.Signal {
	t.Helper()
	var all []signal.Signal
	for _, snap := range snaps {
		a.Update(snap)
		sigs, err := a.GenerateSignals()
		require.NoError(t, err)
		all = append(all, sigs...)
	}
	return all
}

func TestEMACrossValidation(t *testing.T) {
	t.Parallel()

	_, err := NewEMACross(0, 10)
	assert.Error(t, err)
	_, err = NewEMACross(10, 10)
	assert.Error(t, err)
	_, err = NewEMACross(10, 5)
	assert.Error(t, err)

	a, err := NewEMACross(3, 6)
	require.NoError(t, err)
	assert.Equal(t, "ema_cross_3_6", a.Name())
}

func TestEMACrossSignalsOnCross(t *testing.T) {
	t.Parallel()

	a, err := NewEMACross(2, 4)
	require.NoError(t, err)

	// Downtrend long enough to warm up and pin fast below slow, then a
	// sharp reversal to force a bull cross.
	closes := []float64{110, 108, 106, 104, 102, 100, 112, 120, 128}
	sigs := drive(t, a, snapshots("SPY", closes...))

	require.NotEmpty(t, sigs)
	first := sigs[0]
	assert.Equal(t, market.Symbol("SPY"), first.Symbol)
	assert.Equal(t, signal.Buy, first.Action)
	assert.Equal(t, "ema_cross_2_4", first.Source)
	assert.GreaterOrEqual(t, first.Confidence.Value(), 0.5)
	assert.LessOrEqual(t, first.Confidence.Value(), 0.95)
}

func TestEMACrossNoSignalWithoutCross(t *testing.T) {
	t.Parallel()

	a, err := NewEMACross(2, 4)
	require.NoError(t, err)

	// A steady uptrend: fast stays above slow after warmup, so at most
	// the initial alignment fires nothing.
	sigs := drive(t, a, snapshots("SPY", 100, 101, 102, 103, 104, 105, 106, 107))
	for _, s := range sigs {
		assert.NotEqual(t, signal.Sell, s.Action)
	}
}

func TestEMACrossSignalsClearEachCycle(t *testing.T) {
	t.Parallel()

	a, err := NewEMACross(2, 4)
	require.NoError(t, err)

	snaps := snapshots("SPY", 110, 108, 106, 104, 102, 100, 112, 120)
	for _, snap := range snaps {
		a.Update(snap)
	}
	sigs, err := a.GenerateSignals()
	require.NoError(t, err)

	// Only the last cycle's crosses survive; a flat cycle clears them.
	flat := snapshots("SPY", 120)
	a.Update(flat[0])
	again, err := a.GenerateSignals()
	require.NoError(t, err)
	if len(sigs) > 0 {
		assert.Empty(t, again)
	}
}

func TestEMACrossReset(t *testing.T) {
	t.Parallel()

	a, err := NewEMACross(2, 4)
	require.NoError(t, err)

	first := drive(t, a, snapshots("SPY", 110, 108, 106, 104, 102, 100, 112, 120, 128))
	a.Reset()
	second := drive(t, a, snapshots("SPY", 110, 108, 106, 104, 102, 100, 112, 120, 128))
	assert.Equal(t, first, second)
}

func TestEMACrossTracksSymbolsIndependently(t *testing.T) {
	t.Parallel()

	a, err := NewEMACross(2, 4)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	up := []float64{110, 108, 106, 104, 102, 100, 112, 120, 128}
	flat := []float64{50, 50, 50, 50, 50, 50, 50, 50, 50}

	var all []signal.Signal
	for i := range up {
		snap := market.NewSnapshot(base.Add(time.Duration(i) * time.Hour))
		snap.Bars["SPY"] = market.Bar{Time: snap.Time, Open: up[i], High: up[i] + 1, Low: up[i] - 1, Close: up[i], Volume: 1}
		snap.Bars["QQQ"] = market.Bar{Time: snap.Time, Open: flat[i], High: flat[i] + 1, Low: flat[i] - 1, Close: flat[i], Volume: 1}
		a.Update(snap)
		sigs, err := a.GenerateSignals()
		require.NoError(t, err)
		all = append(all, sigs...)
	}

	for _, s := range all {
		assert.Equal(t, market.Symbol("SPY"), s.Symbol)
	}
}

func TestMACDAlphaValidation(t *testing.T) {
	t.Parallel()

	_, err := NewMACDAlpha(26, 12, 9)
	assert.Error(t, err)
	_, err = NewMACDAlpha(12, 26, 0)
	assert.Error(t, err)

	a, err := NewMACDAlpha(12, 26, 9)
	require.NoError(t, err)
	assert.Equal(t, "macd_12_26_9", a.Name())
}

func TestMACDAlphaSignalsOnReversal(t *testing.T) {
	t.Parallel()

	a, err := NewMACDAlpha(2, 4, 2)
	require.NoError(t, err)

	// Long downtrend then a hard reversal: histogram swings from
	// negative to positive.
	closes := []float64{130, 128, 126, 124, 122, 120, 118, 116, 130, 140, 150}
	sigs := drive(t, a, snapshots("QQQ", closes...))

	var sawBuy bool
	for _, s := range sigs {
		if s.Action == signal.Buy {
			sawBuy = true
			assert.Equal(t, "macd_2_4_2", s.Source)
			assert.GreaterOrEqual(t, s.Confidence.Value(), 0.5)
			assert.LessOrEqual(t, s.Confidence.Value(), 0.9)
		}
	}
	assert.True(t, sawBuy)
}

func TestMACDAlphaDeterministic(t *testing.T) {
	t.Parallel()

	closes := []float64{130, 128, 126, 124, 122, 120, 118, 116, 130, 140, 150, 145, 138, 130, 122}
	a1, err := NewMACDAlpha(2, 4, 2)
	require.NoError(t, err)
	a2, err := NewMACDAlpha(2, 4, 2)
	require.NoError(t, err)

	assert.Equal(t,
		drive(t, a1, snapshots("QQQ", closes...)),
		drive(t, a2, snapshots("QQQ", closes...)))
}
