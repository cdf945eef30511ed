package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelquant/kestrel/market"
)

func sig(t *testing.T, sym string, action Action, conf float64, source string) Signal {
	t.Helper()
	s, err := New(market.MustSymbol(sym), action, conf, "test", source)
	require.NoError(t, err)
	return s
}

func TestWeightedAverage(t *testing.T) {
	t.Parallel()

	t.Run("buy_beats_sell", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(WeightedAverage, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.8, "a1"),
			sig(t, "SPY", Sell, 0.3, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Buy, d.Action)
		// net 0.5 over total 1.1
		assert.InDelta(t, 0.4545, d.Confidence.Value(), 0.001)
	})

	t.Run("net_zero_holds", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(WeightedAverage, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.5, "a1"),
			sig(t, "SPY", Sell, 0.5, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Hold, d.Action)
	})

	t.Run("hold_dilutes_conviction", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(WeightedAverage, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.6, "a1"),
			sig(t, "SPY", Hold, 0.6, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Buy, d.Action)
		assert.InDelta(t, 0.5, d.Confidence.Value(), 1e-9)
	})

	t.Run("sell_majority_weight", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(WeightedAverage, "QQQ", []Signal{
			sig(t, "QQQ", Buy, 0.2, "a1"),
			sig(t, "QQQ", Sell, 0.9, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Sell, d.Action)
		assert.InDelta(t, 0.7/1.1, d.Confidence.Value(), 1e-9)
	})
}

func TestMajorityVote(t *testing.T) {
	t.Parallel()

	t.Run("plurality_wins", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(MajorityVote, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.8, "a1"),
			sig(t, "SPY", Buy, 0.6, "a2"),
			sig(t, "SPY", Sell, 0.9, "a3"),
		})
		require.True(t, ok)
		assert.Equal(t, Buy, d.Action)
		assert.InDelta(t, 0.7, d.Confidence.Value(), 1e-9)
	})

	t.Run("tie_holds", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(MajorityVote, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.8, "a1"),
			sig(t, "SPY", Sell, 0.9, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Hold, d.Action)
	})
}

func TestHighestConfidence(t *testing.T) {
	t.Parallel()

	t.Run("max_wins", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(HighestConfidence, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.6, "a1"),
			sig(t, "SPY", Sell, 0.9, "a2"),
			sig(t, "SPY", Buy, 0.7, "a3"),
		})
		require.True(t, ok)
		assert.Equal(t, Sell, d.Action)
		assert.InDelta(t, 0.9, d.Confidence.Value(), 1e-9)
	})

	t.Run("tie_keeps_input_order", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(HighestConfidence, "SPY", []Signal{
			sig(t, "SPY", Sell, 0.7, "first"),
			sig(t, "SPY", Buy, 0.7, "second"),
		})
		require.True(t, ok)
		assert.Equal(t, Sell, d.Action)
	})
}

func TestUnanimous(t *testing.T) {
	t.Parallel()

	t.Run("agreement_takes_min_confidence", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(Unanimous, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.9, "a1"),
			sig(t, "SPY", Buy, 0.6, "a2"),
			sig(t, "SPY", Buy, 0.8, "a3"),
		})
		require.True(t, ok)
		assert.Equal(t, Buy, d.Action)
		assert.InDelta(t, 0.6, d.Confidence.Value(), 1e-9)
	})

	t.Run("disagreement_holds", func(t *testing.T) {
		t.Parallel()
		d, ok := Aggregate(Unanimous, "SPY", []Signal{
			sig(t, "SPY", Buy, 0.9, "a1"),
			sig(t, "SPY", Sell, 0.8, "a2"),
		})
		require.True(t, ok)
		assert.Equal(t, Hold, d.Action)
	})
}

func TestAggregateEdges(t *testing.T) {
	t.Parallel()

	_, ok := Aggregate(WeightedAverage, "SPY", nil)
	assert.False(t, ok, "zero signals must yield no decision")

	// Levels from a winning-side signal survive aggregation.
	stop := market.MustPrice(98)
	withStop := sig(t, "SPY", Buy, 0.9, "a1").WithStopLoss(stop)
	d, ok := Aggregate(WeightedAverage, "SPY", []Signal{
		withStop,
		sig(t, "SPY", Sell, 0.2, "a2"),
	})
	require.True(t, ok)
	require.NotNil(t, d.StopLoss)
	assert.InDelta(t, 98, d.StopLoss.Value(), 1e-9)
}

func TestAggregateAllSortedBySymbol(t *testing.T) {
	t.Parallel()

	ds := AggregateAll(HighestConfidence, []Signal{
		sig(t, "QQQ", Sell, 0.8, "a1"),
		sig(t, "AAPL", Buy, 0.9, "a1"),
		sig(t, "SPY", Buy, 0.7, "a2"),
	})
	require.Len(t, ds, 3)
	assert.Equal(t, market.Symbol("AAPL"), ds[0].Symbol)
	assert.Equal(t, market.Symbol("QQQ"), ds[1].Symbol)
	assert.Equal(t, market.Symbol("SPY"), ds[2].Symbol)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Strategy{
		"weighted-average":   WeightedAverage,
		"majority":           MajorityVote,
		"highest-confidence": HighestConfidence,
		"unanimous":          Unanimous,
	} {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("quorum")
	assert.Error(t, err)
}
