package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSymbol(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Symbol
		wantErr bool
	}{
		{"simple", "SPY", "SPY", false},
		{"lowercase_normalized", "aapl", "AAPL", false},
		{"mixed_alnum", "brk2", "BRK2", false},
		{"empty", "", "", true},
		{"too_long", "VERYLONGSYMBOL", "", true},
		{"punctuation", "EUR/USD", "", true},
		{"whitespace", "SP Y", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewSymbol(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      float64
		wantErr bool
	}{
		{"positive", 670.25, false},
		{"tiny", 0.0001, false},
		{"zero", 0, true},
		{"negative", -1.5, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, p.Value())
		})
	}
}

func TestQuantity(t *testing.T) {
	t.Parallel()

	_, err := NewQuantity(0)
	assert.Error(t, err)

	long, err := NewQuantity(10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), long.Abs())
	assert.Equal(t, 1, long.Sign())
	assert.True(t, long.IsLong())

	short, err := NewQuantity(-25)
	require.NoError(t, err)
	assert.Equal(t, int64(25), short.Abs())
	assert.Equal(t, -1, short.Sign())
	assert.False(t, short.IsLong())
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	_, err := NewConfidence(1.01)
	assert.Error(t, err)
	_, err = NewConfidence(-0.01)
	assert.Error(t, err)
	_, err = NewConfidence(math.NaN())
	assert.Error(t, err)

	c, err := NewConfidence(0.85)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, c.Value(), 1e-12)

	assert.InDelta(t, 1.0, ClampConfidence(1.2).Value(), 1e-12)
	assert.InDelta(t, 0.0, ClampConfidence(-3).Value(), 1e-12)
	assert.InDelta(t, 0.0, ClampConfidence(math.NaN()).Value(), 1e-12)
	assert.InDelta(t, 0.45, ClampConfidence(0.45).Value(), 1e-12)
}

func TestBarValidate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	good := Bar{Time: ts, Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000}
	assert.NoError(t, good.Validate())

	tests := []struct {
		name string
		bar  Bar
	}{
		{"zero_time", Bar{Open: 1, High: 1, Low: 1, Close: 1}},
		{"negative_close", Bar{Time: ts, Open: 1, High: 1, Low: 1, Close: -1}},
		{"nan_open", Bar{Time: ts, Open: math.NaN(), High: 1, Low: 1, Close: 1}},
		{"high_below_low", Bar{Time: ts, Open: 100, High: 99, Low: 101, Close: 100}},
		{"negative_volume", Bar{Time: ts, Open: 1, High: 1, Low: 1, Close: 1, Volume: -5}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tt.bar.Validate())
		})
	}
}

func TestSnapshotSymbolsSorted(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	snap := NewSnapshot(ts)
	for _, s := range []string{"QQQ", "AAPL", "SPY", "IWM"} {
		snap.Bars[MustSymbol(s)] = Bar{Time: ts, Open: 1, High: 1, Low: 1, Close: 1}
	}

	assert.Equal(t, []Symbol{"AAPL", "IWM", "QQQ", "SPY"}, snap.Symbols())

	clone := snap.Clone()
	clone.Bars[MustSymbol("TSLA")] = Bar{Time: ts, Open: 1, High: 1, Low: 1, Close: 1}
	assert.Len(t, snap.Bars, 4, "clone must not alias the original")
}
