package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is one OHLCV observation for a single symbol.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate rejects malformed bars: non-finite or non-positive prices,
// inverted high/low, a zero timestamp. Malformed bars are dropped per-bar
// by the data layer, never fed into the engine.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("bar has zero timestamp")
	}
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("bar at %s has non-finite price", b.Time.Format(time.RFC3339))
		}
		if v <= 0 {
			return fmt.Errorf("bar at %s has non-positive price %v", b.Time.Format(time.RFC3339), v)
		}
	}
	if b.High < b.Low {
		return fmt.Errorf("bar at %s has high %v below low %v", b.Time.Format(time.RFC3339), b.High, b.Low)
	}
	if b.Volume < 0 || math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
		return fmt.Errorf("bar at %s has invalid volume %v", b.Time.Format(time.RFC3339), b.Volume)
	}
	return nil
}

// Snapshot is the per-cycle market view: the latest bar for each symbol
// that updated this cycle. Alphas receive copies and must not retain
// references into engine-owned state.
type Snapshot struct {
	Time time.Time
	Bars map[Symbol]Bar
}

// NewSnapshot allocates an empty snapshot for the given cycle time.
func NewSnapshot(t time.Time) Snapshot {
	return Snapshot{Time: t, Bars: make(map[Symbol]Bar)}
}

// Get returns the bar for sym, if the symbol updated this cycle.
func (s Snapshot) Get(sym Symbol) (Bar, bool) {
	b, ok := s.Bars[sym]
	return b, ok
}

// Symbols returns the updated symbols in sorted order. Deterministic
// iteration matters: downstream output must not depend on map order.
func (s Snapshot) Symbols() []Symbol {
	syms := make([]Symbol, 0, len(s.Bars))
	for sym := range s.Bars {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// Clone deep-copies the snapshot so alphas can hold onto it safely.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Time: s.Time, Bars: make(map[Symbol]Bar, len(s.Bars))}
	for sym, b := range s.Bars {
		out.Bars[sym] = b
	}
	return out
}
