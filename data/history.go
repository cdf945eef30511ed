// Package data loads and indexes historical bars for the engine. All
// I/O happens here, before a run starts; the engine core only ever sees
// pre-materialized snapshots.
package data

import (
	"sort"
	"time"

	"github.com/kestrelquant/kestrel/market"
)

// History is an in-memory, immutable bar store indexed by timestamp.
// It implements the engine's feed: a unified ascending timestamp index
// over all symbols, with per-cycle snapshots containing whichever
// symbols have a bar at that instant.
type History struct {
	index []time.Time
	cells map[int64]map[market.Symbol]market.Bar
}

// NewHistory indexes the given per-symbol series. Bars failing
// validation are dropped individually; the count of dropped bars is
// returned so callers can log it. Input order does not matter.
func NewHistory(series map[market.Symbol][]market.Bar) (*History, int) {
	h := &History{cells: make(map[int64]map[market.Symbol]market.Bar)}
	dropped := 0

	for sym, bars := range series {
		for _, b := range bars {
			if err := b.Validate(); err != nil {
				dropped++
				continue
			}
			key := b.Time.UTC().UnixNano()
			cell, ok := h.cells[key]
			if !ok {
				cell = make(map[market.Symbol]market.Bar)
				h.cells[key] = cell
			}
			cell[sym] = b
		}
	}

	h.index = make([]time.Time, 0, len(h.cells))
	for key := range h.cells {
		h.index = append(h.index, time.Unix(0, key).UTC())
	}
	sort.Slice(h.index, func(i, j int) bool { return h.index[i].Before(h.index[j]) })
	return h, dropped
}

// Timestamps returns the unified ascending index.
func (h *History) Timestamps() []time.Time {
	out := make([]time.Time, len(h.index))
	copy(out, h.index)
	return out
}

// Snapshot returns the cycle view at t: every symbol with a bar at that
// exact instant. Symbols without one are simply absent.
func (h *History) Snapshot(t time.Time) market.Snapshot {
	snap := market.NewSnapshot(t)
	for sym, b := range h.cells[t.UTC().UnixNano()] {
		snap.Bars[sym] = b
	}
	return snap
}

// Symbols lists every symbol present in the history, sorted.
func (h *History) Symbols() []market.Symbol {
	seen := make(map[market.Symbol]bool)
	for _, cell := range h.cells {
		for sym := range cell {
			seen[sym] = true
		}
	}
	out := make([]market.Symbol, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len is the number of distinct timestamps.
func (h *History) Len() int { return len(h.index) }
