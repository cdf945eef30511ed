// Package indicators provides streaming technical indicators fed one
// bar at a time. Each indicator declares its warmup length and reports
// Ready once it has seen enough bars to produce a meaningful value.
package indicators

import "github.com/kestrelquant/kestrel/market"

// Streaming is the common protocol for bar-fed indicators.
type Streaming interface {
	// Name identifies the indicator with its parameters, e.g. "EMA(20)".
	Name() string

	// Warmup is how many bars are needed before Value is meaningful.
	Warmup() int

	// Update feeds the next bar.
	Update(b market.Bar)

	// Ready reports whether warmup is complete.
	Ready() bool

	// Value returns the current indicator value, 0 before Ready.
	Value() float64

	// Reset clears all state.
	Reset()
}
