// Package alphas holds the pluggable signal sources fed by the engine.
// An alpha sees each cycle's market snapshot, keeps whatever state it
// wants across cycles, and emits confidence-scored directional signals.
// Alphas never touch positions or cash; sizing and risk belong to the
// engine side.
package alphas

import (
	"github.com/kestrelquant/kestrel/market"
	"github.com/kestrelquant/kestrel/signal"
)

// Model is the capability an alpha exposes to the engine. Update and
// GenerateSignals are called once per cycle, in that order. An alpha
// must not retain references into engine-owned structures; snapshots
// handed to Update are safe to read during the call only, so stateful
// alphas copy out what they need.
type Model interface {
	// Name identifies the alpha in signal sources and logs.
	Name() string

	// Update feeds the cycle's snapshot.
	Update(snap market.Snapshot)

	// GenerateSignals returns the alpha's opinions for the cycle. An
	// error isolates this alpha for the cycle; it never aborts the run.
	GenerateSignals() ([]signal.Signal, error)

	// Reset clears all state for a fresh run.
	Reset()
}
