package backtest

import (
	"time"

	"github.com/kestrelquant/kestrel/metrics"
	"github.com/kestrelquant/kestrel/portfolio"
)

// EquityPoint is one sample of the portfolio value over time.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Result is the complete, read-only output of one run. Identical inputs
// produce byte-identical serialized results.
type Result struct {
	Config      Config                  `json:"config"`
	Trades      []portfolio.ClosedTrade `json:"trades"`
	EquityCurve []EquityPoint           `json:"equity_curve"`
	Metrics     metrics.Summary         `json:"metrics"`
	Grade       string                  `json:"grade"`

	// TotalSignals counts every alpha signal seen; RejectedSignals
	// counts entries the risk gate refused.
	TotalSignals    int `json:"total_signals"`
	RejectedSignals int `json:"rejected_signals"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// EquityValues extracts the raw value series.
func (r *Result) EquityValues() []float64 {
	out := make([]float64, len(r.EquityCurve))
	for i, p := range r.EquityCurve {
		out[i] = p.Value
	}
	return out
}

// FinalValue is the last portfolio value, or the starting capital for an
// empty curve.
func (r *Result) FinalValue() float64 {
	if len(r.EquityCurve) == 0 {
		return r.Config.InitialCapital
	}
	return r.EquityCurve[len(r.EquityCurve)-1].Value
}
