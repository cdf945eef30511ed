package indicators

import (
	"fmt"

	"github.com/kestrelquant/kestrel/market"
)

// MACD is a streaming moving average convergence/divergence indicator:
// the difference of a fast and slow EMA, with a signal EMA over that
// difference. Value returns the histogram (MACD line minus signal line),
// which crosses zero exactly when the lines cross.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
}

// NewMACD builds a MACD with the given fast, slow and signal periods.
// The classic parameterization is (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slow.period, m.signal.period)
}

// Warmup is the slow period plus the signal period: the signal EMA only
// starts filling once the slow EMA produces values.
func (m *MACD) Warmup() int { return m.slow.period + m.signal.period }

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
}

func (m *MACD) Update(b market.Bar) {
	m.fast.Update(b)
	m.slow.Update(b)
	if m.fast.Ready() && m.slow.Ready() {
		m.signal.updateValue(m.fast.Value() - m.slow.Value())
	}
}

func (m *MACD) Ready() bool { return m.signal.Ready() }

// Line is the raw MACD line (fast EMA minus slow EMA), 0 before Ready.
func (m *MACD) Line() float64 {
	if !m.fast.Ready() || !m.slow.Ready() {
		return 0
	}
	return m.fast.Value() - m.slow.Value()
}

// Signal is the signal line, 0 before Ready.
func (m *MACD) Signal() float64 { return m.signal.Value() }

// Value is the histogram: MACD line minus signal line.
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.Line() - m.Signal()
}
