// Package signal defines directional trading signals emitted by alpha
// models and the aggregation strategies that merge them into one decision
// per symbol per cycle.
package signal

import (
	"fmt"

	"github.com/kestrelquant/kestrel/market"
)

// Action is the direction of a signal.
type Action int8

const (
	Hold Action = iota
	Buy
	Sell
	Close
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	case Close:
		return "Close"
	default:
		return "Hold"
	}
}

// MarshalText makes actions serialize as readable strings.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the string form produced by MarshalText.
func (a *Action) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Buy":
		*a = Buy
	case "Sell":
		*a = Sell
	case "Close":
		*a = Close
	case "Hold":
		*a = Hold
	default:
		return fmt.Errorf("unknown action %q", b)
	}
	return nil
}

// sign maps a directional action onto the number line for weighted
// aggregation: Buy pulls positive, Sell negative, Hold and Close are
// directionless.
func (a Action) sign() float64 {
	switch a {
	case Buy:
		return 1
	case Sell:
		return -1
	default:
		return 0
	}
}

// Signal is one alpha's directional opinion on a symbol. Treat as
// immutable once built; the With* helpers return copies.
type Signal struct {
	Symbol     market.Symbol     `json:"symbol"`
	Action     Action            `json:"action"`
	Confidence market.Confidence `json:"confidence"`
	Reason     string            `json:"reason"`
	Source     string            `json:"source"`

	TargetPrice *market.Price    `json:"target_price,omitempty"`
	StopLoss    *market.Price    `json:"stop_loss,omitempty"`
	TakeProfit  *market.Price    `json:"take_profit,omitempty"`
	Quantity    *market.Quantity `json:"quantity,omitempty"`
}

// New builds a validated signal.
func New(sym market.Symbol, action Action, confidence float64, reason, source string) (Signal, error) {
	conf, err := market.NewConfidence(confidence)
	if err != nil {
		return Signal{}, fmt.Errorf("signal from %s for %s: %w", source, sym, err)
	}
	if sym == "" {
		return Signal{}, fmt.Errorf("signal from %s has empty symbol", source)
	}
	return Signal{
		Symbol:     sym,
		Action:     action,
		Confidence: conf,
		Reason:     reason,
		Source:     source,
	}, nil
}

// WithStopLoss returns a copy carrying a stop price.
func (s Signal) WithStopLoss(p market.Price) Signal {
	s.StopLoss = &p
	return s
}

// WithTakeProfit returns a copy carrying a target price.
func (s Signal) WithTakeProfit(p market.Price) Signal {
	s.TakeProfit = &p
	return s
}

// WithTargetPrice returns a copy carrying an expected execution price.
func (s Signal) WithTargetPrice(p market.Price) Signal {
	s.TargetPrice = &p
	return s
}

// WithQuantity returns a copy carrying an explicit size.
func (s Signal) WithQuantity(q market.Quantity) Signal {
	s.Quantity = &q
	return s
}

// Decision is the single per-symbol outcome of aggregating a cycle's
// signals.
type Decision struct {
	Symbol     market.Symbol     `json:"symbol"`
	Action     Action            `json:"action"`
	Confidence market.Confidence `json:"confidence"`
	Reason     string            `json:"reason"`

	StopLoss   *market.Price `json:"stop_loss,omitempty"`
	TakeProfit *market.Price `json:"take_profit,omitempty"`
}
