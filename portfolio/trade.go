package portfolio

import (
	"fmt"
	"time"

	"github.com/kestrelquant/kestrel/market"
)

// ExitReason records why a position closed.
type ExitReason int8

const (
	ExitStopLoss ExitReason = iota
	ExitTakeProfit
	ExitSignalReverse
	ExitClose
	ExitEndOfData
)

func (r ExitReason) String() string {
	switch r {
	case ExitStopLoss:
		return "StopLoss"
	case ExitTakeProfit:
		return "TakeProfit"
	case ExitSignalReverse:
		return "SignalReverse"
	case ExitEndOfData:
		return "EndOfData"
	default:
		return "Close"
	}
}

// MarshalText serializes exit reasons as readable strings.
func (r ExitReason) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses the string form produced by MarshalText.
func (r *ExitReason) UnmarshalText(b []byte) error {
	switch string(b) {
	case "StopLoss":
		*r = ExitStopLoss
	case "TakeProfit":
		*r = ExitTakeProfit
	case "SignalReverse":
		*r = ExitSignalReverse
	case "EndOfData":
		*r = ExitEndOfData
	case "Close":
		*r = ExitClose
	default:
		return fmt.Errorf("unknown exit reason %q", b)
	}
	return nil
}

// ClosedTrade is one immutable ledger entry. NetPnL is always
// GrossPnL - Commission - Slippage; the ledger is append-only.
type ClosedTrade struct {
	TradeID         string            `json:"trade_id"`
	Symbol          market.Symbol     `json:"symbol"`
	Quantity        market.Quantity   `json:"quantity"`
	EntryPrice      market.Price      `json:"entry_price"`
	ExitPrice       market.Price      `json:"exit_price"`
	EntryTime       time.Time         `json:"entry_time"`
	ExitTime        time.Time         `json:"exit_time"`
	Commission      float64           `json:"commission"`
	Slippage        float64           `json:"slippage"`
	GrossPnL        float64           `json:"gross_pnl"`
	NetPnL          float64           `json:"net_pnl"`
	ExitReason      ExitReason        `json:"exit_reason"`
	EntryConfidence market.Confidence `json:"entry_confidence"`
}

// Winner reports whether the trade made money after costs.
func (t ClosedTrade) Winner() bool { return t.NetPnL > 0 }
