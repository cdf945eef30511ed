// Package metrics derives performance statistics from an equity curve
// and a closed-trade ledger. Compute is a pure function: same inputs,
// same Summary, no NaN or Inf in any field.
package metrics

import (
	"math"

	"github.com/kestrelquant/kestrel/portfolio"
)

// SortinoCap replaces the mathematically infinite Sortino ratio that
// falls out of a curve with no down periods. A finite sentinel keeps
// summaries serializable and comparable.
const SortinoCap = 100.0

// ProfitFactorCap bounds the profit factor when there are no losing
// trades, for the same reason.
const ProfitFactorCap = 100.0

// Params controls annualization.
type Params struct {
	// RiskFreeRate is the annual risk-free rate, e.g. 0.02 for 2%. It is
	// de-annualized to per-period before computing excess returns.
	RiskFreeRate float64

	// PeriodsPerYear converts per-period statistics to annual ones: 252
	// for daily bars, 252*390 for minute bars.
	PeriodsPerYear float64
}

// DefaultParams assumes daily periods and a 2% risk-free rate.
func DefaultParams() Params {
	return Params{RiskFreeRate: 0.02, PeriodsPerYear: 252}
}

// Summary is the full statistics block for one run.
type Summary struct {
	TotalReturnPct      float64 `json:"total_return_pct"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	SortinoRatio        float64 `json:"sortino_ratio"`
	MaxDrawdownPct      float64 `json:"max_drawdown_pct"`
	CalmarRatio         float64 `json:"calmar_ratio"`
	Periods             int     `json:"periods"`

	Trades TradeStats `json:"trades"`
}

// TradeStats summarizes the closed-trade ledger.
type TradeStats struct {
	Total   int `json:"total"`
	Winners int `json:"winners"`
	Losers  int `json:"losers"`

	WinRatePct   float64 `json:"win_rate_pct"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
	ProfitFactor float64 `json:"profit_factor"`
	Expectancy   float64 `json:"expectancy"`

	AvgHoldHours  float64 `json:"avg_hold_hours"`
	MaxWinStreak  int     `json:"max_win_streak"`
	MaxLossStreak int     `json:"max_loss_streak"`
}

// Compute builds a Summary from the equity curve and ledger. An empty or
// single-point curve yields flat zeros, never a panic.
func Compute(equity []float64, trades []portfolio.ClosedTrade, p Params) Summary {
	s := Summary{Trades: computeTradeStats(trades)}
	if len(equity) < 2 || equity[0] <= 0 {
		return s
	}

	initial := equity[0]
	final := equity[len(equity)-1]
	s.Periods = len(equity) - 1
	s.TotalReturnPct = (final - initial) / initial * 100.0

	returns := periodReturns(equity)

	if p.PeriodsPerYear > 0 && final > 0 {
		years := float64(s.Periods) / p.PeriodsPerYear
		if years > 0 {
			s.AnnualizedReturnPct = (math.Pow(final/initial, 1.0/years) - 1.0) * 100.0
		}
	}

	rfPerPeriod := 0.0
	if p.PeriodsPerYear > 0 {
		rfPerPeriod = p.RiskFreeRate / p.PeriodsPerYear
	}
	s.SharpeRatio = sharpe(returns, rfPerPeriod, p.PeriodsPerYear)
	s.SortinoRatio = sortino(returns, rfPerPeriod, p.PeriodsPerYear)
	s.MaxDrawdownPct = MaxDrawdownPct(equity)

	if math.Abs(s.MaxDrawdownPct) > 0.01 {
		s.CalmarRatio = s.AnnualizedReturnPct / math.Abs(s.MaxDrawdownPct)
	}
	return s
}

// Grade maps (Sharpe, profit factor) onto a letter grade through a fixed
// threshold table.
func (s Summary) Grade() string {
	pf := s.Trades.ProfitFactor
	switch {
	case s.SharpeRatio > 3.0 && pf > 3.0:
		return "A+"
	case s.SharpeRatio > 2.0 && pf > 2.5:
		return "A"
	case s.SharpeRatio > 1.5 && pf > 2.0:
		return "B"
	case s.SharpeRatio > 1.0 && pf > 1.5:
		return "C"
	case s.SharpeRatio > 0.5:
		return "D"
	default:
		return "F"
	}
}

// IsGood is a coarse screen for strategies worth a second look.
func (s Summary) IsGood() bool {
	return s.SharpeRatio > 1.0 &&
		s.MaxDrawdownPct > -20.0 &&
		s.Trades.WinRatePct > 40.0 &&
		s.Trades.ProfitFactor > 1.5
}

// MaxDrawdownPct is the worst peak-to-trough decline as a negative
// percentage; zero for a monotonically rising curve.
func MaxDrawdownPct(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	maxDD := 0.0
	peak := equity[0]
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (v - peak) / peak * 100.0; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func periodReturns(equity []float64) []float64 {
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i]/equity[i-1]-1.0)
	}
	return out
}

func sharpe(returns []float64, rfPerPeriod, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := meanOf(returns)
	sd := stdevOf(returns, mean)
	if sd < 1e-10 || periodsPerYear <= 0 {
		return 0
	}
	return (mean - rfPerPeriod) / sd * math.Sqrt(periodsPerYear)
}

func sortino(returns []float64, rfPerPeriod, periodsPerYear float64) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}
	mean := meanOf(returns)

	var downSq float64
	var n int
	for _, r := range returns {
		if r < 0 {
			downSq += r * r
			n++
		}
	}
	if n == 0 {
		// All periods flat or up. Positive excess return earns the
		// sentinel, otherwise the ratio is meaningless and stays zero.
		if mean-rfPerPeriod > 0 {
			return SortinoCap
		}
		return 0
	}

	downDev := math.Sqrt(downSq / float64(n))
	if downDev < 1e-10 {
		return 0
	}
	return (mean - rfPerPeriod) / downDev * math.Sqrt(periodsPerYear)
}

func computeTradeStats(trades []portfolio.ClosedTrade) TradeStats {
	var ts TradeStats
	if len(trades) == 0 {
		return ts
	}
	ts.Total = len(trades)

	var grossWins, grossLosses, totalPnL, holdHours float64
	var winStreak, lossStreak int
	for _, t := range trades {
		totalPnL += t.NetPnL
		holdHours += t.ExitTime.Sub(t.EntryTime).Hours()

		switch {
		case t.NetPnL > 0:
			ts.Winners++
			grossWins += t.NetPnL
			if t.NetPnL > ts.LargestWin {
				ts.LargestWin = t.NetPnL
			}
			winStreak++
			lossStreak = 0
			if winStreak > ts.MaxWinStreak {
				ts.MaxWinStreak = winStreak
			}
		case t.NetPnL < 0:
			ts.Losers++
			grossLosses += -t.NetPnL
			if t.NetPnL < ts.LargestLoss {
				ts.LargestLoss = t.NetPnL
			}
			lossStreak++
			winStreak = 0
			if lossStreak > ts.MaxLossStreak {
				ts.MaxLossStreak = lossStreak
			}
		default:
			// Break-even trades count toward totals only.
			winStreak, lossStreak = 0, 0
		}
	}

	ts.WinRatePct = float64(ts.Winners) / float64(ts.Total) * 100.0
	if ts.Winners > 0 {
		ts.AvgWin = grossWins / float64(ts.Winners)
	}
	if ts.Losers > 0 {
		ts.AvgLoss = -grossLosses / float64(ts.Losers)
	}
	switch {
	case grossLosses > 0.01:
		ts.ProfitFactor = math.Min(grossWins/grossLosses, ProfitFactorCap)
	case grossWins > 0:
		ts.ProfitFactor = ProfitFactorCap
	}
	ts.Expectancy = totalPnL / float64(ts.Total)
	ts.AvgHoldHours = holdHours / float64(ts.Total)
	return ts
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdevOf is the population standard deviation.
func stdevOf(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}
