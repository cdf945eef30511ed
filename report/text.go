// Package report renders completed run results for humans: a fixed-width
// text summary and an interactive HTML equity chart.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kestrelquant/kestrel/backtest"
	"github.com/kestrelquant/kestrel/portfolio"
)

const (
	heavyRule = "═══════════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────────"
)

// Text renders the full fixed-width report.
func Text(res *backtest.Result) string {
	var b strings.Builder
	m := res.Metrics
	ts := m.Trades

	b.WriteString(heavyRule + "\n")
	b.WriteString("                    BACKTEST REPORT                            \n")
	b.WriteString(heavyRule + "\n\n")

	b.WriteString("PERFORMANCE OVERVIEW\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  Total Return:         %10.2f%%\n", m.TotalReturnPct)
	fmt.Fprintf(&b, "  Annualized Return:    %10.2f%%\n", m.AnnualizedReturnPct)
	fmt.Fprintf(&b, "  Sharpe Ratio:         %10.2f\n", m.SharpeRatio)
	fmt.Fprintf(&b, "  Sortino Ratio:        %10.2f\n", m.SortinoRatio)
	fmt.Fprintf(&b, "  Max Drawdown:         %10.2f%%\n", m.MaxDrawdownPct)
	fmt.Fprintf(&b, "  Calmar Ratio:         %10.2f\n", m.CalmarRatio)
	fmt.Fprintf(&b, "  Strategy Grade:       %10s\n", res.Grade)
	b.WriteString("\n")

	b.WriteString("TRADE STATISTICS\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  Total Trades:         %10d\n", ts.Total)
	fmt.Fprintf(&b, "  Winning Trades:       %10d\n", ts.Winners)
	fmt.Fprintf(&b, "  Losing Trades:        %10d\n", ts.Losers)
	fmt.Fprintf(&b, "  Win Rate:             %10.2f%%\n", ts.WinRatePct)
	fmt.Fprintf(&b, "  Profit Factor:        %10.2f\n", ts.ProfitFactor)
	fmt.Fprintf(&b, "  Expectancy:           %10.2f\n", ts.Expectancy)
	b.WriteString("\n")

	b.WriteString("WIN/LOSS ANALYSIS\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  Average Win:          $%9.2f\n", ts.AvgWin)
	fmt.Fprintf(&b, "  Average Loss:         $%9.2f\n", ts.AvgLoss)
	fmt.Fprintf(&b, "  Largest Win:          $%9.2f\n", ts.LargestWin)
	fmt.Fprintf(&b, "  Largest Loss:         $%9.2f\n", ts.LargestLoss)
	fmt.Fprintf(&b, "  Avg Hold Time:        %10.2fh\n", ts.AvgHoldHours)
	b.WriteString("\n")

	b.WriteString("STREAKS\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  Max Consecutive Wins:  %9d\n", ts.MaxWinStreak)
	fmt.Fprintf(&b, "  Max Consecutive Losses:%9d\n", ts.MaxLossStreak)
	b.WriteString("\n")

	b.WriteString("SIGNAL ANALYSIS\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "  Total Signals:        %10d\n", res.TotalSignals)
	fmt.Fprintf(&b, "  Rejected Entries:     %10d\n", res.RejectedSignals)
	acceptance := 0.0
	if res.TotalSignals > 0 {
		acceptance = float64(res.TotalSignals-res.RejectedSignals) / float64(res.TotalSignals) * 100.0
	}
	fmt.Fprintf(&b, "  Acceptance Rate:      %10.2f%%\n", acceptance)
	b.WriteString("\n")

	b.WriteString("CAPITAL EVOLUTION\n")
	b.WriteString(lightRule + "\n")
	initial := res.Config.InitialCapital
	final := res.FinalValue()
	fmt.Fprintf(&b, "  Initial Capital:      $%9.2f\n", initial)
	fmt.Fprintf(&b, "  Final Capital:        $%9.2f\n", final)
	fmt.Fprintf(&b, "  Profit/Loss:          $%9.2f\n", final-initial)
	b.WriteString("\n")

	writeTopTrades(&b, res.Trades)

	b.WriteString(heavyRule + "\n")
	return b.String()
}

func writeTopTrades(b *strings.Builder, trades []portfolio.ClosedTrade) {
	if len(trades) == 0 {
		return
	}

	winners := make([]portfolio.ClosedTrade, 0, len(trades))
	for _, t := range trades {
		if t.Winner() {
			winners = append(winners, t)
		}
	}
	if len(winners) == 0 {
		return
	}
	sort.SliceStable(winners, func(i, j int) bool { return winners[i].NetPnL > winners[j].NetPnL })

	b.WriteString("TOP 5 WINNING TRADES\n")
	b.WriteString(lightRule + "\n")
	for i, t := range winners {
		if i == 5 {
			break
		}
		side := "BUY "
		if !t.Quantity.IsLong() {
			side = "SELL"
		}
		fmt.Fprintf(b, "  %d. %s %s @ $%.2f → $%.2f = $%.2f\n",
			i+1, t.Symbol, side, t.EntryPrice.Value(), t.ExitPrice.Value(), t.NetPnL)
	}
	b.WriteString("\n")
}
