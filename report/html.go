package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/kestrelquant/kestrel/backtest"
)

// RenderEquityChart writes an interactive HTML page with the run's
// equity curve to w.
func RenderEquityChart(res *backtest.Result, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     types.ThemeWesteros,
			PageTitle: "Backtest Equity Curve",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Equity Curve",
			Subtitle: fmt.Sprintf("return %.2f%%  sharpe %.2f  max drawdown %.2f%%  grade %s",
				res.Metrics.TotalReturnPct, res.Metrics.SharpeRatio,
				res.Metrics.MaxDrawdownPct, res.Grade),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Portfolio Value", Scale: opts.Bool(true)}),
	)

	xAxis := make([]string, len(res.EquityCurve))
	values := make([]opts.LineData, len(res.EquityCurve))
	for i, p := range res.EquityCurve {
		xAxis[i] = p.Time.UTC().Format(time.RFC3339)
		values[i] = opts.LineData{Value: p.Value}
	}

	line.SetXAxis(xAxis)
	line.AddSeries("equity", values,
		charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
	)

	return line.Render(w)
}

// WriteEquityChartFile renders the chart to a file at path.
func WriteEquityChartFile(res *backtest.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderEquityChart(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
