package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"goldcast/internal/models"
)

// ForecastChartID is the DOM id of the embedded forecast chart
const ForecastChartID = "forecast-chart"

const (
	colorPredicted = "#00c6ff"
	colorBound     = "#ff5722"
	bandStack      = "band"
)

// bandTooltip adds the stacked band height back onto the lower bound so the
// tooltip shows the real upper value
const bandTooltip = `function (params) {
	var lower = 0;
	var out = params.length ? params[0].axisValueLabel : '';
	params.forEach(function (p) {
		var v = Number(p.value);
		if (p.seriesIndex === 0) { lower = v; }
		if (p.seriesIndex === 1) { v = lower + v; }
		out += '<br/>' + p.marker + p.seriesName + ': ' + v.toFixed(2);
	});
	return out;
}`

// ForecastChart builds the three-series line chart: lower bound, upper bound
// stacked on it as a shaded band, then the predicted price with markers.
func (cg *ChartGenerator) ForecastChart(points []models.ForecastPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: cg.labels.Title,
			ChartID:   ForecastChartID,
			Width:     fmt.Sprintf("%dpx", cg.width),
			Height:    fmt.Sprintf("%dpx", cg.height),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "axis",
			Formatter: opts.FuncOpts(bandTooltip),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: cg.labels.DateAxis,
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  cg.labels.PriceAxis,
			Scale: opts.Bool(true),
		}),
	)

	xAxis := make([]string, len(points))
	lower := make([]opts.LineData, len(points))
	band := make([]opts.LineData, len(points))
	predicted := make([]opts.LineData, len(points))

	for i, p := range points {
		xAxis[i] = p.Date.String()
		lower[i] = opts.LineData{Value: round2(p.Lower)}
		band[i] = opts.LineData{Value: round2(p.Upper - p.Lower)}
		predicted[i] = opts.LineData{Value: round2(p.Predicted)}
	}

	dotted := opts.LineStyle{Color: colorBound, Type: "dotted", Width: 1}

	line.SetXAxis(xAxis).
		AddSeries(cg.labels.Lower, lower,
			charts.WithLineChartOpts(opts.LineChart{Stack: bandStack, ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(dotted),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorBound}),
		).
		AddSeries(cg.labels.Upper, band,
			charts.WithLineChartOpts(opts.LineChart{Stack: bandStack, ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(dotted),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorBound}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: colorBound, Opacity: opts.Float(0.1)}),
		).
		AddSeries(cg.labels.Predicted, predicted,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), Symbol: "circle"}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorPredicted, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPredicted}),
		)

	return line
}

// ForecastSnippet renders the chart as an embeddable fragment for the dashboard
func (cg *ChartGenerator) ForecastSnippet(points []models.ForecastPoint) ChartSnippet {
	s := cg.ForecastChart(points).RenderSnippet()
	return newSnippet(ForecastChartID, cg.labels.Title, s.Element, s.Script)
}

// RenderForecastPage writes the chart as a standalone HTML page
func (cg *ChartGenerator) RenderForecastPage(w io.Writer, points []models.ForecastPoint) error {
	var buf bytes.Buffer
	if err := cg.ForecastChart(points).Render(&buf); err != nil {
		return fmt.Errorf("failed to render forecast chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
