package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"goldcast/internal/logger"
	"goldcast/internal/models"
)

// ErrNotEnoughPoints is returned when a PNG is asked for fewer than two points
var ErrNotEnoughPoints = errors.New("at least two forecast points are needed to draw a chart")

var (
	pngPredicted = drawing.ColorFromHex("00c6ff")
	pngBound     = drawing.ColorFromHex("ff5722")
	pngBand      = drawing.Color{R: 255, G: 87, B: 34, A: 26}
	pngCanvas    = drawing.ColorWhite
)

// RenderForecastPNG draws the same three series as ForecastChart. go-chart
// fills a series down to the axis, so the band is the upper fill with the
// lower fill painted over it in the canvas color.
func (cg *ChartGenerator) RenderForecastPNG(w io.Writer, points []models.ForecastPoint) error {
	if len(points) < 2 {
		return ErrNotEnoughPoints
	}

	dates := make([]time.Time, len(points))
	lower := make([]float64, len(points))
	upper := make([]float64, len(points))
	predicted := make([]float64, len(points))

	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		dates[i] = p.Date.Time()
		lower[i] = p.Lower
		upper[i] = p.Upper
		predicted[i] = p.Predicted
		minY = math.Min(minY, math.Min(p.Lower, p.Predicted))
		maxY = math.Max(maxY, math.Max(p.Upper, p.Predicted))
	}
	pad := (maxY - minY) * 0.05
	if pad == 0 {
		pad = 1
	}

	dotted := []float64{2, 3}
	graph := chart.Chart{
		Title:  cg.labels.Title,
		Width:  cg.width,
		Height: cg.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: pngCanvas},
		XAxis: chart.XAxis{
			Name:           cg.labels.DateAxis,
			ValueFormatter: chart.TimeValueFormatterWithFormat(models.DateLayout),
		},
		YAxis: chart.YAxis{
			Name:  cg.labels.PriceAxis,
			Range: &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    cg.labels.Upper,
				XValues: dates,
				YValues: upper,
				Style: chart.Style{
					StrokeColor:     pngBound,
					StrokeWidth:     1,
					StrokeDashArray: dotted,
					FillColor:       pngBand,
				},
			},
			chart.TimeSeries{
				Name:    cg.labels.Lower,
				XValues: dates,
				YValues: lower,
				Style: chart.Style{
					StrokeColor:     pngBound,
					StrokeWidth:     1,
					StrokeDashArray: dotted,
					FillColor:       pngCanvas,
				},
			},
			chart.TimeSeries{
				Name:    cg.labels.Predicted,
				XValues: dates,
				YValues: predicted,
				Style: chart.Style{
					StrokeColor: pngPredicted,
					StrokeWidth: 2,
					DotColor:    pngPredicted,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render forecast PNG: %w", err)
	}
	cg.log.Debug("forecast PNG rendered", logger.Fields{"points": len(points)})
	return nil
}
