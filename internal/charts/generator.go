package charts

import (
	"goldcast/internal/i18n"
	"goldcast/internal/logger"
)

// Labels are the localized strings drawn on a chart
type Labels struct {
	Title     string
	DateAxis  string
	PriceAxis string
	Predicted string
	Lower     string
	Upper     string
}

// LabelsFrom reads the chart labels from a catalog
func LabelsFrom(cat *i18n.Catalog) Labels {
	return Labels{
		Title:     cat.T("page.title"),
		DateAxis:  cat.T("chart.axis.date"),
		PriceAxis: cat.T("chart.axis.price"),
		Predicted: cat.T("chart.series.price"),
		Lower:     cat.T("chart.series.lower"),
		Upper:     cat.T("chart.series.upper"),
	}
}

// ChartGenerator builds the forecast chart, interactive and as a PNG
type ChartGenerator struct {
	labels Labels
	width  int
	height int
	log    *logger.Logger
}

// NewChartGenerator creates a chart generator with the default 900x450 size
func NewChartGenerator(labels Labels) *ChartGenerator {
	return &ChartGenerator{
		labels: labels,
		width:  900,
		height: 450,
		log:    logger.Component("charts"),
	}
}

// Labels returns the strings the generator draws with
func (cg *ChartGenerator) Labels() Labels {
	return cg.labels
}
