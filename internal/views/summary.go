package views

import (
	"github.com/shopspring/decimal"

	"goldcast/internal/i18n"
	"goldcast/internal/models"
)

// SummaryView holds the five formatted summary slots
type SummaryView struct {
	Avg     string `json:"avg"`
	Max     string `json:"max"`
	Min     string `json:"min"`
	MaxDate string `json:"max_date"`
	MinDate string `json:"min_date"`
}

// RenderSummary formats money as 2 decimals plus the currency suffix and
// dates as the localized "on <date>". An empty summary renders placeholders.
func RenderSummary(s models.ForecastSummary, cat *i18n.Catalog) SummaryView {
	if s.IsZero() {
		empty := cat.T("summary.empty")
		return SummaryView{Avg: empty, Max: empty, Min: empty, MaxDate: empty, MinDate: empty}
	}

	suffix := cat.T("currency.suffix")
	return SummaryView{
		Avg:     FormatPrice(s.AvgPrice, suffix),
		Max:     FormatPrice(s.MaxPrice, suffix),
		Min:     FormatPrice(s.MinPrice, suffix),
		MaxDate: formatOnDate(s.MaxDate, cat),
		MinDate: formatOnDate(s.MinDate, cat),
	}
}

// FormatPrice rounds half away from zero to 2 decimals and appends suffix
func FormatPrice(v float64, suffix string) string {
	return decimal.NewFromFloat(v).StringFixed(2) + suffix
}

func formatOnDate(d models.Date, cat *i18n.Catalog) string {
	if d.IsZero() {
		return cat.T("summary.empty")
	}
	return cat.T("summary.on_date", d.String())
}
