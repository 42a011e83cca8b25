// Package views turns controller state into what the dashboard shows.
package views

import (
	"github.com/shopspring/decimal"

	"goldcast/internal/i18n"
	"goldcast/internal/models"
)

// TableRow is one forecast day
type TableRow struct {
	Date  string `json:"date"`
	Price string `json:"price"`
}

// TableView is the forecast table body. Placeholder is set instead of rows when there is no data.
type TableView struct {
	Rows        []TableRow `json:"rows"`
	Placeholder string     `json:"placeholder,omitempty"`
	DayCount    int        `json:"day_count"`
}

// RenderTable lists points in input order with the predicted price at 2 decimals
func RenderTable(points []models.ForecastPoint, cat *i18n.Catalog) TableView {
	if len(points) == 0 {
		return TableView{Placeholder: cat.T("table.no_data")}
	}

	rows := make([]TableRow, len(points))
	for i, p := range points {
		rows[i] = TableRow{
			Date:  p.Date.String(),
			Price: decimal.NewFromFloat(p.Predicted).StringFixed(2),
		}
	}
	return TableView{Rows: rows, DayCount: len(rows)}
}
