package mocks

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"goldcast/internal/logger"
	"goldcast/internal/models"
)

const (
	// Horizon is how many days past the anchor the mock forecasts
	Horizon = 90

	bandRatio = 0.025

	excelSheet       = "Forecast"
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var exportHeader = []string{"ds", "yhat", "yhat_lower", "yhat_upper"}

// Backend is a deterministic stand-in for the forecast service. It follows
// the same contract: /api/forecast, /export-csv and /export-excel keyed by
// start_date and end_date.
type Backend struct {
	anchor models.Date
	log    *logger.Logger
}

// NewBackend builds a mock whose series starts the day after anchor
func NewBackend(anchor models.Date) *Backend {
	return &Backend{
		anchor: anchor,
		log:    logger.Component("mock-backend"),
	}
}

// NewBackendFromClock anchors the mock on today's date in loc
func NewBackendFromClock(now func() time.Time, loc *time.Location) *Backend {
	return NewBackend(models.DateOf(now().In(loc)))
}

// ServeHTTP routes the three backend endpoints
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/forecast":
		b.handleForecast(w, r)
	case "/export-csv":
		b.handleExportCSV(w, r)
	case "/export-excel":
		b.handleExportExcel(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Series returns every forecast point the mock knows about, oldest first
func (b *Backend) Series() []models.ForecastPoint {
	points := make([]models.ForecastPoint, 0, Horizon)
	for i := 0; i < Horizon; i++ {
		price := 1800 + float64(i)*5 + 20*float64(i%7)
		spread := round2(price * bandRatio)
		points = append(points, models.ForecastPoint{
			Date:      b.anchor.AddDays(i + 1),
			Predicted: price,
			Lower:     round2(price - spread),
			Upper:     round2(price + spread),
		})
	}
	return points
}

// Window returns the points whose dates fall in r, inclusive
func (b *Backend) Window(r models.DateRange) []models.ForecastPoint {
	var out []models.ForecastPoint
	for _, p := range b.Series() {
		if p.Date.Before(r.Start) || p.Date.After(r.End) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Summarize computes the aggregates the backend reports next to a window
func Summarize(points []models.ForecastPoint) models.ForecastSummary {
	if len(points) == 0 {
		return models.ForecastSummary{}
	}

	maxP, minP := points[0], points[0]
	sum := 0.0
	for _, p := range points {
		sum += p.Predicted
		if p.Predicted > maxP.Predicted {
			maxP = p
		}
		if p.Predicted < minP.Predicted {
			minP = p
		}
	}

	return models.ForecastSummary{
		AvgPrice: round2(sum / float64(len(points))),
		MaxPrice: round2(maxP.Predicted),
		MinPrice: round2(minP.Predicted),
		MaxDate:  maxP.Date,
		MinDate:  minP.Date,
	}
}

func (b *Backend) handleForecast(w http.ResponseWriter, r *http.Request) {
	rng, status, msg := parseRange(r)
	if status != http.StatusOK {
		writeJSON(w, status, models.ForecastResponse{Status: models.StatusError, Message: msg})
		return
	}

	window := b.Window(rng)
	if window == nil {
		window = []models.ForecastPoint{}
	}
	b.log.Debug("mock forecast served", logger.Fields{"range": rng.String(), "points": len(window)})

	// an empty window gets "summary": {} like the real service
	if len(window) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "success",
			"data":    window,
			"summary": map[string]interface{}{},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.ForecastResponse{
		Status:  "success",
		Data:    window,
		Summary: Summarize(window),
	})
}

// exportWindow validates the query and writes the error response itself when
// there is nothing to export
func (b *Backend) exportWindow(w http.ResponseWriter, r *http.Request) (models.DateRange, []models.ForecastPoint, bool) {
	rng, status, msg := parseRange(r)
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return rng, nil, false
	}

	window := b.Window(rng)
	if len(window) == 0 {
		http.Error(w, "no data to export", http.StatusNotFound)
		return rng, nil, false
	}
	return rng, window, true
}

func exportFilename(rng models.DateRange, ext string) string {
	return fmt.Sprintf("gold_forecast_%s_to_%s%s", rng.Start, rng.End, ext)
}

func (b *Backend) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rng, window, ok := b.exportWindow(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(rng, ".csv"))

	cw := csv.NewWriter(w)
	cw.Write(exportHeader)
	for _, p := range window {
		cw.Write([]string{
			p.Date.String(),
			strconv.FormatFloat(p.Predicted, 'f', -1, 64),
			strconv.FormatFloat(p.Lower, 'f', -1, 64),
			strconv.FormatFloat(p.Upper, 'f', -1, 64),
		})
	}
	cw.Flush()
}

func (b *Backend) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	rng, window, ok := b.exportWindow(w, r)
	if !ok {
		return
	}

	book, err := buildWorkbook(window)
	if err != nil {
		b.log.Error("Failed to build workbook", err, logger.Fields{"range": rng.String()})
		http.Error(w, "Error generating export file", http.StatusInternalServerError)
		return
	}
	defer book.Close()

	w.Header().Set("Content-Type", excelContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+exportFilename(rng, ".xlsx"))
	if err := book.Write(w); err != nil {
		b.log.Error("Failed to write workbook", err, logger.Fields{"range": rng.String()})
	}
}

// buildWorkbook lays the window out on one sheet with the CSV columns
func buildWorkbook(window []models.ForecastPoint) (*excelize.File, error) {
	book := excelize.NewFile()
	if err := book.SetSheetName("Sheet1", excelSheet); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := book.SetSheetRow(excelSheet, "A1", &exportHeader); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range window {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			book.Close()
			return nil, err
		}
		row := []interface{}{p.Date.String(), p.Predicted, p.Lower, p.Upper}
		if err := book.SetSheetRow(excelSheet, cell, &row); err != nil {
			book.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return book, nil
}

// parseRange applies the backend's own parameter checks
func parseRange(r *http.Request) (models.DateRange, int, string) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start == "" || end == "" {
		return models.DateRange{}, http.StatusBadRequest, "Missing start_date or end_date parameters"
	}

	startDate, err1 := models.ParseDate(start)
	endDate, err2 := models.ParseDate(end)
	if err1 != nil || err2 != nil {
		return models.DateRange{}, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD"
	}

	if !startDate.Before(endDate) {
		return models.DateRange{}, http.StatusBadRequest, "Start date must be before end date"
	}

	return models.DateRange{Start: startDate, End: endDate}, http.StatusOK, ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
