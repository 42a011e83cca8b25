package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"goldcast/internal/logger"
	"goldcast/internal/models"
)

const (
	forecastPath = "/api/forecast"

	// maxErrorText caps how much of a non-JSON error body ends up in a ServerError
	maxErrorText = 200
)

// ExportKind selects one of the backend download endpoints
type ExportKind string

const (
	ExportExcel ExportKind = "excel"
	ExportCSV   ExportKind = "csv"
)

// Path returns the backend path serving this export
func (k ExportKind) Path() string {
	switch k {
	case ExportExcel:
		return "/export-excel"
	case ExportCSV:
		return "/export-csv"
	default:
		return ""
	}
}

// Extension is the file suffix of this export
func (k ExportKind) Extension() string {
	switch k {
	case ExportExcel:
		return ".xlsx"
	case ExportCSV:
		return ".csv"
	default:
		return ""
	}
}

// ExportFile is a downloaded export, ready to hand back to the browser
type ExportFile struct {
	ContentType        string
	ContentDisposition string
	Body               []byte
}

// ForecastFetcher talks to the forecast backend. It never retries: a failed
// attempt surfaces as an error and the user triggers the next one.
type ForecastFetcher struct {
	client *resty.Client
	log    *logger.Logger
}

// NewForecastFetcher creates a fetcher for the backend at baseURL.
// A zero timeout leaves request lifetime to the context and transport.
func NewForecastFetcher(baseURL string, timeout time.Duration) *ForecastFetcher {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetRetryCount(0)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &ForecastFetcher{
		client: client,
		log:    logger.Component("fetcher"),
	}
}

// FetchForecast requests the forecast for r.
//
// Errors are *models.TransportError when the backend could not be reached or
// did not answer with JSON, and *models.ServerError when the body says
// status "error" or the HTTP status is not 2xx.
func (f *ForecastFetcher) FetchForecast(ctx context.Context, r models.DateRange) (*models.ForecastResponse, error) {
	started := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParamsFromValues(r.Query()).
		Get(forecastPath)
	if err != nil {
		f.log.Error("forecast request failed", err, logger.Fields{"range": r.String()})
		return nil, &models.TransportError{Err: err}
	}

	var body models.ForecastResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		f.log.Error("forecast response is not JSON", err, logger.Fields{
			"range":  r.String(),
			"status": resp.StatusCode(),
		})
		return nil, &models.TransportError{Err: fmt.Errorf("malformed forecast response (HTTP %d): %w", resp.StatusCode(), err)}
	}

	if body.IsError() || !resp.IsSuccess() {
		f.log.Warn("forecast backend signalled failure", logger.Fields{
			"range":   r.String(),
			"status":  resp.StatusCode(),
			"message": body.Message,
		})
		return nil, &models.ServerError{StatusCode: resp.StatusCode(), Message: body.Message}
	}

	if bad := body.InvalidPoints(); len(bad) > 0 {
		f.log.Warn("forecast points with out-of-order bounds", logger.Fields{
			"range":   r.String(),
			"indexes": bad,
		})
	}

	f.log.Info("forecast fetched", logger.Fields{
		"range":       r.String(),
		"points":      len(body.Data),
		"duration_ms": time.Since(started).Milliseconds(),
	})
	return &body, nil
}

// FetchExport downloads a spreadsheet or CSV export of r from the backend
func (f *ForecastFetcher) FetchExport(ctx context.Context, kind ExportKind, r models.DateRange) (*ExportFile, error) {
	path := kind.Path()
	if path == "" {
		return nil, fmt.Errorf("unknown export kind %q", kind)
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(r.Query()).
		Get(path)
	if err != nil {
		return nil, &models.TransportError{Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &models.ServerError{
			StatusCode: resp.StatusCode(),
			Message:    errorText(resp.Body()),
		}
	}

	f.log.Info("export downloaded", logger.Fields{
		"kind":  string(kind),
		"range": r.String(),
		"bytes": len(resp.Body()),
	})
	return &ExportFile{
		ContentType:        resp.Header().Get("Content-Type"),
		ContentDisposition: resp.Header().Get("Content-Disposition"),
		Body:               resp.Body(),
	}, nil
}

// errorText extracts a message from an error body, JSON or plain text
func errorText(body []byte) string {
	var payload models.ForecastResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorText {
		text = text[:maxErrorText]
	}
	return text
}
