package controller

import (
	"goldcast/internal/models"
)

// Preset is a range control that sets the range to Days days from tomorrow
type Preset struct {
	Days int `json:"days"`
}

// ExportLinks are the download targets for the last successful fetch
type ExportLinks struct {
	Excel string `json:"excel,omitempty"`
	CSV   string `json:"csv,omitempty"`
}

// IsZero reports whether no successful fetch has produced links yet
func (e ExportLinks) IsZero() bool { return e.Excel == "" && e.CSV == "" }

// State is everything the dashboard shows. Renderers take it by value.
type State struct {
	// StartInput and EndInput are the two date fields as typed or as set by a preset
	StartInput string `json:"start_input"`
	EndInput   string `json:"end_input"`

	// ActivePreset is the day count of the highlighted preset, 0 when the range was entered by hand
	ActivePreset int `json:"active_preset"`

	Loading        bool `json:"loading"`
	ResultsVisible bool `json:"results_visible"`

	// Fetched is the range the points and export links belong to
	Fetched models.DateRange       `json:"fetched"`
	Points  []models.ForecastPoint `json:"points"`
	Summary models.ForecastSummary `json:"summary"`
	Exports ExportLinks            `json:"exports"`

	// Err is non-nil while the results area shows an error; one of
	// *models.ValidationError, *models.TransportError or *models.ServerError
	Err error `json:"-"`

	// LatestSeq is the sequence number of the newest fetch issued,
	// RenderedSeq the one whose outcome is on screen
	LatestSeq   uint64 `json:"latest_seq"`
	RenderedSeq uint64 `json:"rendered_seq"`
	InFlight    int    `json:"in_flight"`
}

// HasData reports whether a successful fetch is on screen
func (s State) HasData() bool {
	return s.Err == nil && s.RenderedSeq > 0
}

// clone copies the slices so callers can't mutate controller-owned state
func (s State) clone() State {
	if s.Points != nil {
		s.Points = append([]models.ForecastPoint(nil), s.Points...)
	}
	return s
}
