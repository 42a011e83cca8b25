package controller

import (
	"goldcast/internal/models"
)

// Event is a user action or a fetch lifecycle step. Reduce is the only
// place state changes.
type Event interface {
	isEvent()
}

// PresetSelected marks a preset active and fills the inputs from it
type PresetSelected struct {
	Days  int
	Range models.DateRange
}

// RangeSubmitted records a manual range that passed validation
type RangeSubmitted struct {
	Range models.DateRange
}

// ValidationFailed records a manual range that was rejected
type ValidationFailed struct {
	StartInput string
	EndInput   string
	Err        *models.ValidationError
}

// FetchStarted is emitted before the request; Reduce assigns its sequence number
type FetchStarted struct{}

// FetchSucceeded carries the response for request Seq
type FetchSucceeded struct {
	Seq      uint64
	Range    models.DateRange
	Response *models.ForecastResponse
	Exports  ExportLinks
}

// FetchFailed carries the error for request Seq
type FetchFailed struct {
	Seq uint64
	Err error
}

// FetchSettled is emitted once per request whatever its outcome
type FetchSettled struct {
	Seq uint64
}

func (PresetSelected) isEvent()   {}
func (RangeSubmitted) isEvent()   {}
func (ValidationFailed) isEvent() {}
func (FetchStarted) isEvent()     {}
func (FetchSucceeded) isEvent()   {}
func (FetchFailed) isEvent()      {}
func (FetchSettled) isEvent()     {}

// Reduce returns the state after e. It never mutates s.
func Reduce(s State, e Event) State {
	s = s.clone()

	switch ev := e.(type) {
	case PresetSelected:
		s.ActivePreset = ev.Days
		s.StartInput = ev.Range.Start.String()
		s.EndInput = ev.Range.End.String()

	case RangeSubmitted:
		s.ActivePreset = 0
		s.StartInput = ev.Range.Start.String()
		s.EndInput = ev.Range.End.String()

	case ValidationFailed:
		s.ActivePreset = 0
		s.StartInput = ev.StartInput
		s.EndInput = ev.EndInput
		s = showError(s, ev.Err)
		// a rejected submit is the newest action; drop anything still in flight
		s.LatestSeq++
		s.RenderedSeq = s.LatestSeq
		if s.InFlight == 0 {
			s.ResultsVisible = true
		}

	case FetchStarted:
		s.LatestSeq++
		s.InFlight++
		s.Loading = true
		s.ResultsVisible = false

	case FetchSucceeded:
		if ev.Seq != s.LatestSeq {
			return s
		}
		s.Err = nil
		s.Fetched = ev.Range
		s.Points = ev.Response.Data
		s.Summary = ev.Response.Summary
		s.Exports = ev.Exports
		s.RenderedSeq = ev.Seq

	case FetchFailed:
		if ev.Seq != s.LatestSeq {
			return s
		}
		s = showError(s, ev.Err)
		s.RenderedSeq = ev.Seq

	case FetchSettled:
		if s.InFlight > 0 {
			s.InFlight--
		}
		if s.InFlight == 0 {
			s.Loading = false
			s.ResultsVisible = true
		}
	}

	return s
}

// showError switches table, summary and chart to the error state together
func showError(s State, err error) State {
	s.Err = err
	s.Points = nil
	s.Summary = models.ForecastSummary{}
	return s
}
