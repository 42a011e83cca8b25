// Package controller owns the dashboard state for one browser session:
// the range selector, validation, and the forecast fetch lifecycle.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"goldcast/internal/logger"
	"goldcast/internal/models"
)

// Fetcher retrieves the forecast for a range
type Fetcher interface {
	FetchForecast(ctx context.Context, r models.DateRange) (*models.ForecastResponse, error)
}

// Options configures a Controller
type Options struct {
	Presets     []int
	DefaultDays int
	Location    *time.Location
	Now         func() time.Time
	Exports     ExportLinker
	// OnChange, when set, is called with every new state, outside the lock
	OnChange func(State)
}

// Controller applies user actions to one State and runs the fetches they trigger.
// It is safe for concurrent use; fetches for superseded actions are discarded.
type Controller struct {
	mu      sync.Mutex
	state   State
	touched bool // any event applied, or LoadOnce claimed the first load

	fetcher Fetcher
	opts    Options
	log     *logger.Logger
}

// New creates a controller with nothing loaded. Call Load to apply the default preset.
func New(fetcher Fetcher, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if len(opts.Presets) == 0 {
		opts.Presets = []int{opts.DefaultDays}
	}

	return &Controller{
		fetcher: fetcher,
		opts:    opts,
		log:     logger.Component("controller"),
	}
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Presets returns the configured preset controls in display order
func (c *Controller) Presets() []Preset {
	out := make([]Preset, 0, len(c.opts.Presets))
	for _, d := range c.opts.Presets {
		out = append(out, Preset{Days: d})
	}
	return out
}

// Today is the current calendar date in the configured location
func (c *Controller) Today() models.Date {
	return models.DateOf(c.opts.Now().In(c.opts.Location))
}

// SetRange returns tomorrow..today+days. For days >= 1 start <= end holds.
func (c *Controller) SetRange(days int) models.DateRange {
	today := c.Today()
	return models.DateRange{
		Start: today.AddDays(1),
		End:   today.AddDays(days),
	}
}

// Load applies the default preset and fetches; used on a session's first view
func (c *Controller) Load(ctx context.Context) error {
	return c.SelectPreset(ctx, c.opts.DefaultDays)
}

// LoadOnce runs Load only if nothing has happened on this controller yet.
// It reports whether this call did the load; concurrent callers see false.
func (c *Controller) LoadOnce(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.touched {
		c.mu.Unlock()
		return false, nil
	}
	c.touched = true
	c.mu.Unlock()

	return true, c.Load(ctx)
}

// Reset re-applies the default preset, marks it active and re-fetches
func (c *Controller) Reset(ctx context.Context) error {
	c.log.Info("range reset to default", logger.Fields{"days": c.opts.DefaultDays})
	return c.SelectPreset(ctx, c.opts.DefaultDays)
}

// SelectPreset activates the preset for days, sets the range from it and fetches
func (c *Controller) SelectPreset(ctx context.Context, days int) error {
	if !c.IsPreset(days) {
		return fmt.Errorf("unknown preset: %d days", days)
	}

	r := c.SetRange(days)
	c.apply(PresetSelected{Days: days, Range: r})
	return c.fetch(ctx, r)
}

// Submit validates a manually entered range and fetches it. A
// *models.ValidationError means nothing was sent.
func (c *Controller) Submit(ctx context.Context, startInput, endInput string) error {
	r, verr := c.Validate(startInput, endInput)
	if verr != nil {
		c.log.Info("manual range rejected", logger.Fields{
			"start":  startInput,
			"end":    endInput,
			"reason": string(verr.Reason),
		})
		c.apply(ValidationFailed{StartInput: startInput, EndInput: endInput, Err: verr})
		return verr
	}

	c.apply(RangeSubmitted{Range: r})
	return c.fetch(ctx, r)
}

// Validate checks a manual range against today's date
func (c *Controller) Validate(startInput, endInput string) (models.DateRange, *models.ValidationError) {
	startInput = strings.TrimSpace(startInput)
	endInput = strings.TrimSpace(endInput)

	if startInput == "" {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonEmpty, Field: "start_date"}
	}
	if endInput == "" {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonEmpty, Field: "end_date"}
	}

	start, err := models.ParseDate(startInput)
	if err != nil {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonFormat, Field: "start_date"}
	}
	end, err := models.ParseDate(endInput)
	if err != nil {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonFormat, Field: "end_date"}
	}

	if !start.Before(end) {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonOrder}
	}
	if start.Before(c.Today()) {
		return models.DateRange{}, &models.ValidationError{Reason: models.ReasonPast, Field: "start_date"}
	}

	return models.DateRange{Start: start, End: end}, nil
}

// fetch runs one request. FetchSettled is applied on every path.
func (c *Controller) fetch(ctx context.Context, r models.DateRange) error {
	seq := c.apply(FetchStarted{}).LatestSeq
	defer func() {
		c.apply(FetchSettled{Seq: seq})
	}()

	resp, err := c.fetcher.FetchForecast(ctx, r)
	if err != nil {
		after := c.apply(FetchFailed{Seq: seq, Err: err})
		c.logOutcome(seq, after, r, err)
		return err
	}

	after := c.apply(FetchSucceeded{
		Seq:      seq,
		Range:    r,
		Response: resp,
		Exports:  c.opts.Exports.Links(r),
	})
	c.logOutcome(seq, after, r, nil)
	return nil
}

func (c *Controller) logOutcome(seq uint64, after State, r models.DateRange, err error) {
	fields := logger.Fields{"seq": seq, "range": r.String()}
	if after.LatestSeq != seq {
		fields["latest_seq"] = after.LatestSeq
		c.log.Info("discarding superseded forecast result", fields)
		return
	}

	var serverErr *models.ServerError
	switch {
	case err == nil:
		fields["points"] = len(after.Points)
		c.log.Debug("forecast rendered", fields)
	case errors.As(err, &serverErr):
		c.log.Warn("forecast backend returned an error", fields)
	default:
		c.log.Error("forecast fetch failed", err, fields)
	}
}

// apply reduces e into the state and returns the new state
func (c *Controller) apply(e Event) State {
	c.mu.Lock()
	c.touched = true
	c.state = Reduce(c.state, e)
	next := c.state.clone()
	c.mu.Unlock()

	if c.opts.OnChange != nil {
		c.opts.OnChange(next)
	}
	return next
}

// IsPreset reports whether days is one of the configured presets
func (c *Controller) IsPreset(days int) bool {
	for _, d := range c.opts.Presets {
		if d == days {
			return true
		}
	}
	return false
}
