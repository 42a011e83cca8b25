package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"goldcast/internal/fetchers"
	"goldcast/internal/mocks"
	"goldcast/internal/models"
)

// fixed clock: 2026-10-17 21:30 UTC, which is already 2026-10-18 in Cairo
var testNow = time.Date(2026, 10, 17, 21, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// stubFetcher records requests and answers from a func
type stubFetcher struct {
	mu     sync.Mutex
	calls  []models.DateRange
	answer func(r models.DateRange) (*models.ForecastResponse, error)
}

func (f *stubFetcher) FetchForecast(ctx context.Context, r models.DateRange) (*models.ForecastResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, r)
	f.mu.Unlock()
	return f.answer(r)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func onePoint(r models.DateRange) (*models.ForecastResponse, error) {
	return &models.ForecastResponse{
		Status: "success",
		Data: []models.ForecastPoint{
			{Date: r.Start, Predicted: 1805, Lower: 1760, Upper: 1850},
		},
		Summary: models.ForecastSummary{
			AvgPrice: 1805, MaxPrice: 1805, MinPrice: 1805,
			MaxDate: r.Start, MinDate: r.Start,
		},
	}, nil
}

func newTestController(f Fetcher) *Controller {
	return New(f, Options{
		Presets:     []int{7, 30, 60, 90},
		DefaultDays: 30,
		Location:    time.UTC,
		Now:         fixedClock,
	})
}

func TestSetRange(t *testing.T) {
	c := newTestController(&stubFetcher{answer: onePoint})

	for _, days := range []int{1, 7, 30, 60, 90, 365} {
		r := c.SetRange(days)
		if got := r.Start.String(); got != "2026-10-18" {
			t.Errorf("SetRange(%d) start = %s, want 2026-10-18", days, got)
		}
		want := models.NewDate(2026, 10, 17).AddDays(days).String()
		if got := r.End.String(); got != want {
			t.Errorf("SetRange(%d) end = %s, want %s", days, got, want)
		}
		if r.End.Before(r.Start) {
			t.Errorf("SetRange(%d) produced start after end: %s", days, r)
		}
	}
}

func TestSetRangeUsesConfiguredTimezone(t *testing.T) {
	cairo, err := time.LoadLocation("Africa/Cairo")
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	c := New(&stubFetcher{answer: onePoint}, Options{
		Presets:     []int{7},
		DefaultDays: 7,
		Location:    cairo,
		Now:         fixedClock,
	})

	if got := c.SetRange(7).Start.String(); got != "2026-10-19" {
		t.Errorf("Expected Cairo tomorrow 2026-10-19, got %s", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		wantReason models.ValidationReason
	}{
		{"empty start", "", "2026-10-25", models.ReasonEmpty},
		{"empty end", "2026-10-18", "  ", models.ReasonEmpty},
		{"bad format", "18/10/2026", "2026-10-25", models.ReasonFormat},
		{"impossible date", "2026-02-30", "2026-03-05", models.ReasonFormat},
		{"start equals end", "2026-10-20", "2026-10-20", models.ReasonOrder},
		{"start after end", "2026-10-25", "2026-10-20", models.ReasonOrder},
		{"start in the past", "2026-10-16", "2026-10-25", models.ReasonPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{answer: onePoint}
			c := newTestController(f)

			err := c.Submit(context.Background(), tt.start, tt.end)

			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if verr.Reason != tt.wantReason {
				t.Errorf("Expected reason %s, got %s", tt.wantReason, verr.Reason)
			}
			if f.callCount() != 0 {
				t.Errorf("Expected no request, got %d", f.callCount())
			}

			s := c.State()
			if s.Err == nil || s.Points != nil || !s.Summary.IsZero() {
				t.Errorf("Expected error state with cleared results, got %+v", s)
			}
			if s.Loading {
				t.Error("Loading flag should stay down after a validation failure")
			}
			if s.ActivePreset != 0 {
				t.Errorf("Expected no active preset, got %d", s.ActivePreset)
			}
			if s.StartInput != tt.start || s.EndInput != tt.end {
				t.Errorf("Inputs should keep what was typed, got %q %q", s.StartInput, s.EndInput)
			}
		})
	}
}

func TestSubmitTodayIsAllowed(t *testing.T) {
	f := &stubFetcher{answer: onePoint}
	c := newTestController(f)

	if err := c.Submit(context.Background(), "2026-10-17", "2026-10-20"); err != nil {
		t.Fatalf("Expected today as start to pass, got %v", err)
	}
	if f.callCount() != 1 {
		t.Errorf("Expected one request, got %d", f.callCount())
	}
	if s := c.State(); s.ActivePreset != 0 || !s.HasData() {
		t.Errorf("Expected manual range with data, got %+v", s)
	}
}

// Selecting "7 days" against the mock backend over real HTTP
func TestSevenDayPresetScenario(t *testing.T) {
	var gotQuery string
	backend := mocks.NewBackend(models.NewDate(2026, 10, 17))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		backend.ServeHTTP(w, r)
	}))
	defer srv.Close()

	c := New(fetchers.NewForecastFetcher(srv.URL, 0), Options{
		Presets:     []int{7, 30, 60, 90},
		DefaultDays: 30,
		Location:    time.UTC,
		Now:         fixedClock,
		Exports:     ExportLinker{Base: "https://gold.example.com/"},
	})

	if err := c.SelectPreset(context.Background(), 7); err != nil {
		t.Fatalf("SelectPreset failed: %v", err)
	}

	if gotQuery != "end_date=2026-10-24&start_date=2026-10-18" {
		t.Errorf("Unexpected backend query %q", gotQuery)
	}

	s := c.State()
	if s.StartInput != "2026-10-18" || s.EndInput != "2026-10-24" {
		t.Errorf("Unexpected inputs %s..%s", s.StartInput, s.EndInput)
	}
	if s.ActivePreset != 7 {
		t.Errorf("Expected preset 7 active, got %d", s.ActivePreset)
	}
	if len(s.Points) != 7 {
		t.Errorf("Expected 7 points, got %d", len(s.Points))
	}
	if s.Loading || !s.ResultsVisible {
		t.Errorf("Expected loading done and results visible, got loading=%v visible=%v", s.Loading, s.ResultsVisible)
	}

	wantExcel := "https://gold.example.com/export-excel?end_date=2026-10-24&start_date=2026-10-18"
	wantCSV := "https://gold.example.com/export-csv?end_date=2026-10-24&start_date=2026-10-18"
	if s.Exports.Excel != wantExcel {
		t.Errorf("Excel link = %s, want %s", s.Exports.Excel, wantExcel)
	}
	if s.Exports.CSV != wantCSV {
		t.Errorf("CSV link = %s, want %s", s.Exports.CSV, wantCSV)
	}
}

func TestLoadAppliesDefaultPreset(t *testing.T) {
	f := &stubFetcher{answer: onePoint}
	c := newTestController(f)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := c.State()
	if s.ActivePreset != 30 {
		t.Errorf("Expected default preset 30, got %d", s.ActivePreset)
	}
	if s.EndInput != "2026-11-16" {
		t.Errorf("Expected end 2026-11-16, got %s", s.EndInput)
	}
}

func TestLoadOnceFetchesOnce(t *testing.T) {
	release := make(chan struct{})
	f := &stubFetcher{answer: func(r models.DateRange) (*models.ForecastResponse, error) {
		<-release
		return onePoint(r)
	}}
	c := newTestController(f)

	var wg sync.WaitGroup
	var mu sync.Mutex
	loaded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			did, _ := c.LoadOnce(context.Background())
			if did {
				mu.Lock()
				loaded++
				mu.Unlock()
			}
		}()
	}
	close(release)
	wg.Wait()

	if loaded != 1 {
		t.Errorf("Expected exactly one caller to load, got %d", loaded)
	}
	if f.callCount() != 1 {
		t.Errorf("Expected one fetch, got %d", f.callCount())
	}
	if !c.State().HasData() {
		t.Error("Expected the default range to be loaded")
	}
}

func TestLoadOnceSkipsAfterUserAction(t *testing.T) {
	f := &stubFetcher{answer: onePoint}
	c := newTestController(f)

	if err := c.SelectPreset(context.Background(), 7); err != nil {
		t.Fatalf("SelectPreset failed: %v", err)
	}
	did, err := c.LoadOnce(context.Background())
	if did || err != nil {
		t.Errorf("Expected LoadOnce to do nothing after a preset, got %v, %v", did, err)
	}
	if f.callCount() != 1 {
		t.Errorf("Expected only the preset fetch, got %d", f.callCount())
	}
	if c.State().ActivePreset != 7 {
		t.Errorf("Expected the 7-day preset to stay active, got %d", c.State().ActivePreset)
	}
}

func TestResetAfterManualRange(t *testing.T) {
	f := &stubFetcher{answer: onePoint}
	c := newTestController(f)
	ctx := context.Background()

	if err := c.Submit(ctx, "2026-10-20", "2026-10-22"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	s := c.State()
	if s.ActivePreset != 30 || s.StartInput != "2026-10-18" {
		t.Errorf("Expected default preset restored, got preset=%d start=%s", s.ActivePreset, s.StartInput)
	}
	if f.callCount() != 2 {
		t.Errorf("Expected 2 requests, got %d", f.callCount())
	}
}

func TestSelectUnknownPreset(t *testing.T) {
	f := &stubFetcher{answer: onePoint}
	c := newTestController(f)

	if err := c.SelectPreset(context.Background(), 14); err == nil {
		t.Error("Expected error for unconfigured preset")
	}
	if f.callCount() != 0 {
		t.Error("Unknown preset must not fetch")
	}
}

func TestTransportFailureResetsEverything(t *testing.T) {
	fail := false
	f := &stubFetcher{answer: func(r models.DateRange) (*models.ForecastResponse, error) {
		if fail {
			return nil, &models.TransportError{Err: errors.New("connection refused")}
		}
		return onePoint(r)
	}}

	var loadingSeen []bool
	c := New(f, Options{
		Presets:     []int{7, 30},
		DefaultDays: 30,
		Location:    time.UTC,
		Now:         fixedClock,
		OnChange:    func(s State) { loadingSeen = append(loadingSeen, s.Loading) },
	})
	ctx := context.Background()

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	fail = true
	loadingSeen = nil
	err := c.SelectPreset(ctx, 7)

	var terr *models.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}

	s := c.State()
	if !errors.As(s.Err, &terr) {
		t.Errorf("State should carry the transport error, got %v", s.Err)
	}
	if s.Points != nil || !s.Summary.IsZero() {
		t.Error("Table and summary should be cleared together")
	}
	if s.Loading {
		t.Error("Loading indicator must be hidden after a failure")
	}
	if !s.ResultsVisible {
		t.Error("Results region should be visible to show the error")
	}

	// preset applied, fetch started, failed, settled
	want := []bool{false, true, true, false}
	if len(loadingSeen) != len(want) {
		t.Fatalf("Expected %d state changes, got %v", len(want), loadingSeen)
	}
	for i := range want {
		if loadingSeen[i] != want[i] {
			t.Errorf("Loading transitions = %v, want %v", loadingSeen, want)
			break
		}
	}
}

func TestServerErrorKeepsMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"with message", "Start date must be before end date"},
		{"without message", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{answer: func(models.DateRange) (*models.ForecastResponse, error) {
				return nil, &models.ServerError{StatusCode: http.StatusBadRequest, Message: tt.message}
			}}
			c := newTestController(f)

			_ = c.Load(context.Background())

			var serr *models.ServerError
			s := c.State()
			if !errors.As(s.Err, &serr) {
				t.Fatalf("Expected ServerError in state, got %v", s.Err)
			}
			if serr.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, serr.Message)
			}
			if s.HasData() || s.Loading {
				t.Errorf("Unexpected state after server error: %+v", s)
			}
		})
	}
}

func TestEmptyWindow(t *testing.T) {
	f := &stubFetcher{answer: func(models.DateRange) (*models.ForecastResponse, error) {
		return &models.ForecastResponse{Status: "success", Data: []models.ForecastPoint{}}, nil
	}}
	c := newTestController(f)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := c.State()
	if !s.HasData() {
		t.Error("An empty success is still a success")
	}
	if len(s.Points) != 0 || !s.Summary.IsZero() {
		t.Errorf("Expected no points and an empty summary, got %+v", s)
	}
	if s.Exports.IsZero() {
		t.Error("Export links should be set after a successful fetch")
	}
}

// A slow first request must not overwrite a faster second one
func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	f := &stubFetcher{answer: func(r models.DateRange) (*models.ForecastResponse, error) {
		if r.Days() == 30 {
			close(started)
			<-release
		}
		return onePoint(r)
	}}
	c := newTestController(f)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SelectPreset(ctx, 30) }()
	<-started

	if err := c.SelectPreset(ctx, 7); err != nil {
		t.Fatalf("SelectPreset(7) failed: %v", err)
	}

	mid := c.State()
	if !mid.Loading {
		t.Error("Loading should stay up while the 30-day request is in flight")
	}
	if mid.Fetched.End.String() != "2026-10-24" {
		t.Errorf("Expected the 7-day result on screen, got %s", mid.Fetched)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("SelectPreset(30) failed: %v", err)
	}

	s := c.State()
	if s.Fetched.End.String() != "2026-10-24" {
		t.Errorf("Stale 30-day response overwrote the 7-day one: %s", s.Fetched)
	}
	if s.ActivePreset != 7 {
		t.Errorf("Expected preset 7 active, got %d", s.ActivePreset)
	}
	if s.Loading || s.InFlight != 0 {
		t.Errorf("Expected settled state, got loading=%v in_flight=%d", s.Loading, s.InFlight)
	}
}

func TestStateSnapshotIsolated(t *testing.T) {
	c := newTestController(&stubFetcher{answer: onePoint})
	_ = c.Load(context.Background())

	snap := c.State()
	snap.Points[0].Predicted = 0

	if c.State().Points[0].Predicted != 1805 {
		t.Error("Mutating a snapshot changed controller state")
	}
}
