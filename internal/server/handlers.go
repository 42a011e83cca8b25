package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"goldcast/internal/charts"
	"goldcast/internal/fetchers"
	"goldcast/internal/logger"
	"goldcast/internal/models"
)

// HandleRoot serves the dashboard. A session's first view runs the default preset.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	ctrl := s.Sessions.Resolve(w, r)

	// the outcome, error or not, is in the state
	_, _ = ctrl.LoadOnce(r.Context())

	w.Header().Set("Content-Type", GetContentType(".html"))
	if err := s.Dashboard.Render(w, ctrl.State(), ctrl.Presets()); err != nil {
		s.log.Error("dashboard render failed", err)
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
	}
}

// HandlePreset applies the preset posted as "days"
func (s *Server) HandlePreset(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.FormValue("days"))
	if err != nil {
		http.Error(w, "days must be a number", http.StatusBadRequest)
		return
	}

	ctrl := s.Sessions.Resolve(w, r)
	if !ctrl.IsPreset(days) {
		http.Error(w, fmt.Sprintf("unknown preset: %d days", days), http.StatusBadRequest)
		return
	}
	_ = ctrl.SelectPreset(r.Context(), days)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleRange submits a manually entered range. Validation errors show on the dashboard.
func (s *Server) HandleRange(w http.ResponseWriter, r *http.Request) {
	ctrl := s.Sessions.Resolve(w, r)
	_ = ctrl.Submit(r.Context(), r.FormValue("start_date"), r.FormValue("end_date"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleReset returns to the default preset
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctrl := s.Sessions.Resolve(w, r)
	_ = ctrl.Reset(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleState returns the session's view model as JSON
func (s *Server) HandleState(w http.ResponseWriter, r *http.Request) {
	ctrl := s.Sessions.Resolve(w, r)
	writeJSON(w, http.StatusOK, s.Dashboard.View(ctrl.State(), ctrl.Presets()))
}

// HandleChart serves the current chart as a standalone go-echarts page
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	state := s.Sessions.Resolve(w, r).State()
	if !state.HasData() || len(state.Points) == 0 {
		http.Error(w, s.Dashboard.Catalog().T("chart.unavailable"), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", GetContentType(".html"))
	if err := s.Dashboard.Charts().RenderForecastPage(w, state.Points); err != nil {
		s.log.Error("chart render failed", err)
	}
}

// HandleChartPNG serves the current chart as a PNG download
func (s *Server) HandleChartPNG(w http.ResponseWriter, r *http.Request) {
	state := s.Sessions.Resolve(w, r).State()
	if !state.HasData() || len(state.Points) < 2 {
		http.Error(w, s.Dashboard.Catalog().T("chart.unavailable"), http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("gold_forecast_%s_to_%s.png", state.Fetched.Start, state.Fetched.End)
	w.Header().Set("Content-Type", GetContentType(filename))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	err := s.Dashboard.Charts().RenderForecastPNG(w, state.Points)
	if errors.Is(err, charts.ErrNotEnoughPoints) {
		http.Error(w, s.Dashboard.Catalog().T("chart.unavailable"), http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("PNG render failed", err)
	}
}

// HandleExport proxies an export download to the backend with the same range
func (s *Server) HandleExport(kind fetchers.ExportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err1 := models.ParseDate(r.URL.Query().Get("start_date"))
		end, err2 := models.ParseDate(r.URL.Query().Get("end_date"))
		if err1 != nil || err2 != nil {
			http.Error(w, "start_date and end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		rng := models.DateRange{Start: start, End: end}
		file, err := s.Fetcher.FetchExport(r.Context(), kind, rng)
		if err != nil {
			var serr *models.ServerError
			if errors.As(err, &serr) {
				s.log.Warn("export rejected by backend", logger.Fields{
					"kind":   string(kind),
					"range":  rng.String(),
					"status": serr.StatusCode,
				})
				http.Error(w, serr.Message, serr.StatusCode)
				return
			}
			s.log.Error("export download failed", err, logger.Fields{"kind": string(kind), "range": rng.String()})
			http.Error(w, s.Dashboard.Catalog().T("error.transport"), http.StatusBadGateway)
			return
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = GetContentType(kind.Extension())
		}
		w.Header().Set("Content-Type", contentType)
		if file.ContentDisposition != "" {
			w.Header().Set("Content-Disposition", file.ContentDisposition)
		}
		w.Write(file.Body)
	}
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"version":   s.version,
		"sessions":  s.Sessions.Len(),
		"checks": map[string]string{
			"config":  "ok",
			"backend": s.backendMode(),
		},
	}
	writeJSON(w, http.StatusOK, health)
}

func (s *Server) backendMode() string {
	if s.Mock != nil {
		return "mock"
	}
	return "remote"
}
