package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"goldcast/internal/charts"
	"goldcast/internal/config"
	"goldcast/internal/controller"
	"goldcast/internal/fetchers"
	"goldcast/internal/i18n"
	"goldcast/internal/logger"
	"goldcast/internal/mocks"
	"goldcast/internal/views"
)

// Server represents the main application server
type Server struct {
	Config    *config.Config
	Fetcher   *fetchers.ForecastFetcher
	Dashboard *views.Dashboard
	Sessions  *SessionStore
	Mock      *mocks.Backend

	location *time.Location
	now      func() time.Time
	version  string
	log      *logger.Logger
}

// Option adjusts a Server at construction
type Option func(*Server)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithVersion sets the version shown in the footer and /health
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, options ...Option) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	cat, err := i18n.Load(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load locale: %w", err)
	}

	s := &Server{
		Config:   cfg,
		location: loc,
		now:      time.Now,
		version:  config.GetVersion(),
		log:      logger.Component("server"),
	}
	for _, opt := range options {
		opt(s)
	}

	backendURL := cfg.BackendURL
	if cfg.MockupMode {
		s.Mock = mocks.NewBackendFromClock(s.now, loc)
		backendURL = fmt.Sprintf("http://127.0.0.1:%s/mock", cfg.Port)
		s.log.Info("mockup mode enabled", logger.Fields{"backend": backendURL})
	}
	s.Fetcher = fetchers.NewForecastFetcher(backendURL, cfg.RequestTimeout)

	s.Dashboard, err = views.NewDashboard(cat, charts.NewChartGenerator(charts.LabelsFrom(cat)), s.version)
	if err != nil {
		return nil, err
	}

	s.Sessions = NewSessionStore(cfg.SessionTTL, s.newController)
	s.Sessions.now = s.now

	return s, nil
}

// newController builds the per-session controller from configuration
func (s *Server) newController() *controller.Controller {
	return controller.New(s.Fetcher, controller.Options{
		Presets:     s.Config.PresetDays,
		DefaultDays: s.Config.DefaultPresetDays,
		Location:    s.location,
		Now:         s.now,
		Exports:     controller.ExportLinker{Base: s.Config.ExportBaseURL},
	})
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	if len(s.Config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
			MaxAge:           3600,
		}))
	}

	r.Get("/health", s.HandleHealth)

	r.Get("/", s.HandleRoot)
	r.Post("/preset", s.HandlePreset)
	r.Post("/range", s.HandleRange)
	r.Post("/reset", s.HandleReset)
	r.Get("/state", s.HandleState)
	r.Get("/chart", s.HandleChart)
	r.Get("/chart.png", s.HandleChartPNG)
	r.Get("/export-excel", s.HandleExport(fetchers.ExportExcel))
	r.Get("/export-csv", s.HandleExport(fetchers.ExportCSV))

	if s.Mock != nil {
		r.Mount("/mock", http.StripPrefix("/mock", s.Mock))
	}

	return r
}

// Run expires idle sessions until ctx is done
func (s *Server) Run(ctx context.Context) {
	s.Sessions.Run(ctx)
}

// requestLogger logs one line per request at debug level
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request served", logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
	})
}
