// render-chart fetches a forecast range from the backend and writes the chart as a PNG.
//
//	go run ./cmd/render-chart -days 30 -out forecast.png
//	go run ./cmd/render-chart -start 2026-11-01 -end 2026-11-30
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"goldcast/internal/charts"
	"goldcast/internal/config"
	"goldcast/internal/controller"
	"goldcast/internal/fetchers"
	"goldcast/internal/i18n"
	"goldcast/internal/logger"
	"goldcast/internal/models"
	"goldcast/internal/views"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	backend := flag.String("backend", cfg.BackendURL, "forecast backend base URL")
	days := flag.Int("days", cfg.DefaultPresetDays, "range length from tomorrow, ignored when -start/-end are set")
	start := flag.String("start", "", "start date (YYYY-MM-DD)")
	end := flag.String("end", "", "end date (YYYY-MM-DD)")
	locale := flag.String("locale", cfg.Locale, "label language")
	out := flag.String("out", "forecast.png", "output PNG file")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if err := checkDays(*days); err != nil {
		log.Fatalf("%v", err)
	}

	if err := logger.Configure(cfg.LogLevel, "text"); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("%v", err)
	}

	cat, err := i18n.Load(*locale)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fetcher := fetchers.NewForecastFetcher(*backend, *timeout)
	ctrl := controller.New(fetcher, controller.Options{
		Presets:     []int{*days},
		DefaultDays: *days,
		Location:    loc,
	})

	if *start != "" || *end != "" {
		err = ctrl.Submit(ctx, *start, *end)
	} else {
		err = ctrl.Load(ctx)
	}
	if err != nil {
		log.Fatalf("Fetch failed: %s (%v)", views.ErrorMessage(err, cat), err)
	}

	state := ctrl.State()
	if err := writePNG(*out, charts.NewChartGenerator(charts.LabelsFrom(cat)), state.Points); err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Wrote %s: %d days, %s\n", *out, len(state.Points), summaryLine(state.Summary, cat))
}

// checkDays rejects ranges too short to have a start before the end
func checkDays(days int) error {
	if days < config.MinPresetDays {
		return fmt.Errorf("-days must be at least %d, got %d", config.MinPresetDays, days)
	}
	return nil
}

func writePNG(path string, gen *charts.ChartGenerator, points []models.ForecastPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := gen.RenderForecastPNG(f, points); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func summaryLine(s models.ForecastSummary, cat *i18n.Catalog) string {
	v := views.RenderSummary(s, cat)
	return fmt.Sprintf("%s %s, %s %s %s, %s %s %s",
		cat.T("summary.avg"), v.Avg,
		cat.T("summary.max"), v.Max, v.MaxDate,
		cat.T("summary.min"), v.Min, v.MinDate)
}
