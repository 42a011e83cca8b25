package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"goldcast/internal/charts"
	"goldcast/internal/controller"
	"goldcast/internal/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

// PresetButton is one preset control
type PresetButton struct {
	Days   int    `json:"days"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ExportView holds the two download anchors; Enabled is false until a fetch succeeded
type ExportView struct {
	Excel   string `json:"excel"`
	CSV     string `json:"csv"`
	Enabled bool   `json:"enabled"`
}

// ChartView is either an embedded chart or a placeholder message
type ChartView struct {
	Available   bool          `json:"available"`
	Placeholder string        `json:"placeholder,omitempty"`
	Snippet     template.HTML `json:"-"`
	PNG         bool          `json:"png"`
}

// PageData represents the data structure for the dashboard template
type PageData struct {
	Lang  string `json:"lang"`
	Dir   string `json:"dir"`
	Title string `json:"title"`

	Presets    []PresetButton `json:"presets"`
	StartInput string         `json:"start_date"`
	EndInput   string         `json:"end_date"`

	Loading        bool   `json:"loading"`
	ResultsVisible bool   `json:"results_visible"`
	Error          string `json:"error,omitempty"`

	Table   TableView   `json:"table"`
	Summary SummaryView `json:"summary"`
	Chart   ChartView   `json:"chart"`
	Exports ExportView  `json:"exports"`

	ChartAsset string `json:"-"`
	Version    string `json:"version"`
}

// Dashboard renders controller state into the page
type Dashboard struct {
	cat     *i18n.Catalog
	charts  *charts.ChartGenerator
	tpl     *template.Template
	version string
}

// NewDashboard parses the embedded page template
func NewDashboard(cat *i18n.Catalog, gen *charts.ChartGenerator, version string) (*Dashboard, error) {
	tpl, err := template.New("dashboard.html").
		Funcs(template.FuncMap{"t": cat.T}).
		ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	return &Dashboard{cat: cat, charts: gen, tpl: tpl, version: version}, nil
}

// Catalog returns the catalog the page is rendered with
func (d *Dashboard) Catalog() *i18n.Catalog {
	return d.cat
}

// Charts returns the chart generator the page embeds from
func (d *Dashboard) Charts() *charts.ChartGenerator {
	return d.charts
}

// View builds the page model. Table, summary and chart always come from the
// same state, so an error clears all three together.
func (d *Dashboard) View(s controller.State, presets []controller.Preset) PageData {
	data := PageData{
		Lang:           d.cat.Lang,
		Dir:            d.cat.Dir,
		Title:          d.cat.T("page.title"),
		StartInput:     s.StartInput,
		EndInput:       s.EndInput,
		Loading:        s.Loading,
		ResultsVisible: s.ResultsVisible,
		Error:          ErrorMessage(s.Err, d.cat),
		Table:          RenderTable(s.Points, d.cat),
		Summary:        RenderSummary(s.Summary, d.cat),
		Exports: ExportView{
			Excel:   s.Exports.Excel,
			CSV:     s.Exports.CSV,
			Enabled: !s.Exports.IsZero(),
		},
		ChartAsset: charts.EChartsAsset,
		Version:    d.version,
	}

	for _, p := range presets {
		data.Presets = append(data.Presets, PresetButton{
			Days:   p.Days,
			Label:  d.cat.T("preset.label", p.Days),
			Active: p.Days == s.ActivePreset,
		})
	}

	if s.HasData() && len(s.Points) > 0 {
		data.Chart = ChartView{
			Available: true,
			Snippet:   d.charts.ForecastSnippet(s.Points).HTML,
			PNG:       len(s.Points) >= 2,
		}
	} else {
		data.Chart = ChartView{Placeholder: d.chartPlaceholder(s)}
	}

	return data
}

func (d *Dashboard) chartPlaceholder(s controller.State) string {
	if s.Err != nil {
		return ErrorMessage(s.Err, d.cat)
	}
	if s.HasData() {
		return d.cat.T("table.no_data")
	}
	return d.cat.T("chart.unavailable")
}

// Render writes the full page for s
func (d *Dashboard) Render(w io.Writer, s controller.State, presets []controller.Preset) error {
	var buf bytes.Buffer
	if err := d.tpl.Execute(&buf, d.View(s, presets)); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
