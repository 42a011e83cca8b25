package charts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"

	"goldcast/internal/i18n"
)

func TestForecastChartSeries(t *testing.T) {
	labels := LabelsFrom(i18n.MustLoad("en"))
	line := NewChartGenerator(labels).ForecastChart(testPoints())

	if len(line.MultiSeries) != 3 {
		t.Fatalf("Expected 3 series, got %d", len(line.MultiSeries))
	}

	wantNames := []string{labels.Lower, labels.Upper, labels.Predicted}
	for i, want := range wantNames {
		if got := line.MultiSeries[i].Name; got != want {
			t.Errorf("Series %d name = %q, want %q", i, got, want)
		}
	}

	lower, upper, predicted := line.MultiSeries[0], line.MultiSeries[1], line.MultiSeries[2]
	if lower.Stack == "" || lower.Stack != upper.Stack {
		t.Errorf("Bounds should share a stack, got %q and %q", lower.Stack, upper.Stack)
	}
	if upper.AreaStyle == nil {
		t.Error("Upper bound should shade the band")
	}
	if predicted.Stack != "" {
		t.Error("Predicted series must not be stacked")
	}

	band, ok := upper.Data.([]opts.LineData)
	if !ok || len(band) != 3 {
		t.Fatalf("Unexpected upper series data %#v", upper.Data)
	}
	// 1850.13 - 1759.88
	if band[0].Value != 90.25 {
		t.Errorf("Expected band height 90.25, got %v", band[0].Value)
	}
}

func TestForecastSnippet(t *testing.T) {
	snippet := NewChartGenerator(LabelsFrom(i18n.MustLoad("en"))).ForecastSnippet(testPoints())

	if snippet.ID != ForecastChartID {
		t.Errorf("Expected ID %s, got %s", ForecastChartID, snippet.ID)
	}
	if !strings.Contains(snippet.Div, ForecastChartID) {
		t.Errorf("Div should carry the chart id: %s", snippet.Div)
	}
	if !strings.Contains(snippet.Script, "2026-10-18") {
		t.Error("Script should carry the x axis dates")
	}
	if !strings.Contains(string(snippet.HTML), snippet.Div) {
		t.Error("HTML should contain the div")
	}
}

func TestRenderForecastPage(t *testing.T) {
	labels := LabelsFrom(i18n.MustLoad("en"))
	var buf bytes.Buffer

	if err := NewChartGenerator(labels).RenderForecastPage(&buf, testPoints()); err != nil {
		t.Fatalf("RenderForecastPage failed: %v", err)
	}

	page := buf.String()
	for _, want := range []string{"<html", labels.Predicted, labels.Upper, "1805"} {
		if !strings.Contains(page, want) {
			t.Errorf("Rendered page missing %q", want)
		}
	}
}
