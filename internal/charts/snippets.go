package charts

import (
	"html/template"
	"strings"
)

// EChartsAsset is the script a page must load before any snippet's Script runs
const EChartsAsset = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// ChartSnippet represents an embeddable go-echarts chart fragment.
// Div holds a single root <div id="..."></div> and Script the <script> block
// that initializes the chart in that div. HTML is both combined.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   template.HTML
}

func newSnippet(id, title, div, script string) ChartSnippet {
	div = strings.TrimSpace(div)
	script = strings.TrimSpace(script)
	return ChartSnippet{
		ID:     id,
		Title:  title,
		Div:    div,
		Script: script,
		// go-echarts produced both parts from our own options
		HTML: template.HTML(div + "\n" + script),
	}
}
