// Package chart renders the charts of the report page.
package chart

import (
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Slice is one category of a pie chart.
type Slice struct {
	Name  string
	Value int
}

// NewPie creates a pie chart with one slice per category. Empty categories
// are left out.
func NewPie(title, subtitle string, slices []Slice) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
	)

	data := make([]opts.PieData, 0, len(slices))
	for _, s := range slices {
		if s.Value == 0 {
			continue
		}
		data = append(data, opts.PieData{Name: s.Name, Value: s.Value})
	}
	pie.AddSeries(title, data)
	return pie
}

// NewPage create the page object holding the report charts.
func NewPage() *components.Page {
	page := components.NewPage()
	page.PageTitle = "Jenkins Job Status Report"
	return page
}

// SavePage renders the page to the HTML file at path.
func SavePage(page *components.Page, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
