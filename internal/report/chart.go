package report

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/report/chart"
)

// SaveChart writes the page with the outcome distribution chart to path.
func (re *Report) SaveChart(path string) error {
	slices := make([]chart.Slice, 0, len(Outcomes))
	for _, o := range Outcomes {
		slices = append(slices, chart.Slice{Name: o.String(), Value: re.Summary.Counts[o]})
	}
	page := chart.NewPage()
	page.AddCharts(chart.NewPie("Outcomes", fmt.Sprintf("%d jobs", re.Summary.Total), slices))
	if err := chart.SavePage(page, path); err != nil {
		return errors.Wrapf(err, "unable to save chart %s", path)
	}
	return nil
}
