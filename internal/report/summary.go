package report

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary holds the number of reported jobs by outcome.
type Summary struct {
	Counts map[Outcome]int `json:"counts"`
	Total  int             `json:"total"`
}

// accumulator is owned by a single Aggregate call.
type accumulator struct {
	rows    []*Row
	summary Summary
}

func newAccumulator() *accumulator {
	return &accumulator{summary: Summary{Counts: make(map[Outcome]int, len(Outcomes))}}
}

func (a *accumulator) add(row *Row) {
	a.rows = append(a.rows, row)
	a.summary.Counts[row.Outcome]++
	a.summary.Total++
}

// Percent returns the share of jobs with the outcome, rounded to one decimal.
func (s *Summary) Percent(o Outcome) float64 {
	return Percent(s.Counts[o], s.Total)
}

// summaryLabels keep the column layout of the mailed report.
var summaryLabels = map[Outcome]string{
	OutcomeSuccess:  "Total SUCCESS:  ",
	OutcomeUnstable: "Total UNSTABLE: ",
	OutcomeFailure:  "Total FAILURE:  ",
	OutcomeError:    "Total ERROR:  ",
}

// Line is the summary line of the outcome, e.g. "Total FAILURE:  1/3 = 33.3%".
func (s *Summary) Line(o Outcome) string {
	return fmt.Sprintf("%s%d/%d = %.1f%%", summaryLabels[o], s.Counts[o], s.Total, s.Percent(o))
}

// ErrorLine is the Error summary line, empty when no job errored.
func (s *Summary) ErrorLine() string {
	if s.Counts[OutcomeError] == 0 {
		return ""
	}
	return s.Line(OutcomeError)
}

// Percent computes round(100*part/whole, 1), and 0 for an empty whole.
// Halves round away from zero: 1/16 is 6.3.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	p, err := stats.Round(100*float64(part)/float64(whole), 1)
	if err != nil {
		return 0
	}
	return p
}
