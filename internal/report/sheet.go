package report

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker"
)

const (
	sheetNameJobs    = "jobs"
	sheetNameSummary = "summary"

	// sheetNameDefault is created by excelize.NewFile.
	sheetNameDefault = "Sheet1"
)

var sheetJobsHeader = []string{
	"Version", "Job", "Job_URL", "Build", "Build_URL", "Result", "Bugs", "Tickets",
}

// SaveSheet writes the report rows and summary to an xlsx spreadsheet.
func (re *Report) SaveSheet(path string) error {
	sheet := excelize.NewFile()
	defer sheet.Close()

	if _, err := sheet.NewSheet(sheetNameJobs); err != nil {
		return errors.Wrapf(err, "unable to create sheet %s", sheetNameJobs)
	}
	if err := sheet.DeleteSheet(sheetNameDefault); err != nil {
		return errors.Wrapf(err, "unable to remove sheet %s", sheetNameDefault)
	}
	idx, err := sheet.GetSheetIndex(sheetNameJobs)
	if err != nil {
		return errors.Wrapf(err, "unable to find sheet %s", sheetNameJobs)
	}
	sheet.SetActiveSheet(idx)
	if err := populateJobsSheet(sheet, re.Rows); err != nil {
		return err
	}

	if _, err := sheet.NewSheet(sheetNameSummary); err != nil {
		return errors.Wrapf(err, "unable to create sheet %s", sheetNameSummary)
	}
	if err := populateSummarySheet(sheet, &re.Summary); err != nil {
		return err
	}

	if err := sheet.SaveAs(path); err != nil {
		return errors.Wrapf(err, "unable to save sheet %s", path)
	}
	return nil
}

// setRow fills the cells of a row starting at column A.
func setRow(sheet *excelize.File, name string, rowN int, values ...interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowN)
		if err != nil {
			return err
		}
		if err := sheet.SetCellValue(name, cell, v); err != nil {
			return errors.Wrapf(err, "unable to set cell %s!%s", name, cell)
		}
	}
	return nil
}

func populateJobsSheet(sheet *excelize.File, rows []*Row) error {
	header := make([]interface{}, len(sheetJobsHeader))
	for i, h := range sheetJobsHeader {
		header[i] = h
	}
	if err := setRow(sheet, sheetNameJobs, 1, header...); err != nil {
		return err
	}
	for i, r := range rows {
		err := setRow(sheet, sheetNameJobs, i+2,
			r.Version, r.JobName, r.JobURL, r.BuildNumber, r.BuildURL,
			r.Outcome.String(), joinRefs(r.Bugs), joinRefs(r.Tickets))
		if err != nil {
			return err
		}
	}
	return nil
}

func populateSummarySheet(sheet *excelize.File, s *Summary) error {
	if err := setRow(sheet, sheetNameSummary, 1, "Outcome", "Count", "Total", "Percent"); err != nil {
		return err
	}
	for i, o := range Outcomes {
		if err := setRow(sheet, sheetNameSummary, i+2, o.String(), s.Counts[o], s.Total, s.Percent(o)); err != nil {
			return err
		}
	}
	return nil
}

// joinRefs flattens references into one cell, one per line.
func joinRefs(refs []tracker.Reference) string {
	lines := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.URL == "" {
			lines = append(lines, ref.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s)", ref.Name, ref.URL))
	}
	return strings.Join(lines, "\n")
}
