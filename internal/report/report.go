// Package report builds the job status report: it classifies the last build
// of every selected job, resolves the known blockers of the failing ones and
// renders the result.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	vfs "github.com/redhat-openshift-ecosystem/jeeves/internal/assets"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/metrics"
)

const (
	ReportTemplateBasePath = "data/templates/report"
	ReportTemplateFile     = "report.html"

	ReportFileNameJSON  = "jeeves-report.json"
	ReportFileNameHTML  = "jeeves-report.html"
	ReportFileNameSheet = "jeeves-report.xlsx"
	ReportFileNameChart = "jeeves-charts.html"
)

// Report is the render-ready result of a run.
type Report struct {
	Header  string         `json:"header"`
	Rows    []*Row         `json:"rows"`
	Summary Summary        `json:"summary"`
	Runtime *ReportRuntime `json:"runtime,omitempty"`
}

// ReportRuntime describes the run which produced the report.
type ReportRuntime struct {
	GeneratedBy    string         `json:"generatedBy"`
	JenkinsVersion string         `json:"jenkinsVersion"`
	GeneratedAt    time.Time      `json:"generatedAt"`
	Timers         metrics.Timers `json:"timers,omitempty"`
}

// templateData is the data model consumed by the HTML template.
type templateData struct {
	Header        string
	Rows          []*Row
	TotalSuccess  string
	TotalUnstable string
	TotalFailure  string
	// TotalError is empty when no job errored.
	TotalError string
}

// NewReport assembles the report of a run.
func NewReport(rows []*Row, summary Summary, runtime *ReportRuntime) *Report {
	re := &Report{Rows: rows, Summary: summary, Runtime: runtime}
	if runtime != nil {
		re.Header = Header(runtime.GeneratedBy, runtime.JenkinsVersion, runtime.GeneratedAt)
	}
	return re
}

// Header is the report title line.
func Header(user, jenkinsVersion string, at time.Time) string {
	return fmt.Sprintf("Report generated by %s from Jenkins %s on %s",
		user, jenkinsVersion, at.Format("2006-01-02 15:04:05"))
}

// LoadTemplate returns the template at path, or the embedded report template
// when path is empty.
func LoadTemplate(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrapf(err, "unable to read template %s", path)
		}
		return string(data), nil
	}
	data, err := vfs.ReadFile(ReportTemplateBasePath + "/" + ReportTemplateFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderHTML executes the HTML template over the report.
func (re *Report) RenderHTML(tmpl string) ([]byte, error) {
	t, err := template.New("report").Funcs(template.FuncMap{
		"outcomeClass": outcomeClass,
	}).Parse(tmpl)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse report template")
	}

	data := templateData{
		Header:        re.Header,
		Rows:          re.Rows,
		TotalSuccess:  re.Summary.Line(OutcomeSuccess),
		TotalUnstable: re.Summary.Line(OutcomeUnstable),
		TotalFailure:  re.Summary.Line(OutcomeFailure),
		TotalError:    re.Summary.ErrorLine(),
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "unable to render report template")
	}
	return buf.Bytes(), nil
}

func outcomeClass(o Outcome) string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnstable:
		return "unstable"
	case OutcomeFailure:
		return "failure"
	default:
		return "error"
	}
}

// ShowJSON returns the report as an indented JSON document.
func (re *Report) ShowJSON() (string, error) {
	val, err := json.MarshalIndent(re, "", "    ")
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// SaveResults writes the report artifacts to path: the JSON data, the HTML
// document, the spreadsheet and the outcome chart. It returns the files written.
func (re *Report) SaveResults(path string, html []byte) ([]string, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory %s", path)
	}

	reportData, err := json.MarshalIndent(re, "", " ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode report")
	}

	var files []string
	write := func(name string, data []byte) error {
		file := filepath.Join(path, name)
		if err := os.WriteFile(file, data, 0644); err != nil {
			return errors.Wrapf(err, "unable to write %s", file)
		}
		files = append(files, file)
		return nil
	}
	if err := write(ReportFileNameJSON, reportData); err != nil {
		return nil, err
	}
	if err := write(ReportFileNameHTML, html); err != nil {
		return nil, err
	}

	sheetFile := filepath.Join(path, ReportFileNameSheet)
	if err := re.SaveSheet(sheetFile); err != nil {
		return nil, err
	}
	files = append(files, sheetFile)

	chartFile := filepath.Join(path, ReportFileNameChart)
	if err := re.SaveChart(chartFile); err != nil {
		return nil, err
	}
	files = append(files, chartFile)

	log.Infof("Report saved to %s", path)
	return files, nil
}
