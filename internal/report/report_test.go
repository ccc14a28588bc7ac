package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker"
)

const testTemplate = `<h1>{{ .Header }}</h1>
{{- range .Rows }}
<tr><td>{{ .Version }}</td><td class="{{ outcomeClass .Outcome }}">{{ .JobName }}</td>
{{- range .Bugs }}<a href="{{ .URL }}">{{ .Name }}</a>{{ end }}</tr>
{{- end }}
<p>{{ .TotalSuccess }}|{{ .TotalUnstable }}|{{ .TotalFailure }}|{{ if .TotalError }}{{ .TotalError }}{{ else }}no errors{{ end }}</p>`

func sampleReport() *Report {
	rows := []*Row{
		{
			Version: "17", JobName: "osp-17-deploy", BuildNumber: 9, Result: "SUCCESS", Outcome: OutcomeSuccess,
			Bugs: tracker.NotApplicableRefs(), Tickets: tracker.NotApplicableRefs(),
		},
		{
			Version: "16", JobName: "osp-16-deploy", BuildNumber: 3, Result: "FAILURE", Outcome: OutcomeFailure,
			Bugs:    []tracker.Reference{{Name: "Known issue", URL: "https://bz/show_bug.cgi?id=55"}},
			Tickets: []tracker.Reference{{Name: "No ticket on file"}},
		},
		{
			Version: "15", JobName: "osp-15-deploy", BuildNumber: 1, Result: "ABORTED", Outcome: OutcomeError,
			Bugs: []tracker.Reference{}, Tickets: []tracker.Reference{},
		},
	}
	acc := newAccumulator()
	for _, r := range rows {
		acc.add(r)
	}
	return NewReport(acc.rows, acc.summary, &ReportRuntime{
		GeneratedBy:    "bot@example.com",
		JenkinsVersion: "2.426.3",
		GeneratedAt:    time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	})
}

func TestRenderHTML(t *testing.T) {
	html, err := sampleReport().RenderHTML(testTemplate)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "<h1>Report generated by bot@example.com from Jenkins 2.426.3 on 2024-05-02 08:00:00</h1>")
	assert.Contains(t, out, `<td class="failure">osp-16-deploy</td><a href="https://bz/show_bug.cgi?id=55">Known issue</a>`)
	assert.Contains(t, out, "Total SUCCESS:  1/3 = 33.3%|Total UNSTABLE: 0/3 = 0.0%|Total FAILURE:  1/3 = 33.3%|Total ERROR:  1/3 = 33.3%")

	_, err = sampleReport().RenderHTML("{{ .Missing ")
	assert.ErrorContains(t, err, "unable to parse report template")
}

func TestRenderHTMLWithoutErrors(t *testing.T) {
	re := sampleReport()
	re.Rows = re.Rows[:2]
	re.Summary = Summary{Counts: map[Outcome]int{OutcomeSuccess: 1, OutcomeFailure: 1}, Total: 2}

	html, err := re.RenderHTML(testTemplate)
	require.NoError(t, err)
	assert.Contains(t, string(html), "|no errors</p>")
}

func TestLoadTemplateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(path, []byte(testTemplate), 0644))

	got, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, testTemplate, got)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "unable to read template")
}

func TestSaveResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	re := sampleReport()

	files, err := re.SaveResults(dir, []byte("<html></html>"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, ReportFileNameJSON),
		filepath.Join(dir, ReportFileNameHTML),
		filepath.Join(dir, ReportFileNameSheet),
		filepath.Join(dir, ReportFileNameChart),
	}, files)

	raw, err := os.ReadFile(filepath.Join(dir, ReportFileNameJSON))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, float64(3), summary["total"])
	assert.Equal(t, map[string]interface{}{"SUCCESS": float64(1), "FAILURE": float64(1), "ERROR": float64(1)}, summary["counts"])
	rows := doc["rows"].([]interface{})
	assert.Equal(t, "SUCCESS", rows[0].(map[string]interface{})["outcome"])

	sheet, err := excelize.OpenFile(filepath.Join(dir, ReportFileNameSheet))
	require.NoError(t, err)
	defer sheet.Close()
	assert.Equal(t, []string{sheetNameJobs, sheetNameSummary}, sheet.GetSheetList())
	assert.Equal(t, sheetNameJobs, sheet.GetSheetName(sheet.GetActiveSheetIndex()))
	cell, err := sheet.GetCellValue(sheetNameJobs, "B3")
	require.NoError(t, err)
	assert.Equal(t, "osp-16-deploy", cell)
	cell, err = sheet.GetCellValue(sheetNameJobs, "G3")
	require.NoError(t, err)
	assert.Equal(t, "Known issue (https://bz/show_bug.cgi?id=55)", cell)
	cell, err = sheet.GetCellValue(sheetNameSummary, "D3")
	require.NoError(t, err)
	assert.Equal(t, "0", cell)

	chart, err := os.ReadFile(filepath.Join(dir, ReportFileNameChart))
	require.NoError(t, err)
	assert.Contains(t, string(chart), "Jenkins Job Status Report")
}
