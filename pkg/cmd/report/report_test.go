package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redhat-openshift-ecosystem/jeeves/internal/report"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/tracker"
)

// fakeUpstream serves the Jenkins, Bugzilla and Jira APIs used by a run.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Jenkins", "2.440.3")
		fmt.Fprint(w, `{"jobs":[
			{"name":"osp-16-deploy","url":"http://jenkins/job/osp-16-deploy/"},
			{"name":"osp-17-deploy","url":"http://jenkins/job/osp-17-deploy/"},
			{"name":"rhel-9-build","url":"http://jenkins/job/rhel-9-build/"}]}`)
	})
	mux.HandleFunc("/me/api/json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"ci","fullName":"CI bot","property":[{},{"address":"ci@example.com"}]}`)
	})
	jobs := map[string]string{"osp-16-deploy": "FAILURE", "osp-17-deploy": "SUCCESS"}
	for name, result := range jobs {
		name, result := name, result
		mux.HandleFunc("/job/"+name+"/api/json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"url":"http://jenkins/job/%[1]s/","lastCompletedBuild":{"number":7,"url":"http://jenkins/job/%[1]s/7/"}}`, name)
		})
		mux.HandleFunc("/job/"+name+"/7/api/json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"result":%q}`, result)
		})
	}
	mux.HandleFunc("/rest/bug/55", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bugs":[{"id":55,"summary":"Known issue"}]}`)
	})
	mux.HandleFunc("/rest/api/2/issue/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errorMessages":["Issue Does Not Exist"],"errors":{}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeInputs(t *testing.T, baseURL string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	manifestFile := filepath.Join(dir, "blockers.yaml")
	tmplFile := filepath.Join(dir, "report.html")

	cfg := strings.Join([]string{
		"jenkins_url: " + baseURL,
		"job_search_field: osp",
		"bugzilla_url: " + baseURL,
		"jira_url: " + baseURL,
		"smtp_host: 127.0.0.1:2525",
		"email_to: team@example.com",
		"blockers: " + manifestFile,
	}, "\n")
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0644))
	require.NoError(t, os.WriteFile(manifestFile, []byte("osp-16-deploy:\n  bz: [55]\n  jira: [0]\n"), 0644))
	require.NoError(t, os.WriteFile(tmplFile, []byte(`<p>{{ .Header }}</p>`), 0644))
	return cfgFile, tmplFile
}

func TestProcessReportDryRun(t *testing.T) {
	srv := fakeUpstream(t)
	cfgFile, tmplFile := writeInputs(t, srv.URL)
	saveTo := t.TempDir()

	err := processReport(context.Background(), &Input{
		configFile: cfgFile,
		template:   tmplFile,
		saveTo:     saveTo,
		dryRun:     true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(saveTo, report.ReportFileNameJSON))
	require.NoError(t, err)
	got := report.Report{}
	require.NoError(t, json.Unmarshal(data, &got))

	assert.True(t, strings.HasPrefix(got.Header, "Report generated by ci@example.com from Jenkins 2.440.3 on "))
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "osp-17-deploy", got.Rows[0].JobName)
	assert.Equal(t, []tracker.Reference{{Name: tracker.NotApplicable}}, got.Rows[0].Bugs)
	assert.Equal(t, "osp-16-deploy", got.Rows[1].JobName)
	assert.Equal(t, "16", got.Rows[1].Version)
	assert.Equal(t, "Known issue", got.Rows[1].Bugs[0].Name)
	assert.Equal(t, "No ticket on file", got.Rows[1].Tickets[0].Name)
	assert.Equal(t, 2, got.Summary.Total)

	html, err := os.ReadFile(filepath.Join(saveTo, report.ReportFileNameHTML))
	require.NoError(t, err)
	assert.Contains(t, string(html), "ci@example.com")
}

func TestProcessReportMissingConfig(t *testing.T) {
	err := processReport(context.Background(), &Input{configFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "error loading configuration data")
}

func TestCheckFlags(t *testing.T) {
	assert.Error(t, checkFlags(&Input{publish: true}))
	assert.NoError(t, checkFlags(&Input{publish: true, saveTo: "./results"}))
}

func TestShowReportSummary(t *testing.T) {
	summary := report.Summary{
		Counts: map[report.Outcome]int{report.OutcomeSuccess: 1, report.OutcomeError: 1},
		Total:  2,
	}
	re := &report.Report{
		Header: "Report generated by ci@example.com",
		Rows: []*report.Row{
			{Version: "17", JobName: "osp-17-deploy", BuildNumber: 7, Outcome: report.OutcomeSuccess},
			{Version: "16", JobName: "osp-16-deploy", BuildNumber: 3, Outcome: report.OutcomeError},
		},
		Summary: summary,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, showReportSummary(buf, re))
	out := buf.String()
	assert.Contains(t, out, "osp-17-deploy")
	assert.Contains(t, out, "Total SUCCESS:  1/2 = 50.0%")
	assert.Contains(t, out, "Total ERROR:  1/2 = 50.0%")
}
