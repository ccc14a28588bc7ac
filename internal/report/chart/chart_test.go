package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePage(t *testing.T) {
	page := NewPage()
	page.AddCharts(NewPie("Outcomes", "3 jobs", []Slice{
		{Name: "SUCCESS", Value: 2},
		{Name: "UNSTABLE", Value: 0},
		{Name: "FAILURE", Value: 1},
	}))

	path := filepath.Join(t.TempDir(), "charts.html")
	require.NoError(t, SavePage(page, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "Jenkins Job Status Report")
	assert.Contains(t, out, "SUCCESS")
	assert.NotContains(t, out, "UNSTABLE")
}
