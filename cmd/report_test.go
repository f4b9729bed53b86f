package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/ads-report/internal/config"
	"github.com/sells-group/ads-report/internal/dataset"
	"github.com/sells-group/ads-report/internal/model"
)

func setupConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	c, err := config.Load()
	require.NoError(t, err)
	c.Renderer.Driver = "gochart"
	c.Charts.OutputDir = filepath.Join(dir, "charts")

	prev := cfg
	cfg = c
	t.Cleanup(func() {
		cfg = prev
		reportDataset, reportFormat, reportOutput, reportXLSX = "", "text", "", ""
		reportCharts, reportDriver = nil, ""
	})
	return dir
}

func writeDataset(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewGenerator_AppliesOverrides(t *testing.T) {
	setupConfig(t)
	reportCharts = []string{"metrics_bar", "status_pie"}
	reportDriver = "gochart"

	gen, err := newGenerator()
	require.NoError(t, err)
	assert.Equal(t, []model.ChartKind{model.ChartMetricsBar, model.ChartStatusPie}, gen.Kinds())
}

func TestNewGenerator_RejectsUnknownKind(t *testing.T) {
	setupConfig(t)
	reportCharts = []string{"radar"}

	_, err := newGenerator()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charts.kinds")
}

func TestWriteReport_JSONToFile(t *testing.T) {
	dir := setupConfig(t)
	reportFormat = "json"
	reportOutput = filepath.Join(dir, "out.json")

	rep := &model.Report{Dataset: "d.csv", Counts: model.ConfusionCounts{TruePositive: 2, Processed: 2}}
	require.NoError(t, writeReport(&bytes.Buffer{}, rep))

	data, err := os.ReadFile(reportOutput)
	require.NoError(t, err)
	var got model.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 2, got.Counts.TruePositive)
}

func TestReportCommand_EndToEnd(t *testing.T) {
	dir := setupConfig(t)
	reportDataset = writeDataset(t, dir, "status,predicted_status,length_url,ip,nb_dots\n"+
		"phishing,phishing,80,1,4\n"+
		"legitimate,legitimate,30,0,2\n")
	reportFormat = "json"
	reportCharts = []string{"metrics_bar"}

	var out bytes.Buffer
	reportCmd.SetOut(&out)
	reportCmd.SetContext(context.Background())
	t.Cleanup(func() { reportCmd.SetOut(nil) })

	require.NoError(t, reportCmd.RunE(reportCmd, nil))

	var rep model.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, 2, rep.Counts.Processed)
	assert.InDelta(t, 1.0, rep.Metrics.Accuracy, 1e-9)
	require.Len(t, rep.Charts, 1)
	assert.Equal(t, model.ChartStatusOK, rep.Charts[0].Status)
}

func TestReportCommand_SchemaErrorBanner(t *testing.T) {
	dir := setupConfig(t)
	reportDataset = writeDataset(t, dir, "status,length_url,ip,nb_dots\nphishing,1,0,1\n")
	reportCmd.SetContext(context.Background())

	err := reportCmd.RunE(reportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing required columns: predicted_status")

	var se *dataset.SchemaError
	require.True(t, errors.As(err, &se), "cause should stay reachable")
	assert.Equal(t, []string{"predicted_status"}, se.Columns())
}
