package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ads-report/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		Dataset:     "data/urls.csv",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Counts:      model.ConfusionCounts{TruePositive: 3, FalsePositive: 1, TrueNegative: 4, FalseNegative: 2, Processed: 10},
		Metrics:     model.Metrics{Accuracy: 0.7, Precision: 0.75, Recall: 0.6, F1: 2.0 / 3.0},
		Diagnostics: model.Diagnostics{Rows: 11, Valid: 10, SkippedLabel: 1, CoercedCells: 2, MalformedRows: 1},
		Explore: model.ExploreSummary{
			Classes: []model.ClassSummary{
				{Label: "legitimate", Count: 5, MeanLength: 31.4, IPCount: 0},
				{Label: "phishing", Count: 5, MeanLength: 88.2, IPCount: 3},
			},
			Histogram: model.HistogramSummary{
				Width:  25,
				Labels: []string{"0-24", "25-49"},
				Counts: map[string][]int{"legitimate": {2, 3}, "phishing": {1, 4}},
			},
		},
		Charts: []model.ChartResult{
			{Kind: model.ChartMetricsBar, Title: "Performance Metrics Summary", Status: model.ChartStatusOK, URL: "/charts/metrics_bar_a.png?t=1"},
			{Kind: model.ChartStatusPie, Title: "URL Status Distribution", Status: model.ChartStatusFailed, Error: "exit status 1", Output: "Traceback\nKeyError"},
			{Kind: model.ChartLengthHist, Title: "URL Length Distribution", Status: model.ChartStatusUnavailable, Error: "no length values"},
		},
	}
}

func TestFormat(t *testing.T) {
	out := Format(sampleReport())

	assert.Contains(t, out, "# Classifier Evaluation Report: data/urls.csv")
	assert.Contains(t, out, "- Accuracy: 70.00%")
	assert.Contains(t, out, "- Precision: 75.00%")
	assert.Contains(t, out, "- Recall: 60.00%")
	assert.Contains(t, out, "- F1 Score: 0.667")
	assert.Contains(t, out, "- True positives: 3 (phishing correctly flagged)")
	assert.Contains(t, out, "- False positives: 1 (legitimate flagged as phishing)")
	assert.Contains(t, out, "- Skipped (unrecognized label): 1")
	assert.Contains(t, out, "- Malformed rows skipped: 1")
	assert.Contains(t, out, "| phishing | 5 | 88.2 |")
	assert.Contains(t, out, "- Performance Metrics Summary: /charts/metrics_bar_a.png?t=1")
	assert.Contains(t, out, "- URL Status Distribution: FAILED (exit status 1)\n  Output: Traceback\n  KeyError")
	assert.Contains(t, out, "- URL Length Distribution: unavailable (no length values)")
}

func TestFormat_EmptyReport(t *testing.T) {
	out := Format(&model.Report{Dataset: "empty.csv"})
	assert.Contains(t, out, "No classes observed.")
	assert.Contains(t, out, "- Accuracy: 0.00%")
	assert.Contains(t, out, "(phishing missed)")
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleReport(), "json"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "data/urls.csv", got["dataset"])
	m := got["metrics"].(map[string]any)
	assert.Equal(t, 0.7, m["accuracy"])
	charts := got["charts"].([]any)
	require.Len(t, charts, 3)
	assert.Equal(t, "failed", charts[1].(map[string]any)["status"])
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleReport(), "YAML"))

	var got struct {
		Counts model.ConfusionCounts `yaml:"counts"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 10, got.Counts.Processed)
	assert.Equal(t, 3, got.Counts.TruePositive)
}

func TestEncode_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleReport(), ""))
	assert.Equal(t, Format(sampleReport()), buf.String())
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, sampleReport(), "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "csv"`)
}
