package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ChartKind is the token passed to the renderer to select a chart.
type ChartKind string

const (
	ChartMetricsBar   ChartKind = "metrics_bar"
	ChartStatusPie    ChartKind = "status_pie"
	ChartAvgLengthBar ChartKind = "avg_url_len_bar"
	ChartIPUsageBar   ChartKind = "ip_usage_bar"
	ChartLengthHist   ChartKind = "url_len_hist"
	ChartLengthDots   ChartKind = "len_vs_dots_scatter"
)

// DefaultChartKinds is the report order: the metrics summary first, then the
// exploratory charts.
var DefaultChartKinds = []ChartKind{
	ChartMetricsBar,
	ChartStatusPie,
	ChartAvgLengthBar,
	ChartIPUsageBar,
	ChartLengthHist,
	ChartLengthDots,
}

var chartTitles = map[ChartKind]string{
	ChartMetricsBar:   "Performance Metrics Summary",
	ChartStatusPie:    "URL Status Distribution",
	ChartAvgLengthBar: "Average URL Length",
	ChartIPUsageBar:   "IP Address Usage",
	ChartLengthHist:   "URL Length Distribution",
	ChartLengthDots:   "URL Length vs Number of Dots",
}

// Known reports whether k is a supported chart kind.
func (k ChartKind) Known() bool {
	_, ok := chartTitles[k]
	return ok
}

// Title returns the human-readable chart title.
func (k ChartKind) Title() string {
	if t, ok := chartTitles[k]; ok {
		return t
	}
	return string(k)
}

// ParseChartKind validates a chart kind token.
func ParseChartKind(s string) (ChartKind, error) {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Known() {
		return "", eris.Errorf("model: unknown chart kind %q", s)
	}
	return k, nil
}

// ParseChartKinds validates a list of tokens, preserving order and dropping
// duplicates.
func ParseChartKinds(tokens []string) ([]ChartKind, error) {
	seen := make(map[ChartKind]bool, len(tokens))
	kinds := make([]ChartKind, 0, len(tokens))
	for _, tok := range tokens {
		k, err := ParseChartKind(tok)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// ChartStatus is the outcome of a single chart dispatch.
type ChartStatus string

const (
	ChartStatusOK          ChartStatus = "ok"
	ChartStatusFailed      ChartStatus = "failed"
	ChartStatusUnavailable ChartStatus = "unavailable"
)

// ChartResult is either an image reference or a failure description.
type ChartResult struct {
	Kind      ChartKind   `json:"kind" yaml:"kind"`
	Title     string      `json:"title" yaml:"title"`
	Status    ChartStatus `json:"status" yaml:"status"`
	ImagePath string      `json:"image_path,omitempty" yaml:"image_path,omitempty"`
	URL       string      `json:"url,omitempty" yaml:"url,omitempty"`
	Token     string      `json:"token,omitempty" yaml:"token,omitempty"` // cache-busting query value, also present in URL
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
	Output    string      `json:"output,omitempty" yaml:"output,omitempty"` // renderer diagnostics, truncated
}

// OK reports whether the chart rendered.
func (r ChartResult) OK() bool {
	return r.Status == ChartStatusOK
}
