package model

import "time"

// Report is the output of one pipeline run.
type Report struct {
	Dataset     string          `json:"dataset" yaml:"dataset"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
	Counts      ConfusionCounts `json:"counts" yaml:"counts"`
	Metrics     Metrics         `json:"metrics" yaml:"metrics"`
	Diagnostics Diagnostics     `json:"diagnostics" yaml:"diagnostics"`
	Explore     ExploreSummary  `json:"explore" yaml:"explore"`
	Charts      []ChartResult   `json:"charts" yaml:"charts"`
}

// Diagnostics exposes row-level recoveries that were absorbed during parsing.
type Diagnostics struct {
	Rows          int `json:"rows" yaml:"rows"`
	Valid         int `json:"valid" yaml:"valid"`
	SkippedLabel  int `json:"skipped_label" yaml:"skipped_label"`
	CoercedCells  int `json:"coerced_cells" yaml:"coerced_cells"`
	MalformedRows int `json:"malformed_rows" yaml:"malformed_rows"`
}

// ExploreSummary is the presentation view of the exploratory aggregate.
type ExploreSummary struct {
	Classes   []ClassSummary   `json:"classes" yaml:"classes"`
	Histogram HistogramSummary `json:"histogram" yaml:"histogram"`
}

// ClassSummary holds per ground-truth class statistics.
type ClassSummary struct {
	Label      string         `json:"label" yaml:"label"`
	Count      int            `json:"count" yaml:"count"`
	MeanLength float64        `json:"mean_length" yaml:"mean_length"`
	IPCount    int            `json:"ip_count" yaml:"ip_count"`
	Length     FeatureSummary `json:"length" yaml:"length"`
}

// FeatureSummary describes the distribution of one numeric feature.
type FeatureSummary struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	P90    float64 `json:"p90" yaml:"p90"`
}

// HistogramSummary holds shared bin labels and per-class counts.
type HistogramSummary struct {
	Width  int              `json:"width" yaml:"width"`
	Labels []string         `json:"labels" yaml:"labels"`
	Counts map[string][]int `json:"counts" yaml:"counts"`
	// Clamped counts values folded into the last bin by the bin limit.
	Clamped int `json:"clamped,omitempty" yaml:"clamped,omitempty"`
}
