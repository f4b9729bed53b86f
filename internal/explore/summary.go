package explore

import (
	"github.com/montanaflynn/stats"

	"github.com/sells-group/ads-report/internal/model"
)

// Summary describes the length distribution of class l. An empty class yields
// a zero summary.
func (a *Aggregate) Summary(l model.Label) model.FeatureSummary {
	data := stats.Float64Data(a.Bucket(l).Lengths)
	if data.Len() == 0 {
		return model.FeatureSummary{}
	}

	// Errors from stats only signal empty input, which is handled above.
	minV, _ := stats.Min(data)
	maxV, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	p90, _ := stats.Percentile(data, 90)

	return model.FeatureSummary{
		Min:    minV,
		Max:    maxV,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		P90:    p90,
	}
}

// View builds the presentation summary of the aggregate.
func (a *Aggregate) View(labels model.LabelSet, width int) model.ExploreSummary {
	return a.ViewWith(labels, a.Histogram(width))
}

// ViewWith builds the presentation summary around an already computed
// histogram.
func (a *Aggregate) ViewWith(labels model.LabelSet, h Histogram) model.ExploreSummary {
	var out model.ExploreSummary
	for _, l := range model.Labels {
		b := a.Bucket(l)
		out.Classes = append(out.Classes, model.ClassSummary{
			Label:      labels.Name(l),
			Count:      b.Count,
			MeanLength: a.RoundedMean(l),
			IPCount:    b.IPCount,
			Length:     a.Summary(l),
		})
	}

	out.Histogram = model.HistogramSummary{
		Width:   h.Width,
		Labels:  h.Labels,
		Counts:  make(map[string][]int, len(model.Labels)),
		Clamped: h.Clamped,
	}
	for _, l := range model.Labels {
		out.Histogram.Counts[labels.Name(l)] = h.Counts(l)
	}
	return out
}
