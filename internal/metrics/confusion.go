// Package metrics folds classified records into a confusion matrix and
// derives accuracy, precision, recall and F1 from it.
package metrics

import "github.com/sells-group/ads-report/internal/model"

// Update folds one record into counts. The positive class is
// model.LabelPositive. Records with invalid labels leave counts unchanged.
func Update(counts model.ConfusionCounts, rec model.ClassifiedRecord) model.ConfusionCounts {
	if !rec.Actual.Valid() || !rec.Predicted.Valid() {
		return counts
	}

	switch {
	case rec.Actual == model.LabelPositive && rec.Predicted == model.LabelPositive:
		counts.TruePositive++
	case rec.Actual == model.LabelPositive:
		counts.FalseNegative++
	case rec.Predicted == model.LabelPositive:
		counts.FalsePositive++
	default:
		counts.TrueNegative++
	}
	counts.Processed++
	return counts
}

// Derive computes the metrics. Precision and recall are derived first and F1
// is computed from those derived values. A zero denominator yields 0.
func Derive(c model.ConfusionCounts) model.Metrics {
	var m model.Metrics

	total := c.Total()
	m.Accuracy = ratio(float64(c.TruePositive+c.TrueNegative), float64(total))
	m.Precision = ratio(float64(c.TruePositive), float64(c.TruePositive+c.FalsePositive))
	m.Recall = ratio(float64(c.TruePositive), float64(c.TruePositive+c.FalseNegative))
	m.F1 = ratio(2*m.Precision*m.Recall, m.Precision+m.Recall)

	return m
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// Accumulator is a mutable wrapper around Update for streaming use.
type Accumulator struct {
	counts model.ConfusionCounts
}

// Add folds rec into the accumulator.
func (a *Accumulator) Add(rec model.ClassifiedRecord) {
	a.counts = Update(a.counts, rec)
}

// Counts returns the current confusion counts.
func (a *Accumulator) Counts() model.ConfusionCounts {
	return a.counts
}

// Metrics derives the metrics from the current counts.
func (a *Accumulator) Metrics() model.Metrics {
	return Derive(a.counts)
}
