package model

// ClassifiedRecord is one validated dataset row. Only the features used by
// the exploratory charts are retained.
type ClassifiedRecord struct {
	Actual    Label
	Predicted Label
	Length    float64 // URL/text length feature
	IP        float64 // binary IP-usage feature (0 or 1)
	Dots      float64 // dot-count feature
}

// ConfusionCounts holds the 2x2 confusion matrix for the positive class.
type ConfusionCounts struct {
	TruePositive  int `json:"true_positive" yaml:"true_positive"`
	FalsePositive int `json:"false_positive" yaml:"false_positive"`
	TrueNegative  int `json:"true_negative" yaml:"true_negative"`
	FalseNegative int `json:"false_negative" yaml:"false_negative"`
	Processed     int `json:"processed" yaml:"processed"`
}

// Total returns TP+FP+TN+FN.
func (c ConfusionCounts) Total() int {
	return c.TruePositive + c.FalsePositive + c.TrueNegative + c.FalseNegative
}

// Metrics are derived once from ConfusionCounts. All values are fractions in
// [0, 1].
type Metrics struct {
	Accuracy  float64 `json:"accuracy" yaml:"accuracy"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
}

// Values returns the metrics in renderer argument order.
func (m Metrics) Values() []float64 {
	return []float64{m.Accuracy, m.Precision, m.Recall, m.F1}
}
