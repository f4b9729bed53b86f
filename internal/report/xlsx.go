package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/ads-report/internal/model"
)

// ExportXLSX writes r as a workbook with Metrics, Exploratory, Histogram and
// Charts sheets.
func ExportXLSX(r *model.Report, path string) error {
	f := xlsx.NewFile()

	metrics, err := f.AddSheet("Metrics")
	if err != nil {
		return eris.Wrap(err, "report: add metrics sheet")
	}
	addStrings(metrics, "Metric", "Value")
	addFloat(metrics, "Accuracy", r.Metrics.Accuracy)
	addFloat(metrics, "Precision", r.Metrics.Precision)
	addFloat(metrics, "Recall", r.Metrics.Recall)
	addFloat(metrics, "F1 Score", r.Metrics.F1)
	addInt(metrics, "Total processed", r.Counts.Processed)
	addInt(metrics, "True positives", r.Counts.TruePositive)
	addInt(metrics, "False positives", r.Counts.FalsePositive)
	addInt(metrics, "True negatives", r.Counts.TrueNegative)
	addInt(metrics, "False negatives", r.Counts.FalseNegative)
	addInt(metrics, "Rows read", r.Diagnostics.Rows)
	addInt(metrics, "Skipped (unrecognized label)", r.Diagnostics.SkippedLabel)
	addInt(metrics, "Numeric cells defaulted to 0", r.Diagnostics.CoercedCells)
	addInt(metrics, "Malformed rows skipped", r.Diagnostics.MalformedRows)

	explore, err := f.AddSheet("Exploratory")
	if err != nil {
		return eris.Wrap(err, "report: add exploratory sheet")
	}
	addStrings(explore, "Class", "URLs", "Avg length", "Min", "Max", "Median", "Std dev", "P90", "IP usage")
	for _, cs := range r.Explore.Classes {
		row := explore.AddRow()
		row.AddCell().SetString(cs.Label)
		row.AddCell().SetInt(cs.Count)
		for _, v := range []float64{cs.MeanLength, cs.Length.Min, cs.Length.Max, cs.Length.Median, cs.Length.StdDev, cs.Length.P90} {
			row.AddCell().SetFloat(v)
		}
		row.AddCell().SetInt(cs.IPCount)
	}

	hist, err := f.AddSheet("Histogram")
	if err != nil {
		return eris.Wrap(err, "report: add histogram sheet")
	}
	header := hist.AddRow()
	header.AddCell().SetString("Length bin")
	for _, cs := range r.Explore.Classes {
		header.AddCell().SetString(cs.Label)
	}
	for i, label := range r.Explore.Histogram.Labels {
		row := hist.AddRow()
		row.AddCell().SetString(label)
		for _, cs := range r.Explore.Classes {
			counts := r.Explore.Histogram.Counts[cs.Label]
			n := 0
			if i < len(counts) {
				n = counts[i]
			}
			row.AddCell().SetInt(n)
		}
	}

	charts, err := f.AddSheet("Charts")
	if err != nil {
		return eris.Wrap(err, "report: add charts sheet")
	}
	addStrings(charts, "Kind", "Title", "Status", "Image", "Error")
	for _, ch := range r.Charts {
		addStrings(charts, string(ch.Kind), ch.Title, string(ch.Status), ch.ImagePath, ch.Error)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save xlsx %s", path)
	}
	return nil
}

func addStrings(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addFloat(sheet *xlsx.Sheet, name string, v float64) {
	row := sheet.AddRow()
	row.AddCell().SetString(name)
	row.AddCell().SetFloat(v)
}

func addInt(sheet *xlsx.Sheet, name string, v int) {
	row := sheet.AddRow()
	row.AddCell().SetString(name)
	row.AddCell().SetInt(v)
}
