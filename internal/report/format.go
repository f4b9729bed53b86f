package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/ads-report/internal/model"
)

// Output formats accepted by Encode.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Format renders a human-readable markdown report. Accuracy, precision and
// recall are shown as percentages; F1 is shown as a ratio.
func Format(r *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Classifier Evaluation Report: %s\n", r.Dataset)
	fmt.Fprintf(&b, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Performance Metrics\n")
	fmt.Fprintf(&b, "- Accuracy: %.2f%%\n", r.Metrics.Accuracy*100)
	fmt.Fprintf(&b, "- Precision: %.2f%%\n", r.Metrics.Precision*100)
	fmt.Fprintf(&b, "- Recall: %.2f%%\n", r.Metrics.Recall*100)
	fmt.Fprintf(&b, "- F1 Score: %.3f\n\n", r.Metrics.F1)

	c := r.Counts
	neg, pos := className(r, model.LabelNegative), className(r, model.LabelPositive)
	b.WriteString("## Confusion Matrix\n")
	fmt.Fprintf(&b, "- Total processed: %d\n", c.Processed)
	fmt.Fprintf(&b, "- True positives: %d (%s correctly flagged)\n", c.TruePositive, pos)
	fmt.Fprintf(&b, "- False positives: %d (%s flagged as %s)\n", c.FalsePositive, neg, pos)
	fmt.Fprintf(&b, "- True negatives: %d (%s correctly passed)\n", c.TrueNegative, neg)
	fmt.Fprintf(&b, "- False negatives: %d (%s missed)\n\n", c.FalseNegative, pos)

	d := r.Diagnostics
	b.WriteString("## Diagnostics\n")
	fmt.Fprintf(&b, "- Rows read: %d\n", d.Rows)
	fmt.Fprintf(&b, "- Valid rows: %d\n", d.Valid)
	fmt.Fprintf(&b, "- Skipped (unrecognized label): %d\n", d.SkippedLabel)
	fmt.Fprintf(&b, "- Numeric cells defaulted to 0: %d\n", d.CoercedCells)
	fmt.Fprintf(&b, "- Malformed rows skipped: %d\n\n", d.MalformedRows)

	b.WriteString("## Exploratory Summary\n")
	if len(r.Explore.Classes) == 0 {
		b.WriteString("No classes observed.\n\n")
	} else {
		b.WriteString("| Class | URLs | Avg length | Median | Std dev | P90 | IP usage |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, cs := range r.Explore.Classes {
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f | %.1f | %.1f | %d |\n",
				cs.Label, cs.Count, cs.MeanLength, cs.Length.Median, cs.Length.StdDev, cs.Length.P90, cs.IPCount)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Charts\n")
	for _, ch := range r.Charts {
		switch ch.Status {
		case model.ChartStatusOK:
			fmt.Fprintf(&b, "- %s: %s\n", ch.Title, ch.URL)
		case model.ChartStatusUnavailable:
			fmt.Fprintf(&b, "- %s: unavailable (%s)\n", ch.Title, ch.Error)
		default:
			fmt.Fprintf(&b, "- %s: FAILED (%s)\n", ch.Title, ch.Error)
			if ch.Output != "" {
				fmt.Fprintf(&b, "  Output: %s\n", strings.ReplaceAll(ch.Output, "\n", "\n  "))
			}
		}
	}

	return b.String()
}

// className returns the dataset literal for l, falling back to the default
// label set when the report has no class summaries.
func className(r *model.Report, l model.Label) string {
	if i := l.Index(); i >= 0 && i < len(r.Explore.Classes) && r.Explore.Classes[i].Label != "" {
		return r.Explore.Classes[i].Label
	}
	return model.DefaultLabelSet().Name(l)
}

// Encode writes r to w in the given format.
func Encode(w io.Writer, r *model.Report, format string) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		_, err := io.WriteString(w, Format(r))
		return eris.Wrap(err, "report: write text")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: encode yaml")
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
}
