package chart

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ads-report/internal/model"
)

// MetricsArgCount is the number of values the metrics summary expects.
const MetricsArgCount = 4

// SafeArg validates one argument handed to the renderer process. Arguments are
// passed as argv without a shell; they must still be free of NUL and control
// characters and must not look like an option flag.
func SafeArg(s string) (string, error) {
	if s == "" {
		return "", eris.New("chart: empty argument")
	}
	if strings.HasPrefix(s, "-") {
		return "", eris.Errorf("chart: argument %q looks like a flag", s)
	}
	for _, r := range s {
		if r == 0 || unicode.IsControl(r) {
			return "", eris.Errorf("chart: argument %q contains control characters", s)
		}
	}
	return s, nil
}

// SafePath makes p absolute and validates it with SafeArg.
func SafePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", eris.Wrapf(err, "chart: resolve path %q", p)
	}
	return SafeArg(abs)
}

// FormatMetric renders a metric as fixed-precision decimal text.
func FormatMetric(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", eris.Errorf("chart: metric value %v is not finite", v)
	}
	return strconv.FormatFloat(v, 'f', 6, 64), nil
}

// BuildArgs returns the positional renderer arguments for req: dataset path,
// output path, chart kind, then the metric values for the metrics summary.
func BuildArgs(req Request) ([]string, error) {
	if !req.Kind.Known() {
		return nil, eris.Errorf("chart: unknown chart kind %q", req.Kind)
	}

	dataset, err := SafePath(req.DatasetPath)
	if err != nil {
		return nil, err
	}
	output, err := SafePath(req.OutputPath)
	if err != nil {
		return nil, err
	}
	kind, err := SafeArg(string(req.Kind))
	if err != nil {
		return nil, err
	}

	args := []string{dataset, output, kind}
	if req.Kind != model.ChartMetricsBar {
		return args, nil
	}

	if len(req.Metrics) != MetricsArgCount {
		return nil, eris.Errorf("chart: metrics summary requires %d values, got %d", MetricsArgCount, len(req.Metrics))
	}
	for _, v := range req.Metrics {
		s, err := FormatMetric(v)
		if err != nil {
			return nil, err
		}
		args = append(args, s)
	}
	return args, nil
}
