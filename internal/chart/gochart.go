package chart

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/sells-group/ads-report/internal/explore"
	"github.com/sells-group/ads-report/internal/model"
)

// AggregateFunc recomputes the exploratory aggregate of a dataset.
type AggregateFunc func(ctx context.Context, datasetPath string) (*explore.Aggregate, error)

// GoChartOptions sizes the in-process charts.
type GoChartOptions struct {
	Width    int
	Height   int
	BinWidth int
}

var (
	colorNegative = drawing.ColorFromHex("2ca02c")
	colorPositive = drawing.ColorFromHex("d62728")
	metricColors  = []drawing.Color{
		drawing.ColorFromHex("1f77b4"),
		drawing.ColorFromHex("ff7f0e"),
		drawing.ColorFromHex("2ca02c"),
		drawing.ColorFromHex("9467bd"),
	}
	metricNames = []string{"Accuracy", "Precision", "Recall", "F1 Score"}
)

// GoChartRenderer draws every chart kind in-process with go-chart. It needs no
// interpreter, so it has no prerequisites.
type GoChartRenderer struct {
	source AggregateFunc
	labels model.LabelSet
	opts   GoChartOptions
}

// NewGoChartRenderer creates a GoChartRenderer. Zero options fall back to an
// 800x450 canvas and the default bin width.
func NewGoChartRenderer(source AggregateFunc, labels model.LabelSet, opts GoChartOptions) *GoChartRenderer {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 450
	}
	if opts.BinWidth <= 0 {
		opts.BinWidth = explore.DefaultBinWidth
	}
	return &GoChartRenderer{source: source, labels: labels, opts: opts}
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

// Render draws req.Kind into req.OutputPath. The file is created exclusively
// so concurrent runs never share an image.
func (g *GoChartRenderer) Render(ctx context.Context, req Request) (Artifact, error) {
	artifact := Artifact{Path: req.OutputPath}

	c, err := g.build(ctx, req)
	if err != nil {
		return artifact, &ChartError{Kind: req.Kind, Err: err}
	}

	f, err := os.OpenFile(req.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return artifact, &ChartError{Kind: req.Kind, Err: eris.Wrap(err, "chart: create image")}
	}
	if err := c.Render(chart.PNG, f); err != nil {
		f.Close()
		return artifact, &ChartError{Kind: req.Kind, Err: eris.Wrap(err, "chart: draw image")}
	}
	if err := f.Close(); err != nil {
		return artifact, &ChartError{Kind: req.Kind, Err: eris.Wrap(err, "chart: write image")}
	}
	return artifact, nil
}

func (g *GoChartRenderer) build(ctx context.Context, req Request) (renderable, error) {
	switch req.Kind {
	case model.ChartMetricsBar:
		return g.metricsBar(req.Metrics)
	case model.ChartStatusPie, model.ChartAvgLengthBar, model.ChartIPUsageBar,
		model.ChartLengthHist, model.ChartLengthDots:
	default:
		return nil, eris.Errorf("chart: unknown chart kind %q", req.Kind)
	}

	agg, err := g.source(ctx, req.DatasetPath)
	if err != nil {
		return nil, eris.Wrap(err, "chart: aggregate dataset")
	}
	if agg.Total() == 0 {
		return nil, eris.New("chart: dataset has no valid records")
	}

	switch req.Kind {
	case model.ChartStatusPie:
		return g.statusPie(agg)
	case model.ChartAvgLengthBar:
		return g.classBar(req.Kind, "Average Length (characters)", func(l model.Label) float64 {
			return agg.RoundedMean(l)
		}), nil
	case model.ChartIPUsageBar:
		return g.classBar(req.Kind, "URLs using an IP address", func(l model.Label) float64 {
			return float64(agg.Bucket(l).IPCount)
		}), nil
	case model.ChartLengthHist:
		return g.lengthHist(agg)
	default:
		return g.lengthDots(agg)
	}
}

func (g *GoChartRenderer) metricsBar(metrics []float64) (renderable, error) {
	if len(metrics) != MetricsArgCount {
		return nil, eris.Errorf("chart: metrics summary requires %d values, got %d", MetricsArgCount, len(metrics))
	}
	bars := make([]chart.Value, len(metrics))
	for i, v := range metrics {
		bars[i] = chart.Value{
			Label: metricNames[i],
			Value: v,
			Style: chart.Style{FillColor: metricColors[i], StrokeColor: metricColors[i]},
		}
	}
	return chart.BarChart{
		Title:      model.ChartMetricsBar.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      g.opts.Width,
		Height:     g.opts.Height,
		BarWidth:   g.opts.Width / 8,
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}, nil
}

func (g *GoChartRenderer) statusPie(agg *explore.Aggregate) (renderable, error) {
	var values []chart.Value
	for _, l := range model.Labels {
		n := agg.Bucket(l).Count
		if n == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: g.labels.Display(l),
			Value: float64(n),
			Style: chart.Style{FillColor: classColor(l)},
		})
	}
	return chart.PieChart{
		Title:  model.ChartStatusPie.Title(),
		Width:  g.opts.Width,
		Height: g.opts.Height,
		Values: values,
	}, nil
}

func (g *GoChartRenderer) classBar(kind model.ChartKind, axis string, value func(model.Label) float64) renderable {
	bars := make([]chart.Value, 0, len(model.Labels))
	top := 0.0
	for _, l := range model.Labels {
		v := value(l)
		top = math.Max(top, v)
		bars = append(bars, chart.Value{
			Label: g.labels.Display(l),
			Value: v,
			Style: chart.Style{FillColor: classColor(l), StrokeColor: classColor(l)},
		})
	}
	return chart.BarChart{
		Title:      kind.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      g.opts.Width,
		Height:     g.opts.Height,
		BarWidth:   g.opts.Width / 5,
		YAxis: chart.YAxis{
			Name:  axis,
			Range: &chart.ContinuousRange{Min: 0, Max: paddedMax(top)},
		},
		Bars: bars,
	}
}

func (g *GoChartRenderer) lengthHist(agg *explore.Aggregate) (renderable, error) {
	h := agg.Histogram(g.opts.BinWidth)
	if h.Empty() {
		return nil, eris.New("chart: histogram has no values")
	}

	spacing := 2
	barWidth := (g.opts.Width-120)/h.Bins() - spacing
	if barWidth < 1 {
		barWidth = 1
	}

	bars := make([]chart.StackedBar, h.Bins())
	for i, label := range h.Labels {
		values := make([]chart.Value, 0, len(model.Labels))
		for _, l := range model.Labels {
			values = append(values, chart.Value{
				Label: g.labels.Display(l),
				Value: float64(h.Counts(l)[i]),
				Style: chart.Style{FillColor: classColor(l), StrokeColor: classColor(l)},
			})
		}
		bars[i] = chart.StackedBar{Name: label, Width: barWidth, Values: values}
	}
	return chart.StackedBarChart{
		Title:      model.ChartLengthHist.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      g.opts.Width,
		Height:     g.opts.Height,
		BarSpacing: spacing,
		Bars:       bars,
	}, nil
}

func (g *GoChartRenderer) lengthDots(agg *explore.Aggregate) (renderable, error) {
	var series []chart.Series
	xr := bounds{lo: math.Inf(1), hi: math.Inf(-1)}
	yr := bounds{lo: math.Inf(1), hi: math.Inf(-1)}
	for _, l := range model.Labels {
		points := agg.Bucket(l).Points
		if len(points) == 0 {
			continue
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i], ys[i] = p.X, p.Y
			xr.add(p.X)
			yr.add(p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    g.labels.Display(l),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: 0,
				StrokeColor: drawing.ColorTransparent,
				DotWidth:    3,
				DotColor:    classColor(l),
			},
		})
	}
	if len(series) == 0 {
		return nil, eris.New("chart: no scatter points")
	}

	c := chart.Chart{
		Title:      model.ChartLengthDots.Title(),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      g.opts.Width,
		Height:     g.opts.Height,
		XAxis:      chart.XAxis{Name: "URL Length", Range: xr.padded()},
		YAxis:      chart.YAxis{Name: "Number of Dots", Range: yr.padded()},
		Series:     series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return c, nil
}

func classColor(l model.Label) drawing.Color {
	if l == model.LabelPositive {
		return colorPositive
	}
	return colorNegative
}

func paddedMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}

type bounds struct {
	lo, hi float64
}

func (b *bounds) add(v float64) {
	b.lo = math.Min(b.lo, v)
	b.hi = math.Max(b.hi, v)
}

// padded widens the range by 5% on each side; a single value gets a unit
// range so the axis is never degenerate.
func (b bounds) padded() *chart.ContinuousRange {
	span := b.hi - b.lo
	if span <= 0 {
		return &chart.ContinuousRange{Min: b.lo - 1, Max: b.hi + 1}
	}
	pad := span * 0.05
	return &chart.ContinuousRange{Min: b.lo - pad, Max: b.hi + pad}
}
