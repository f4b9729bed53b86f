// Package report runs the evaluation pipeline for one dataset: schema
// resolution, a single streaming pass feeding both aggregators, metric
// derivation and one chart dispatch per configured chart kind.
package report

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ads-report/internal/chart"
	"github.com/sells-group/ads-report/internal/config"
	"github.com/sells-group/ads-report/internal/dataset"
	"github.com/sells-group/ads-report/internal/explore"
	"github.com/sells-group/ads-report/internal/metrics"
	"github.com/sells-group/ads-report/internal/model"
)

// Generator produces reports. It holds no per-run state and is safe for
// concurrent use.
type Generator struct {
	cfg        *config.Config
	source     dataset.Source
	explore    explore.Options
	renderer   chart.Renderer
	dispatcher *chart.Dispatcher
	kinds      []model.ChartKind
	now        func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithRenderer replaces the renderer selected by configuration.
func WithRenderer(r chart.Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// WithKinds overrides the configured chart kinds.
func WithKinds(kinds []model.ChartKind) Option {
	return func(g *Generator) { g.kinds = kinds }
}

// WithClock sets the time source for report timestamps and chart URLs.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator builds a Generator from cfg.
func NewGenerator(cfg *config.Config, opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg:     cfg,
		source:  SourceFromConfig(cfg),
		explore: explore.Options{
			MaxPoints: cfg.Explore.MaxScatterPoints,
			MaxBins:   cfg.Explore.MaxBins,
		},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.kinds == nil {
		kinds, err := cfg.ChartKinds()
		if err != nil {
			return nil, eris.Wrap(err, "report: chart kinds")
		}
		g.kinds = kinds
	}

	if g.renderer == nil {
		r, err := chart.NewRenderer(cfg.Renderer, g.aggregate, cfg.Dataset.Labels, cfg.Explore.BinWidth)
		if err != nil {
			return nil, eris.Wrap(err, "report: renderer")
		}
		g.renderer = r
	}

	g.dispatcher = &chart.Dispatcher{
		Renderer:  g.renderer,
		OutputDir: cfg.Charts.OutputDir,
		URLBase:   cfg.Charts.URLBase,
		MinBytes:  cfg.Renderer.MinBytes,
		MaxOutput: cfg.Renderer.MaxOutputBytes,
		Now:       g.now,
	}
	return g, nil
}

// Kinds returns the chart kinds rendered for every report, in order.
func (g *Generator) Kinds() []model.ChartKind {
	return g.kinds
}

// Renderer returns the renderer in use.
func (g *Generator) Renderer() chart.Renderer {
	return g.renderer
}

// Generate runs the pipeline on datasetPath, or on the configured dataset
// when datasetPath is empty. Configuration and schema problems are returned
// as errors before any chart is rendered; chart failures are reported per
// result. Cancellation is checked between chart dispatches.
func (g *Generator) Generate(ctx context.Context, datasetPath string) (*model.Report, error) {
	if datasetPath == "" {
		datasetPath = g.cfg.Dataset.Path
	}
	log := zap.L().With(zap.String("dataset", datasetPath))

	if err := g.CheckPrerequisites(datasetPath); err != nil {
		return nil, err
	}

	var acc metrics.Accumulator
	agg := explore.New(g.explore)
	stats, err := dataset.Load(ctx, datasetPath, g.source, func(rec model.ClassifiedRecord) {
		acc.Add(rec)
		agg.Add(rec)
	})
	if err != nil {
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, schemaErr
		}
		return nil, eris.Wrap(err, "report: read dataset")
	}

	log.Info("report: dataset aggregated",
		zap.Int("rows", stats.Rows),
		zap.Int("valid", stats.Valid),
		zap.Int("skipped_label", stats.SkippedLabel),
		zap.Int("coerced_cells", stats.CoercedCells),
		zap.Int("malformed_rows", stats.MalformedRows),
	)

	hist := agg.Histogram(g.cfg.Explore.BinWidth)
	if hist.Clamped > 0 {
		log.Warn("report: length values beyond the last histogram bin",
			zap.Int("clamped", hist.Clamped),
			zap.Int("bins", hist.Bins()),
		)
	}

	rep := &model.Report{
		Dataset:     datasetPath,
		GeneratedAt: g.now().UTC(),
		Counts:      acc.Counts(),
		Metrics:     acc.Metrics(),
		Diagnostics: stats.Diagnostics(),
		Explore:     agg.ViewWith(g.cfg.Dataset.Labels, hist),
		Charts:      make([]model.ChartResult, 0, len(g.kinds)),
	}

	values := rep.Metrics.Values()
	for _, kind := range g.kinds {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "report: cancelled")
		}

		var res model.ChartResult
		if agg.Total() == 0 {
			res = chart.Unavailable(kind, "no valid records")
		} else {
			res = g.dispatcher.Dispatch(ctx, datasetPath, kind, values)
		}
		rep.Charts = append(rep.Charts, res)
	}

	log.Info("report: complete",
		zap.Int("processed", rep.Counts.Processed),
		zap.Float64("accuracy", rep.Metrics.Accuracy),
		zap.Int("charts_ok", countOK(rep.Charts)),
		zap.Int("charts", len(rep.Charts)),
	)
	return rep, nil
}

// CheckPrerequisites verifies the dataset is readable, the renderer is usable
// and the chart directory accepts files. Every failure is a
// *model.ConfigurationError.
func (g *Generator) CheckPrerequisites(datasetPath string) error {
	info, err := os.Stat(datasetPath)
	if err != nil {
		return model.NewConfigurationError("dataset "+datasetPath, err)
	}
	if info.IsDir() {
		return model.NewConfigurationError("dataset "+datasetPath, eris.New("is a directory"))
	}
	f, err := os.Open(datasetPath)
	if err != nil {
		return model.NewConfigurationError("dataset "+datasetPath, err)
	}
	f.Close()

	if c, ok := g.renderer.(chart.Checker); ok {
		if err := c.CheckPrerequisites(); err != nil {
			return err
		}
	}
	return chart.PrepareOutputDir(g.cfg.Charts.OutputDir)
}

func (g *Generator) aggregate(ctx context.Context, datasetPath string) (*explore.Aggregate, error) {
	return ScanExploratory(ctx, datasetPath, g.source, g.explore)
}

func countOK(results []model.ChartResult) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
