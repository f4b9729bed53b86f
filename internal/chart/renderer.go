// Package chart dispatches chart requests to a renderer and verifies the
// images it produces.
package chart

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ads-report/internal/config"
	"github.com/sells-group/ads-report/internal/model"
)

// Request describes one chart to render. Metrics is only set for the
// metrics summary; every other kind is recomputed by the renderer from
// DatasetPath.
type Request struct {
	DatasetPath string
	OutputPath  string
	Kind        model.ChartKind
	Metrics     []float64
}

// Artifact is what a renderer reports back: the image path it was asked to
// write and any diagnostic text it printed.
type Artifact struct {
	Path   string
	Output string
}

// Renderer draws a chart image at req.OutputPath.
type Renderer interface {
	Render(ctx context.Context, req Request) (Artifact, error)
}

// Checker is implemented by renderers that depend on something outside the
// process, such as an interpreter on PATH.
type Checker interface {
	CheckPrerequisites() error
}

// ChartError is a chart-level failure. It never aborts sibling charts.
type ChartError struct {
	Kind   model.ChartKind
	Output string
	Err    error
}

func (e *ChartError) Error() string {
	return "chart " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *ChartError) Unwrap() error {
	return e.Err
}

// NewRenderer creates a Renderer based on config. source is only used by the
// in-process driver.
func NewRenderer(cfg config.RendererConfig, source AggregateFunc, labels model.LabelSet, binWidth int) (Renderer, error) {
	switch cfg.Driver {
	case "exec", "":
		if cfg.Script == "" {
			return nil, eris.New("chart: exec driver requires renderer.script")
		}
		return NewExecRenderer(cfg.Interpreter, cfg.Script, cfg.Timeout()), nil
	case "gochart":
		if source == nil {
			return nil, eris.New("chart: gochart driver requires an aggregate source")
		}
		return NewGoChartRenderer(source, labels, GoChartOptions{
			Width:    cfg.Width,
			Height:   cfg.Height,
			BinWidth: binWidth,
		}), nil
	default:
		return nil, eris.Errorf("chart: unknown renderer driver %q", cfg.Driver)
	}
}
