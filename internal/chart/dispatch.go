package chart

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ads-report/internal/model"
)

// Defaults applied when a Dispatcher field is left zero.
const (
	DefaultMinBytes  int64 = 100
	DefaultMaxOutput int   = 2000
)

// Dispatcher invokes a Renderer for one chart kind at a time and turns the
// outcome into a model.ChartResult. Dispatch never returns an error: every
// problem is captured in the result so sibling charts still render.
type Dispatcher struct {
	Renderer  Renderer
	OutputDir string
	URLBase   string
	MinBytes  int64
	MaxOutput int
	Now       func() time.Time
}

// Dispatch renders kind for the dataset at datasetPath. metrics is only used
// by the metrics summary, which requires exactly four values.
func (d *Dispatcher) Dispatch(ctx context.Context, datasetPath string, kind model.ChartKind, metrics []float64) model.ChartResult {
	result := model.ChartResult{Kind: kind, Title: kind.Title(), Status: model.ChartStatusFailed}
	log := zap.L().With(zap.String("chart", string(kind)))

	if !kind.Known() {
		result.Error = "unknown chart kind"
		return result
	}

	req := Request{DatasetPath: datasetPath, Kind: kind}
	if kind == model.ChartMetricsBar {
		if len(metrics) != MetricsArgCount {
			result.Error = "metrics summary requires " + strconv.Itoa(MetricsArgCount) + " values"
			log.Warn("chart: metrics summary not rendered", zap.Int("values", len(metrics)))
			return result
		}
		req.Metrics = metrics
	}

	name := string(kind) + "_" + uuid.NewString() + ".png"
	req.OutputPath = filepath.Join(d.OutputDir, name)

	artifact, err := d.Renderer.Render(ctx, req)
	output := Sanitize(artifact.Output, d.maxOutput())
	if err != nil {
		var ce *ChartError
		if errors.As(err, &ce) && ce.Output != "" && output == "" {
			output = Sanitize(ce.Output, d.maxOutput())
		}
		removeQuietly(req.OutputPath)
		result.Error = failureMessage(err)
		result.Output = output
		log.Warn("chart: renderer failed", zap.Error(err), zap.String("output", output))
		return result
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil || info.IsDir() {
		result.Error = "renderer produced no image"
		result.Output = output
		log.Warn("chart: image missing", zap.String("path", req.OutputPath), zap.String("output", output))
		return result
	}
	if info.Size() <= d.minBytes() {
		removeQuietly(req.OutputPath)
		result.Error = "renderer produced an image of " + strconv.FormatInt(info.Size(), 10) + " bytes"
		result.Output = output
		log.Warn("chart: image too small", zap.Int64("bytes", info.Size()), zap.String("output", output))
		return result
	}

	result.Status = model.ChartStatusOK
	result.ImagePath = req.OutputPath
	result.URL, result.Token = d.url(name)
	result.Output = output
	log.Debug("chart: rendered", zap.String("path", req.OutputPath), zap.Int64("bytes", info.Size()))
	return result
}

// Unavailable returns the result for a chart that cannot be drawn because its
// data is empty. The renderer is not invoked.
func Unavailable(kind model.ChartKind, reason string) model.ChartResult {
	return model.ChartResult{
		Kind:   kind,
		Title:  kind.Title(),
		Status: model.ChartStatusUnavailable,
		Error:  reason,
	}
}

// url returns the image URL with its cache-busting token, and the token.
func (d *Dispatcher) url(name string) (string, string) {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	token := strconv.FormatInt(now().Unix(), 10)
	return d.URLBase + url.PathEscape(name) + "?t=" + token, token
}

func (d *Dispatcher) minBytes() int64 {
	if d.MinBytes <= 0 {
		return DefaultMinBytes
	}
	return d.MinBytes
}

func (d *Dispatcher) maxOutput() int {
	if d.MaxOutput <= 0 {
		return DefaultMaxOutput
	}
	return d.MaxOutput
}

func failureMessage(err error) string {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Err.Error()
	}
	return err.Error()
}

// Sanitize makes renderer output safe to embed in a report: invalid UTF-8 and
// control characters other than newline and tab are replaced, and the result
// is clipped to at most limit bytes.
func Sanitize(s string, limit int) string {
	s = strings.ToValidUTF8(s, "�")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if limit > 0 && len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// PrepareOutputDir creates dir if needed and verifies it accepts new files.
func PrepareOutputDir(dir string) error {
	if dir == "" {
		return model.NewConfigurationError("chart output directory", eris.New("not configured"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.NewConfigurationError("chart output directory "+dir, err)
	}
	probe, err := os.CreateTemp(dir, ".write-check-*")
	if err != nil {
		return model.NewConfigurationError("chart output directory "+dir, eris.Wrap(err, "not writable"))
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return eris.Wrap(err, "chart: remove write check")
	}
	return nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		zap.L().Debug("chart: remove leftover image", zap.String("path", path), zap.Error(err))
	}
}
