package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/ads-report/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset" mapstructure:"dataset"`
	Renderer RendererConfig `yaml:"renderer" mapstructure:"renderer"`
	Charts   ChartsConfig   `yaml:"charts" mapstructure:"charts"`
	Explore  ExploreConfig  `yaml:"explore" mapstructure:"explore"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DatasetConfig describes the input CSV.
type DatasetConfig struct {
	Path       string         `yaml:"path" mapstructure:"path"`
	Columns    ColumnsConfig  `yaml:"columns" mapstructure:"columns"`
	Labels     model.LabelSet `yaml:"labels" mapstructure:"labels"`
	Delimiter  string         `yaml:"delimiter" mapstructure:"delimiter"`
	LazyQuotes bool           `yaml:"lazy_quotes" mapstructure:"lazy_quotes"`
}

// ColumnsConfig maps logical fields to CSV header names.
type ColumnsConfig struct {
	Actual    string `yaml:"actual" mapstructure:"actual"`
	Predicted string `yaml:"predicted" mapstructure:"predicted"`
	Length    string `yaml:"length" mapstructure:"length"`
	IP        string `yaml:"ip" mapstructure:"ip"`
	Dots      string `yaml:"dots" mapstructure:"dots"`
}

// RendererConfig selects and tunes the chart renderer.
type RendererConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"` // exec | gochart
	Interpreter    string `yaml:"interpreter" mapstructure:"interpreter"`
	Script         string `yaml:"script" mapstructure:"script"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinBytes       int64  `yaml:"min_bytes" mapstructure:"min_bytes"`
	MaxOutputBytes int    `yaml:"max_output_bytes" mapstructure:"max_output_bytes"`
	Width          int    `yaml:"width" mapstructure:"width"`
	Height         int    `yaml:"height" mapstructure:"height"`
}

// Timeout returns the per-chart renderer timeout.
func (r RendererConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// ChartsConfig configures where images go and which charts are produced.
type ChartsConfig struct {
	OutputDir string   `yaml:"output_dir" mapstructure:"output_dir"`
	URLBase   string   `yaml:"url_base" mapstructure:"url_base"`
	Kinds     []string `yaml:"kinds" mapstructure:"kinds"`
}

// ExploreConfig tunes the exploratory aggregate.
type ExploreConfig struct {
	BinWidth         int `yaml:"bin_width" mapstructure:"bin_width"`
	MaxScatterPoints int `yaml:"max_scatter_points" mapstructure:"max_scatter_points"`
	MaxBins          int `yaml:"max_bins" mapstructure:"max_bins"`
}

// BatchConfig configures multi-dataset runs.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the report server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	RatePerSec  float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int      `yaml:"burst" mapstructure:"burst"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADSREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.path", "data/phishing_data_with_predictions.csv")
	v.SetDefault("dataset.columns.actual", "status")
	v.SetDefault("dataset.columns.predicted", "predicted_status")
	v.SetDefault("dataset.columns.length", "length_url")
	v.SetDefault("dataset.columns.ip", "ip")
	v.SetDefault("dataset.columns.dots", "nb_dots")
	v.SetDefault("dataset.labels.negative", "legitimate")
	v.SetDefault("dataset.labels.positive", "phishing")
	v.SetDefault("dataset.delimiter", ",")
	v.SetDefault("dataset.lazy_quotes", false)
	v.SetDefault("renderer.driver", "exec")
	v.SetDefault("renderer.interpreter", "python3")
	v.SetDefault("renderer.script", "scripts/generate_chart.py")
	v.SetDefault("renderer.timeout_secs", 60)
	v.SetDefault("renderer.min_bytes", 100)
	v.SetDefault("renderer.max_output_bytes", 2000)
	v.SetDefault("renderer.width", 800)
	v.SetDefault("renderer.height", 450)
	v.SetDefault("charts.output_dir", "charts")
	v.SetDefault("charts.url_base", "/charts/")
	v.SetDefault("charts.kinds", chartKindTokens(model.DefaultChartKinds))
	v.SetDefault("explore.bin_width", 25)
	v.SetDefault("explore.max_scatter_points", 0)
	v.SetDefault("explore.max_bins", 1000)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_per_sec", 1.0)
	v.SetDefault("server.burst", 3)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings needed by mode ("report" or "serve") and
// reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "report":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RatePerSec <= 0 || c.Server.Burst <= 0 {
			errs = append(errs, "server.rate_per_sec and server.burst must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Renderer.Driver {
	case "exec":
		if c.Renderer.Script == "" {
			errs = append(errs, "renderer.script is required for the exec driver")
		}
	case "gochart":
	default:
		errs = append(errs, fmt.Sprintf("renderer.driver %q must be exec or gochart", c.Renderer.Driver))
	}
	if c.Renderer.TimeoutSecs <= 0 {
		errs = append(errs, "renderer.timeout_secs must be > 0")
	}
	if c.Renderer.MinBytes < 0 {
		errs = append(errs, "renderer.min_bytes must be >= 0")
	}
	if c.Explore.BinWidth <= 0 {
		errs = append(errs, "explore.bin_width must be > 0")
	}
	if c.Explore.MaxBins <= 0 {
		errs = append(errs, "explore.max_bins must be > 0")
	}
	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 32 {
		errs = append(errs, "batch.max_concurrent must be between 1 and 32")
	}
	if c.Charts.OutputDir == "" {
		errs = append(errs, "charts.output_dir is required")
	}

	neg := strings.ToLower(strings.TrimSpace(c.Dataset.Labels.Negative))
	pos := strings.ToLower(strings.TrimSpace(c.Dataset.Labels.Positive))
	if neg == "" || pos == "" || neg == pos {
		errs = append(errs, fmt.Sprintf("dataset.labels must be two distinct values (got %q, %q)", neg, pos))
	}
	if len([]rune(c.Dataset.Delimiter)) > 1 {
		errs = append(errs, fmt.Sprintf("dataset.delimiter must be a single character (got %q)", c.Dataset.Delimiter))
	}
	if _, err := c.ChartKinds(); err != nil {
		errs = append(errs, "charts.kinds: "+err.Error())
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ChartKinds returns the configured chart kinds in report order.
func (c *Config) ChartKinds() ([]model.ChartKind, error) {
	if len(c.Charts.Kinds) == 0 {
		return model.DefaultChartKinds, nil
	}
	return model.ParseChartKinds(c.Charts.Kinds)
}

// DelimiterRune returns the CSV delimiter, 0 meaning the reader default.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Dataset.Delimiter {
		return r
	}
	return 0
}

func chartKindTokens(kinds []model.ChartKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
