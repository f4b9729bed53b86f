package report

import (
	"context"

	"github.com/sells-group/ads-report/internal/config"
	"github.com/sells-group/ads-report/internal/dataset"
	"github.com/sells-group/ads-report/internal/explore"
	"github.com/sells-group/ads-report/internal/model"
)

// SourceFromConfig maps the dataset section of cfg to a dataset.Source.
func SourceFromConfig(cfg *config.Config) dataset.Source {
	cols := cfg.Dataset.Columns
	return dataset.Source{
		Columns: dataset.Columns{
			Actual:    cols.Actual,
			Predicted: cols.Predicted,
			Length:    cols.Length,
			IP:        cols.IP,
			Dots:      cols.Dots,
		},
		Labels: cfg.Dataset.Labels,
		CSV: dataset.CSVOptions{
			Delimiter:  cfg.DelimiterRune(),
			LazyQuotes: cfg.Dataset.LazyQuotes,
		},
	}
}

// ScanExploratory reads path once and returns only its exploratory aggregate.
// The in-process renderer uses it to recompute chart data from the dataset
// path alone.
func ScanExploratory(ctx context.Context, path string, src dataset.Source, opts explore.Options) (*explore.Aggregate, error) {
	agg := explore.New(opts)
	_, err := dataset.Load(ctx, path, src, func(rec model.ClassifiedRecord) {
		agg.Add(rec)
	})
	if err != nil {
		return nil, err
	}
	return agg, nil
}
