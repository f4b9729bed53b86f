package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ads-report/internal/model"
	"github.com/sells-group/ads-report/internal/report"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch <dataset.csv>...",
	Short: "Evaluate several datasets concurrently",
	Long: `Runs one independent report per dataset. Reports share the chart output
directory; every image gets a unique name so runs never overwrite each other.
A failing dataset is logged and does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gen, err := newGenerator()
		if err != nil {
			return err
		}

		limit := batchConcurrency
		if limit <= 0 {
			limit = cfg.Batch.MaxConcurrent
		}

		results := processBatch(ctx, args, limit, gen.Generate)
		printBatchSummary(cmd.OutOrStdout(), results)

		for _, r := range results {
			if r.Err != nil {
				return eris.Errorf("batch: %d of %d datasets failed", countFailed(results), len(results))
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max reports in flight (default from config)")
	batchCmd.Flags().StringSliceVar(&reportCharts, "charts", nil, "chart kinds to render, in order (default from config)")
	batchCmd.Flags().StringVar(&reportDriver, "driver", "", "renderer driver: exec or gochart (default from config)")
	rootCmd.AddCommand(batchCmd)
}

type generateFunc func(ctx context.Context, datasetPath string) (*model.Report, error)

// batchResult is the outcome for one dataset, kept in argument order.
type batchResult struct {
	Dataset string
	Report  *model.Report
	Err     error
}

// processBatch runs generate for every dataset with at most limit in flight.
// Individual failures are recorded, never propagated.
func processBatch(ctx context.Context, datasets []string, limit int, generate generateFunc) []batchResult {
	if limit <= 0 {
		limit = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]batchResult, len(datasets))
	var succeeded, failed atomic.Int64

	for i, path := range datasets {
		g.Go(func() error {
			rep, err := generate(gCtx, path)
			results[i] = batchResult{Dataset: path, Report: rep, Err: err}
			if err != nil {
				failed.Add(1)
				zap.L().Error("batch: dataset failed",
					zap.String("dataset", path),
					zap.Bool("fatal", report.IsFatal(err)),
					zap.Error(err),
				)
				return nil // don't abort batch on individual failure
			}
			succeeded.Add(1)
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("batch: complete",
		zap.Int("total", len(datasets)),
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results
}

func printBatchSummary(w io.Writer, results []batchResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tERROR\t%s\n", r.Dataset, report.Banner(r.Err))
			continue
		}
		ok := 0
		for _, ch := range r.Report.Charts {
			if ch.OK() {
				ok++
			}
		}
		m := r.Report.Metrics
		fmt.Fprintf(w, "%s\trows=%d\taccuracy=%.4f\tprecision=%.4f\trecall=%.4f\tf1=%.4f\tcharts=%d/%d\n",
			r.Dataset, r.Report.Counts.Processed, m.Accuracy, m.Precision, m.Recall, m.F1, ok, len(r.Report.Charts))
	}
}

func countFailed(results []batchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
