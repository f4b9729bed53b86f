package main

import (
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ads-report/internal/model"
	"github.com/sells-group/ads-report/internal/report"
)

var (
	reportDataset string
	reportFormat  string
	reportOutput  string
	reportXLSX    string
	reportCharts  []string
	reportDriver  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate one dataset and render its charts",
	Long: `Reads the dataset once, computes the confusion matrix and derived metrics,
aggregates exploratory statistics and renders every configured chart.

A chart that fails to render is reported inline; the rest of the report is
still produced. Missing columns or an unusable renderer abort the run.

Examples:
  ads-report report --dataset data/phishing.csv
  ads-report report --dataset data/phishing.csv --format json --output report.json
  ads-report report --charts metrics_bar,url_len_hist --driver gochart --xlsx report.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gen, err := newGenerator()
		if err != nil {
			return err
		}

		rep, err := gen.Generate(ctx, reportDataset)
		if err != nil {
			zap.L().Error("report failed", zap.Bool("fatal", report.IsFatal(err)), zap.Error(err))
			return eris.Wrap(err, report.Banner(err))
		}

		if err := writeReport(cmd.OutOrStdout(), rep); err != nil {
			return err
		}

		if reportXLSX != "" {
			if err := report.ExportXLSX(rep, reportXLSX); err != nil {
				return err
			}
			zap.L().Info("report: wrote workbook", zap.String("path", reportXLSX))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDataset, "dataset", "", "dataset CSV path (default from config)")
	reportCmd.Flags().StringVar(&reportFormat, "format", report.FormatText, "output format: text, json or yaml")
	reportCmd.Flags().StringVar(&reportOutput, "output", "", "write the report to this file instead of stdout")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also export the report as an xlsx workbook")
	reportCmd.Flags().StringSliceVar(&reportCharts, "charts", nil, "chart kinds to render, in order (default from config)")
	reportCmd.Flags().StringVar(&reportDriver, "driver", "", "renderer driver: exec or gochart (default from config)")
	rootCmd.AddCommand(reportCmd)
}

// newGenerator applies the command-line overrides to cfg, validates it and
// builds a report generator.
func newGenerator() (*report.Generator, error) {
	if reportDriver != "" {
		cfg.Renderer.Driver = reportDriver
	}
	if len(reportCharts) > 0 {
		cfg.Charts.Kinds = reportCharts
	}
	if err := cfg.Validate("report"); err != nil {
		return nil, err
	}
	return report.NewGenerator(cfg)
}

func writeReport(stdout io.Writer, rep *model.Report) error {
	if reportOutput == "" {
		return report.Encode(stdout, rep, reportFormat)
	}

	f, err := os.Create(reportOutput)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", reportOutput)
	}
	defer f.Close()

	if err := report.Encode(f, rep, reportFormat); err != nil {
		return err
	}
	zap.L().Info("report: wrote output",
		zap.String("path", reportOutput),
		zap.String("format", strings.ToLower(reportFormat)),
	)
	return nil
}
