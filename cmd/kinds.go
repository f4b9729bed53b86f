package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/ads-report/internal/model"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List chart kinds and the configured renderer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kinds, err := cfg.ChartKinds()
		if err != nil {
			return err
		}
		printKinds(cmd.OutOrStdout(), kinds, cfg.Renderer.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func printKinds(w io.Writer, enabled []model.ChartKind, driver string) {
	on := make(map[model.ChartKind]bool, len(enabled))
	for _, k := range enabled {
		on[k] = true
	}

	fmt.Fprintf(w, "renderer: %s\n", driver)
	for _, k := range model.DefaultChartKinds {
		mark := " "
		if on[k] {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-20s %s\n", mark, k, k.Title())
	}
}
