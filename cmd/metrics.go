package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/model"
)

var metricsPretty bool

var metricsCmd = &cobra.Command{
	Use:   "metrics [STATE...]",
	Short: "Compute metrics summaries and print them as JSON",
	Long:  "Computes the metrics summary for the given state codes, or for all states when none are given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		asm, closer, err := newAssembler(ctx)
		if err != nil {
			return err
		}
		defer closer()

		codes := args
		if len(codes) == 0 {
			codes = model.StateCodes
		}

		results, err := asm.SummarizeAll(ctx, codes)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		if metricsPretty {
			enc.SetIndent("", "  ")
		}
		// encoding/json sorts map keys, so output order is stable for diffs.
		if err := enc.Encode(results); err != nil {
			return err
		}

		zap.L().Debug("metrics computed", zap.Int("states", len(results)))
		return nil
	},
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsPretty, "pretty", false, "indent JSON output")
	rootCmd.AddCommand(metricsCmd)
}
