package cmd

import (
	"time"

	"scorecard/config"
	"scorecard/models"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a batch's run, load stats and step attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, config.Get())
			if err != nil {
				return err
			}
			defer a.Close("")

			run, err := a.ledger.GetRun(ctx, batchID)
			if err != nil {
				return err
			}
			stats, err := a.ledger.LoadStats(ctx, batchID)
			if err != nil {
				return err
			}
			steps, err := a.ledger.BatchStatus(ctx, batchID)
			if err != nil {
				return err
			}

			printBatchStatus(cmd.OutOrStdout(), run, stats, steps)
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch-id", "", "Batch to inspect")
	_ = cmd.MarkFlagRequired("batch-id")
	return cmd
}

func metricsCmd() *cobra.Command {
	var (
		runDateFlag string
		exportFiles bool
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show scorecard metrics for a run date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()

			runDate := models.NormalizeRunDate(time.Now())
			if runDateFlag != "" {
				var err error
				if runDate, err = models.ParseRunDate(runDateFlag); err != nil {
					return err
				}
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close("")

			comparison, err := a.engine.Compare(ctx, runDate)
			if err != nil {
				return err
			}
			breakdown, err := a.engine.Breakdown(ctx, runDate)
			if err != nil {
				return err
			}
			printMetrics(cmd.OutOrStdout(), comparison, breakdown)

			if exportFiles {
				paths, err := a.engine.ExportBreakdown(ctx, runDate, cfg.OutputDir)
				if err != nil {
					return err
				}
				printPaths(cmd.OutOrStdout(), paths)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&runDateFlag, "run-date", "", "Run date as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&exportFiles, "export", false, "Also write the breakdown files to the output directory")
	return cmd
}
