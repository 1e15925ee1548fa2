package cmd

import (
	"time"

	"scorecard/config"
	"scorecard/generator"
	"scorecard/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var (
		runDateFlag  string
		skipGenerate bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate a day of source files and run every pipeline step",
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

			if !skipGenerate {
				gen := generator.New(generator.Config{
					RunDate: runDate,
					Apps:    cfg.GeneratorApps,
					Seed:    cfg.GeneratorSeed,
				})
				if _, _, err := gen.WriteDay(cfg.DataDir); err != nil {
					return err
				}
			}

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			batchID := uuid.NewString()
			defer a.Close(batchID)

			log.WithFields(log.Fields{
				"batchID": batchID,
				"runDate": models.FormatRunDate(runDate),
			}).Info("Starting pipeline run")

			result, err := a.pipeline.Run(ctx, batchID, runDate)
			if result != nil {
				printRunResult(cmd.OutOrStdout(), result)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&runDateFlag, "run-date", "", "Run date as YYYY-MM-DD (default today, UTC)")
	flags.BoolVar(&skipGenerate, "skip-generate", false, "Use existing files instead of generating synthetic data")
	flags.Int("n-apps", 0, "Number of synthetic applications to generate")
	flags.Int64("seed", 0, "Seed for synthetic data generation")
	flags.Bool("strict-quality", false, "Abort the run when data quality checks fail")
	flags.Bool("xlsx", false, "Also export the metrics breakdown as a spreadsheet")

	v := config.Viper()
	_ = v.BindPFlag("generator.n_apps", flags.Lookup("n-apps"))
	_ = v.BindPFlag("generator.seed", flags.Lookup("seed"))
	_ = v.BindPFlag("pipeline.strict_quality", flags.Lookup("strict-quality"))
	_ = v.BindPFlag("pipeline.export_xlsx", flags.Lookup("xlsx"))

	return cmd
}

func resumeCmd() *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Re-run a failed batch from its failed step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, config.Get())
			if err != nil {
				return err
			}
			defer a.Close(batchID)

			result, err := a.pipeline.Resume(ctx, batchID)
			if result != nil {
				printRunResult(cmd.OutOrStdout(), result)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&batchID, "batch-id", "", "Batch to resume")
	_ = cmd.MarkFlagRequired("batch-id")
	return cmd
}
