package cmd

import (
	"context"

	"scorecard/config"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// NewRootCommand builds the scorecard command tree
func NewRootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "scorecard",
		Short:         "Daily credit scorecard batch pipeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Init(configFile)
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (default ./config.yaml if present)")
	flags.String("db", "", "PostgreSQL server URL (overrides DATABASE_URL)")
	flags.String("db-name", "", "Database name appended to the server URL")
	flags.String("data-dir", "", "Root directory of the daily source drops")
	flags.String("output-dir", "", "Directory for exported metrics files")
	flags.String("schema", "", "Path to the data quality schema (quality step is skipped when empty)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	v := config.Viper()
	_ = v.BindPFlag("database.url", flags.Lookup("db"))
	_ = v.BindPFlag("database.name", flags.Lookup("db-name"))
	_ = v.BindPFlag("pipeline.data_dir", flags.Lookup("data-dir"))
	_ = v.BindPFlag("pipeline.output_dir", flags.Lookup("output-dir"))
	_ = v.BindPFlag("pipeline.quality_schema", flags.Lookup("schema"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(metricsCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

// Execute runs the command tree until it finishes or ctx is cancelled
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
