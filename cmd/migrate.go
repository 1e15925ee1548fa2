package cmd

import (
	"fmt"
	"strconv"

	"scorecard/config"
	"scorecard/database"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := databaseURL(config.Get())
			if err != nil {
				return err
			}
			return database.MigrateUp(dbURL)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps value: %s", args[0])
				}
				steps = n
			}

			dbURL, err := databaseURL(config.Get())
			if err != nil {
				return err
			}
			return database.MigrateDown(dbURL, steps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbURL, err := databaseURL(config.Get())
			if err != nil {
				return err
			}
			status, err := database.MigrateStatus(dbURL)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case !status.Applied:
				fmt.Fprintln(out, "No migrations applied")
			case status.Dirty:
				fmt.Fprintf(out, "Version %d (dirty)\n", status.Version)
			default:
				fmt.Fprintf(out, "Version %d\n", status.Version)
			}
			return nil
		},
	})

	return cmd
}
