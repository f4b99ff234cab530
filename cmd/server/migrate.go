package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	downSteps int
	downTo    int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long: `Apply or roll back the embedded schema migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back migrations
  status  - Show migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, _, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		from, to, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		if from == to {
			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date at version %d\n", to)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrated from version %d to %d\n", from, to)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	Long: `Roll back applied migrations.

Examples:
  todo-api migrate down             # roll back the last migration
  todo-api migrate down --steps 3   # roll back three migrations
  todo-api migrate down --to 0      # drop every table`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, _, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := db.MigrationStatus(ctx)
		if err != nil {
			return err
		}

		target := status.Current - int32(downSteps)
		if cmd.Flags().Changed("to") {
			target = int32(downTo)
		}
		if target < 0 {
			target = 0
		}
		if target > status.Current {
			return fmt.Errorf("target version %d is above the current version %d", target, status.Current)
		}

		from, to, err := db.MigrateTo(ctx, target)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back from version %d to %d\n", from, to)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, _, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := db.MigrationStatus(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
		for _, m := range status.Migrations {
			state := "pending"
			if m.Version <= status.Current {
				state = "applied"
			}
			fmt.Fprintf(w, "%03d\t%s\t%s\n", m.Version, m.Name, state)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\ncurrent version %d of %d\n", status.Current, status.Latest())
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)

	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
	migrateDownCmd.Flags().IntVar(&downTo, "to", 0, "Roll back to this version (overrides --steps)")
}
