package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/postgres"
)

type migrateOptions struct {
	databaseURL    string
	migrationsPath string
}

func (o *migrateOptions) resolve() error {
	if o.databaseURL == "" {
		o.databaseURL = os.Getenv("NOTICE_DATABASE_URL")
	}
	if o.databaseURL == "" {
		return fmt.Errorf("--database-url or NOTICE_DATABASE_URL is required")
	}
	return nil
}

func newMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.databaseURL, "database-url", "", "database URL (pgx5://...; defaults to NOTICE_DATABASE_URL)")
	pf.StringVar(&opts.migrationsPath, "path", "migrations", "directory holding the migration files")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			if err := postgres.RunMigrations(opts.databaseURL, opts.migrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			if err := postgres.RollbackMigration(opts.databaseURL, opts.migrationsPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			version, dirty, err := postgres.MigrationStatus(opts.databaseURL, opts.migrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d, dirty: %t\n", version, dirty)
			return nil
		},
	}

	var forceVersion int
	force := &cobra.Command{
		Use:   "force",
		Short: "Force the migration version after a failed run",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(); err != nil {
				return err
			}
			if err := postgres.ForceMigrationVersion(opts.databaseURL, opts.migrationsPath, forceVersion); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forced version %d\n", forceVersion)
			return nil
		},
	}
	force.Flags().IntVar(&forceVersion, "version", 0, "version to force")
	_ = force.MarkFlagRequired("version")

	cmd.AddCommand(up, down, status, force)
	return cmd
}
