package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/taskboard/taskboard-go/internal/config"
	"github.com/taskboard/taskboard-go/internal/repository"
)

// NewMigrateCmd creates the migrate subcommand and its up, down and version children.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply or roll back the embedded schema migrations for the configured
database driver. PostgreSQL connection strings must be URLs (postgres://...).`,
	}
	addDatabaseFlags(cmd.PersistentFlags())

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *repository.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *repository.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Rolled back one migration")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *repository.Migrator) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			cmd.Printf("version %d (dirty: %t)\n", v, dirty)
			return nil
		}),
	})

	return cmd
}

// withMigrator loads the configuration, opens a migrator for it and closes
// the migrator once run returns.
func withMigrator(run func(cmd *cobra.Command, m *repository.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}

		m, err := repository.NewMigrator(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return oops.Code("MIGRATION_FAILED").With("driver", cfg.Database.Driver).Wrap(err)
		}
		defer func() {
			if closeErr := m.Close(); closeErr != nil && err == nil {
				err = oops.Code("MIGRATION_FAILED").Wrap(closeErr)
			}
		}()

		if err := run(cmd, m); err != nil {
			return oops.Code("MIGRATION_FAILED").With("driver", cfg.Database.Driver).Wrap(err)
		}
		return nil
	}
}
