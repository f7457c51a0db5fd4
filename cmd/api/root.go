package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/taskboard/taskboard-go/internal/config"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the taskboard CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "taskboard",
		Short:        "Taskboard - projects and tasks over HTTP",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if err := godotenv.Load(); err != nil {
				slog.Debug("no .env file found, using environment variables")
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSecretCmd())

	return cmd
}

// addDatabaseFlags registers the flags that override the database settings.
func addDatabaseFlags(flags *pflag.FlagSet) {
	defaults := config.Default()
	flags.String("database-driver", defaults.Database.Driver, "database driver (mysql or postgres)")
	flags.String("database-dsn", defaults.Database.DSN, "database connection string")
}
