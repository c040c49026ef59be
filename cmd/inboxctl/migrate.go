package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popeskul/crm-inbox/internal/infrastructure/migrate"
)

func migrateCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVarP(&path, "path", "p", migrate.DefaultMigrationsPath, "migrations directory")

	runner := func() *migrate.Runner {
		return migrate.NewRunner(&migrate.Config{
			DatabaseURL:    a.cfg.Database.GetURL(),
			MigrationsPath: path,
		}, a.logger)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner().Up()
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner().Down(steps)
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := runner().Version()
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty)\n", version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
			return nil
		},
	})

	return cmd
}
