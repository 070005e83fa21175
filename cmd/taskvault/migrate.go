// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/store"
)

// migrateFlags holds the migrate subcommand's flag values.
type migrateFlags struct {
	down  bool
	steps int
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	flags := &migrateFlags{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Apply pending database migrations against the PostgreSQL database.
Use --down to roll everything back, or --steps to migrate a fixed number
of versions (negative values migrate down).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return err
			}
			return runMigrate(cfg, flags, cmd)
		},
	}

	cmd.Flags().BoolVar(&flags.down, "down", false, "roll back all migrations (destructive)")
	cmd.Flags().IntVar(&flags.steps, "steps", 0, "number of migration steps (negative = down)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")

	return cmd
}

func runMigrate(cfg *config.Config, flags *migrateFlags, cmd *cobra.Command) error {
	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	switch {
	case flags.down:
		cmd.Println("Rolling back all migrations...")
		if err := migrator.Down(); err != nil {
			return err
		}
	case flags.steps != 0:
		cmd.Printf("Applying %d migration steps...\n", flags.steps)
		if err := migrator.Steps(flags.steps); err != nil {
			return err
		}
	default:
		cmd.Println("Running migrations...")
		if err := migrator.Up(); err != nil {
			return err
		}
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		cmd.Printf("Schema at version %d (DIRTY - manual intervention required)\n", version)
		return nil
	}
	cmd.Printf("Schema at version %d\n", version)
	return nil
}
