// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/internal/auth"
	authpg "github.com/taskvault/taskvault/internal/auth/postgres"
	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/logging"
	"github.com/taskvault/taskvault/internal/store"
)

// createAdminFlags holds the create-admin subcommand's flag values.
type createAdminFlags struct {
	email    string
	username string
	password string
}

// NewCreateAdminCmd creates the create-admin subcommand.
func NewCreateAdminCmd() *cobra.Command {
	flags := &createAdminFlags{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a superuser account",
		Long: `Create a user account with superuser rights. The account goes
through the same validation as registration over the API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCreateAdmin(cmd, cfg, flags)
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "admin email address")
	cmd.Flags().StringVar(&flags.username, "username", "", "admin username")
	cmd.Flags().StringVar(&flags.password, "password", "", "admin password")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag is registered above
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag is registered above
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag is registered above

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, cfg *config.Config, flags *createAdminFlags) error {
	ctx := cmd.Context()
	logger := logging.Setup("taskvault", version, cfg.Log.Format, slog.LevelInfo, nil)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	hasher := auth.NewArgon2idHasher(auth.HasherParams{
		Time:    cfg.Argon2.Time,
		Memory:  cfg.Argon2.MemoryK,
		Threads: cfg.Argon2.Threads,
	})
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Algorithm)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewServiceWithLogger(
		authpg.NewUserRepository(pool), hasher, issuer, cfg.JWT.TTL, logger,
	)
	if err != nil {
		return err
	}

	user, err := authSvc.RegisterSuperuser(ctx, flags.email, flags.username, flags.password)
	if err != nil {
		return err
	}

	cmd.Printf("Superuser %s created (id %s)\n", user.Username, user.ID)
	return nil
}
