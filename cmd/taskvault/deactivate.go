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

// NewDeactivateUserCmd creates the deactivate-user subcommand.
func NewDeactivateUserCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "deactivate-user",
		Short: "Deactivate a user account",
		Long: `Deactivate the account registered under the given email. A
deactivated account can no longer log in, but keeps its email and
username reserved and its todos intact.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runDeactivateUser(cmd, cfg, email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the account to deactivate")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	_ = cmd.MarkFlagRequired("email") //nolint:errcheck // flag is registered above

	return cmd
}

func runDeactivateUser(cmd *cobra.Command, cfg *config.Config, email string) error {
	ctx := cmd.Context()
	logger := logging.Setup("taskvault", version, cfg.Log.Format, slog.LevelInfo, nil)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher(auth.HasherParams{
		Time:    cfg.Argon2.Time,
		Memory:  cfg.Argon2.MemoryK,
		Threads: cfg.Argon2.Threads,
	})
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Algorithm)
	if err != nil {
		return err
	}
	authSvc, err := auth.NewServiceWithLogger(users, hasher, issuer, cfg.JWT.TTL, logger)
	if err != nil {
		return err
	}

	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := authSvc.Deactivate(ctx, user.ID); err != nil {
		return err
	}

	cmd.Printf("User %s deactivated (id %s)\n", user.Username, user.ID)
	return nil
}
