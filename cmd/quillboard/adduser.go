// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillboard/quillboard/internal/account"
	accountpg "github.com/quillboard/quillboard/internal/account/postgres"
	"github.com/quillboard/quillboard/internal/store"
)

// Default timeout for adduser command.
const defaultAddUserTimeout = 30 * time.Second

// addUserConfig holds configuration for the adduser subcommand.
type addUserConfig struct {
	username string
	email    string
	password string
	timeout  time.Duration
}

// NewAddUserCmd creates the adduser subcommand.
func NewAddUserCmd() *cobra.Command {
	cfg := &addUserConfig{}

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account from the command line",
		Long: `Creates a user account directly against the database, applying the
same validation and password hashing as the registration API. This command is
idempotent - an existing username is reported, not treated as a failure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAddUser(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "username", "", "username for the new account")
	cmd.Flags().StringVar(&cfg.email, "email", "", "email address for the new account")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password for the new account")
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultAddUserTimeout, "timeout for database operations (e.g., 30s, 1m)")

	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag is registered above
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag is registered above
	_ = cmd.MarkFlagRequired("password") //nolint:errcheck // flag is registered above

	return cmd
}

func runAddUser(cmd *cobra.Command, cfg *addUserConfig) error {
	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	// Same validation as the registration API; the password stands in for
	// its own confirmation since there is no form to re-type it in.
	if valid, fields := account.ValidateRegisterInput(cfg.username, cfg.email, cfg.password, cfg.password); !valid {
		for _, f := range fields {
			cmd.PrintErrf("%s: %s\n", f.Field, f.Message)
		}
		return oops.Code("ADDUSER_INVALID_INPUT").Errorf("invalid account details")
	}

	// Add timeout to prevent indefinite hangs
	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	hash, err := account.NewBcryptHasher().Hash(cfg.password)
	if err != nil {
		return oops.Code("ADDUSER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user := &account.User{
		ID:           ulid.Make(),
		Username:     cfg.username,
		Email:        cfg.email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	// Attempt to create the user; handle duplicate gracefully
	if err := accountpg.NewUserRepository(pool).Create(ctx, user); err != nil {
		if errors.Is(err, account.ErrUsernameTaken) {
			cmd.Printf("User %q already exists, skipping\n", cfg.username)
			slog.Info("user already exists", "username", cfg.username)
			return nil
		}
		return oops.Code("ADDUSER_FAILED").With("operation", "create user").Wrap(err)
	}

	cmd.Printf("Created user %q (%s)\n", user.Username, user.ID)
	slog.Info("user created", "user_id", user.ID.String(), "username", user.Username)
	return nil
}
