// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillboard/quillboard/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending database migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, down)
		},
	}

	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations instead of applying them")

	return cmd
}

func runMigrate(cmd *cobra.Command, down bool) error {
	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err //nolint:wrapcheck // migrator errors already carry codes
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	if down {
		cmd.Println("Rolling back migrations...")
		if err := migrator.Down(); err != nil {
			return err //nolint:wrapcheck // migrator errors already carry codes
		}
		cmd.Println("Rollback completed successfully")
		return nil
	}

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err //nolint:wrapcheck // migrator errors already carry codes
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return err //nolint:wrapcheck // migrator errors already carry codes
	}
	if dirty {
		cmd.Println("Warning: schema is in a dirty state")
	}
	cmd.Printf("Migrations completed successfully (schema version %d)\n", version)
	return nil
}

// resolveDatabaseURL resolves the connection string for commands that only
// touch the database and don't need the full (token-secret validated) config:
// the --database-url flag, then the DATABASE_URL environment variable.
func resolveDatabaseURL(cmd *cobra.Command) (string, error) {
	if flagURL, err := cmd.Flags().GetString("database-url"); err == nil && flagURL != "" {
		return flagURL, nil
	}
	if envURL := os.Getenv("DATABASE_URL"); envURL != "" {
		return envURL, nil
	}
	return "", oops.Code("CONFIG_DATABASE_URL_MISSING").
		Errorf("database-url is required (set DATABASE_URL or --database-url)")
}
