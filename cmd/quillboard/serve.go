// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quillboard Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/quillboard/quillboard/internal/account"
	accountpg "github.com/quillboard/quillboard/internal/account/postgres"
	"github.com/quillboard/quillboard/internal/config"
	"github.com/quillboard/quillboard/internal/logging"
	"github.com/quillboard/quillboard/internal/observability"
	"github.com/quillboard/quillboard/internal/store"
	"github.com/quillboard/quillboard/internal/web"
)

// shutdownTimeout bounds graceful server shutdown on exit.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the accounts API server",
		Long: `Start the accounts API server together with the observability
endpoints (metrics and health probes). Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, autoMigrate)
		},
	}

	// Flags mirror config file keys; config.Load resolves precedence.
	cmd.Flags().String("listen-addr", config.DefaultListenAddr, "API listen address")
	cmd.Flags().String("observability-addr", config.DefaultObservabilityAddr, "metrics/health listen address")
	cmd.Flags().String("database-url", "", "PostgreSQL connection string")
	cmd.Flags().String("token-secret", "", "session token signing secret")
	cmd.Flags().Duration("token-ttl", config.DefaultTokenTTL, "session token lifetime")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, autoMigrate bool) error {
	conf, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err //nolint:wrapcheck // config errors already carry codes
	}

	logging.SetDefault("quillboard", version, conf.LogFormat)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if autoMigrate {
		if err := applyMigrations(conf.DatabaseURL); err != nil {
			return err
		}
		slog.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, conf.DatabaseURL)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	issuer, err := account.NewTokenIssuer([]byte(conf.TokenSecret), conf.TokenTTL)
	if err != nil {
		return err //nolint:wrapcheck // issuer errors already carry codes
	}

	service, err := account.NewService(
		accountpg.NewUserRepository(pool),
		account.NewBcryptHasher(),
		issuer,
	)
	if err != nil {
		return oops.With("operation", "build account service").Wrap(err)
	}

	// Readiness tracks the database: the API is useless without it.
	obsServer := observability.NewServer(conf.ObservabilityAddr, func() bool {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer pingCancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, obsErrCh, "observability")

	apiServer, err := web.NewServer(conf.ListenAddr, service, obsServer.Metrics(), slog.Default())
	if err != nil {
		stopServer(obsServer.Stop, "observability")
		return oops.With("operation", "build api server").Wrap(err)
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServer(obsServer.Stop, "observability")
		return oops.With("operation", "start api server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Quillboard accounts service started")
	slog.Info("service ready",
		"api_addr", apiServer.Addr(),
		"observability_addr", obsServer.Addr(),
	)

	// Wait for shutdown signal or server failure
	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")
	stopServer(apiServer.Stop, "api")
	stopServer(obsServer.Stop, "observability")

	slog.Info("shutdown complete")
	return nil
}

// applyMigrations runs all pending migrations against the database.
func applyMigrations(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err //nolint:wrapcheck // migrator errors already carry codes
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			slog.Warn("error closing migrator", "error", closeErr)
		}
	}()

	return migrator.Up() //nolint:wrapcheck // migrator errors already carry codes
}

// stopServer stops a server with a bounded timeout, logging failures.
func stopServer(stop func(context.Context) error, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// This ensures that server failures trigger graceful shutdown of the entire process.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
