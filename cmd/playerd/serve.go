// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bigpot/playerd/internal/auth"
	"github.com/bigpot/playerd/internal/auth/postgres"
	"github.com/bigpot/playerd/internal/config"
	"github.com/bigpot/playerd/internal/logging"
	"github.com/bigpot/playerd/internal/observability"
	"github.com/bigpot/playerd/internal/store"
	"github.com/bigpot/playerd/internal/wallet"
	"github.com/bigpot/playerd/internal/web"
	"github.com/bigpot/playerd/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the player account service",
		Long: `Start the HTTP API and observability servers. Requires a PostgreSQL
database and a token signing key; the process refuses to listen without them.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.addr", "", "API listen address")
	cmd.Flags().String("observability.addr", "", "metrics and health listen address")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("wallet.url", "", "wallet provisioning URL (empty disables)")
	cmd.Flags().String("log.level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", "", "log format (json, text)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Config validation runs before anything listens; a missing signing
	// key or database URL aborts startup here.
	cfg, err := config.Load(resolveConfigFile(), cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault(logging.Options{
		Service: "playerd",
		Version: version,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})
	slog.Info("configuration loaded", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	codec, err := auth.NewTokenCodec([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	var provisioner auth.WalletProvisioner
	if cfg.Wallet.URL != "" {
		client, err := wallet.NewClient(cfg.Wallet.URL, cfg.Wallet.Timeout)
		if err != nil {
			return err
		}
		provisioner = client
	} else {
		slog.Warn("wallet provisioning disabled, no wallet.url configured")
	}

	svc, err := auth.NewService(
		postgres.NewPlayerRepository(pool),
		auth.NewArgon2idHasher(),
		codec,
		provisioner,
	)
	if err != nil {
		return err
	}

	var ready atomic.Bool

	obs := observability.NewServer(cfg.Observability.Addr, ready.Load)
	obsErrCh, err := obs.Start()
	if err != nil {
		return oops.With("operation", "start observability server").Wrap(err)
	}

	api, err := web.NewServer(cfg.Server.Addr, svc, obs.Metrics())
	if err != nil {
		return err
	}
	apiErrCh, err := api.Start()
	if err != nil {
		stopServers(cfg, obs, nil)
		return oops.With("operation", "start api server").Wrap(err)
	}

	ready.Store(true)
	slog.Info("playerd is serving", "api", api.Addr(), "observability", obs.Addr())

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-apiErrCh:
		if err != nil {
			errutil.LogError(slog.Default(), "api server failed", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			errutil.LogError(slog.Default(), "observability server failed", err)
		}
	}

	ready.Store(false)
	stopServers(cfg, obs, api)
	return nil
}

// stopServers shuts both servers down within the configured timeout.
func stopServers(cfg *config.Config, obs *observability.Server, api *web.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if api != nil {
		if err := api.Stop(shutdownCtx); err != nil {
			errutil.LogError(slog.Default(), "api server shutdown failed", err)
		}
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "observability server shutdown failed", err)
	}
}
