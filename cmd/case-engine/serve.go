package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/api"
	"github.com/caselens/case-engine/internal/query"
)

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, db, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			cacheClient := openCache(cfg)
			defer cacheClient.Close()

			var opts query.Options
			if cfg.Query.CacheAnswers {
				opts.Cache = cacheClient
				opts.CacheTTL = cfg.Query.CacheTTL
			}
			engine := query.NewEngine(logger, opts)

			server := api.NewServer(repo, engine, logger)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      server.Router(cfg.Server.ReadTimeout),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				IdleTimeout:  cfg.Server.IdleTimeout,
			}

			serverErrors := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", addr).Msg("HTTP server listening")
				serverErrors <- srv.ListenAndServe()
			}()

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErrors:
				logger.Error().Err(err).Msg("server error")
			case sig := <-shutdown:
				logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error().Err(err).Msg("graceful shutdown failed")
				if err := srv.Close(); err != nil {
					logger.Error().Err(err).Msg("forced shutdown failed")
				}
			}

			logger.Info().Msg("server stopped")
			return nil
		},
	}

	return cmd
}
