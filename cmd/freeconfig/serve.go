package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vpnclashfa-backup/freeconfig/internal/api"
	"github.com/vpnclashfa-backup/freeconfig/internal/config"
	"github.com/vpnclashfa-backup/freeconfig/internal/job"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the optional collection schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), c)
		},
	}
}

// newHTTPServer constructs a baseline http.Server with conservative defaults.
func newHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}

func runServe(parent context.Context, c *cli) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger := c.cfg, c.logger
	a := newApp(cfg, logger, nil)

	deps := api.Deps{
		Parser:   a.parser,
		Registry: a.registry,
		Subset:   a.subset,
		Metrics:  a.metrics,
	}

	scheduler := job.NewScheduler(logger, 0)
	if cfg.Collect.Schedule != "" && len(cfg.Collect.Sources) > 0 {
		collectJob := job.NewCollectJob(a.collector, cfg.Collect.Sources, logger)
		if _, err := scheduler.Register(cfg.Collect.Schedule, collectJob); err != nil {
			return err
		}
		deps.Snapshot = collectJob
		// warm the snapshot instead of waiting for the first tick
		go scheduler.RunNow(collectJob)
		scheduler.Start()
	} else if cfg.Collect.Schedule != "" {
		logger.Warn("collect.schedule set without collect.sources, scheduled collection disabled")
	}

	server := newHTTPServer(cfg.HTTP, api.NewRouter(logger, deps, cfg.HTTP, cfg.Metrics))

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr, "protocols", len(a.registry.MatchOrder()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down http server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}
	logger.Info("server exited cleanly")
	return nil
}
