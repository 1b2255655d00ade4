package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"realestate-insights/api"
	"realestate-insights/services"
	"realestate-insights/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the statistics engine behind the dashboard API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	d, err := loadDeps()
	if err != nil {
		return err
	}
	defer func() { _ = d.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := d.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	metrics := telemetry.NewMetrics()
	pipeline := services.NewPipeline(source,
		services.WithLogger(d.logger),
		services.WithMetrics(metrics),
		services.WithFetchTimeout(d.cfg.FetchTimeout()),
		services.WithMaxConcurrency(d.cfg.MaxConcurrency),
		services.WithInitialSelection(d.cfg.DefaultCity, d.cfg.DefaultGroupField),
	)
	if err := pipeline.Start(); err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.NewHandler(pipeline, d.logger), metrics.Handler(), d.logger)
	srv := &http.Server{
		Addr:              d.cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("listening on %s (source: %s)", d.cfg.HTTPAddr, d.cfg.DataSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		d.logger.Info("shutting down")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("http shutdown: %v", err)
	}
	if err := pipeline.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("pipeline shutdown: %v", err)
	}

	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}
