package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mistward/paperfuse/internal/app"
	"github.com/mistward/paperfuse/internal/config"
	"github.com/mistward/paperfuse/internal/scheduler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Generate recommendations on a schedule",
	Long: `Daemon runs a fusion pass per schedule tick (schedule.interval, or daily at
schedule.at), records each surfacing and publishes each pass event. Prometheus
metrics are exposed while it runs. SIGINT or SIGTERM stops it cleanly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		application, err := app.New(cfg, app.Options{
			Mark:       true,
			Registerer: prometheus.DefaultRegisterer,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metricsServer := startMetricsServer(cfg, application.Logger)

		schedule := scheduler.New(cfg.Schedule, application.Logger)
		runErr := schedule.Run(ctx, func(ctx context.Context) error {
			result, err := application.Runner().RunPass(ctx)
			if err != nil {
				return err
			}
			application.Logger.WithFields(logrus.Fields{
				"pass_id": result.PassID,
				"items":   len(result.Items),
			}).Info("Scheduled pass complete")
			return nil
		})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				application.Logger.WithError(err).Error("Metrics server forced to shutdown")
			}
		}
		if err := application.Shutdown(shutdownCtx); err != nil {
			application.Logger.WithError(err).Error("Error during shutdown")
		}

		// A signal lands here as context.Canceled; that is a clean exit.
		if runErr != nil && !errors.Is(runErr, context.Canceled) {
			return runErr
		}

		application.Logger.Info("Daemon exited")
		return nil
	},
}

func startMetricsServer(cfg *config.Config, logger *logrus.Logger) *http.Server {
	if !cfg.Monitoring.Enabled {
		return nil
	}

	path := cfg.Monitoring.MetricsPath
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + cfg.Monitoring.Port,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()

	logger.WithField("addr", server.Addr).Info("Metrics server started")
	return server
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
