package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terravilla/marketplace/internal/bootstrap"
	"github.com/terravilla/marketplace/internal/config"
	"github.com/terravilla/marketplace/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := bootstrap.ValidateWorkerBackend(cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "marketplace-worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("marketplace-worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("worker_metrics_server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	app.Logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeListingSubmitted(ctx, func(handlerCtx context.Context, plotID string) error {
		verifyCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if plot, err := app.Plots.GetByID(verifyCtx, plotID); err == nil {
			workerMetrics.ObserveQueueLag("marketplace-worker", time.Since(plot.UpdatedAt))
		}

		workerMetrics.StartVerification()
		start := time.Now()
		verifyErr := app.Verify.VerifyListing(verifyCtx, plotID)
		workerMetrics.FinishVerification("marketplace-worker", time.Since(start), verifyErr)
		return verifyErr
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
