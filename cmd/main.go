package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/controller"
	httpserver "lead-tracking-service/internal/http"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/metrics"
	"lead-tracking-service/internal/platforms"
	"lead-tracking-service/internal/service"
	"lead-tracking-service/internal/tagrelay"
	"lead-tracking-service/internal/tracking"
	"lead-tracking-service/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog, err := logger.NewLogger(cfg.AppMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var emitter platforms.ClientEmitter
	if cfg.NATSURL != "" {
		relay, closeRelay, err := tagrelay.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, appLog)
		if err != nil {
			appLog.Warnw("client-side tag relay unavailable", "error", err)
		} else {
			defer closeRelay()
			emitter = relay
		}
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	trackingClient := httpclient.NewClient(httpclient.ClientConfig{
		Timeout:  cfg.TrackingHTTPTimeout,
		RetryMax: cfg.TrackingHTTPRetries,
	})
	coordinator := tracking.NewCoordinator(appLog, recorder,
		platforms.FromConfig(cfg, trackingClient, emitter, appLog)...)
	appLog.Infow("tracking platforms enabled", "platforms", coordinator.EnabledPlatforms())

	webhookClient := httpclient.NewClient(httpclient.ClientConfig{Timeout: cfg.WebhookTimeout})
	submitter := webhook.NewSubmitter(cfg.WebhookURL, webhookClient)

	worker := service.NewLeadWorker(coordinator, cfg.WorkerBufferSize, cfg.TrackingJobTimeout, recorder, appLog)
	contactService := service.NewContactService(submitter, worker, recorder, appLog)
	trackingService := service.NewTrackingService(coordinator)
	trackingController := controller.NewTrackingController(contactService, trackingService,
		controller.CookieConfig{Secure: cfg.CookieSecure, SessionTTL: cfg.SessionTTL})

	server := httpserver.NewServer(cfg, trackingController, recorder.Handler())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.Errorw("server shutdown failed", "error", err)
		}
	}()

	appLog.Infow("starting server", "addr", cfg.HTTPPort)
	if err := server.Listen(cfg.HTTPPort); err != nil {
		appLog.Errorw("server stopped", "error", err)
	}

	worker.Shutdown()
	appLog.Info("shutdown complete")
}
