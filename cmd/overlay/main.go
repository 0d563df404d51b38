package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/seislive/intensity-overlay/internal/adapter/http"
	kafkaadapter "github.com/seislive/intensity-overlay/internal/adapter/kafka"
	"github.com/seislive/intensity-overlay/internal/adapter/kmoni"
	"github.com/seislive/intensity-overlay/internal/appclock"
	"github.com/seislive/intensity-overlay/internal/config"
	"github.com/seislive/intensity-overlay/internal/directory"
	"github.com/seislive/intensity-overlay/internal/observability"
	"github.com/seislive/intensity-overlay/internal/overlay"
	"github.com/seislive/intensity-overlay/internal/poller"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	clock := clockwork.NewRealClock()
	appClock := appclock.New(clock)

	client := kmoni.NewClient(cfg.StationListURL, cfg.RealtimeBaseURL, clock, logger)
	dir := directory.NewLoader(client, cfg.DirectoryTimeout, logger, metrics)
	p := poller.New(client, appClock, clock, cfg, logger, metrics)

	// Overlay publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher overlay.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("overlay publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("overlay publishing disabled")
	}

	timeSink := func(formatted string) {
		logger.Debug("display time updated", "display_time", formatted)
	}

	svc := overlay.NewService(dir, p.Updates(), publisher, timeSink, p, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, appClock, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm the station directory cache; failures are tolerated and retried
	// lazily on the first applied snapshot.
	go dir.Load(ctx)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the snapshot poller and the overlay renderer.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("poller error", "error", err)
		}
	}()
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("overlay service error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
