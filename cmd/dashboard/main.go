package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/county-home-values/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/county-home-values/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/county-home-values/internal/adapter/kafka"
	"github.com/couchcryptid/county-home-values/internal/adapter/render"
	"github.com/couchcryptid/county-home-values/internal/config"
	"github.com/couchcryptid/county-home-values/internal/dashboard"
	"github.com/couchcryptid/county-home-values/internal/observability"
	"github.com/couchcryptid/county-home-values/internal/pipeline"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	profile, err := config.LoadProfile(cfg.ProfileFile)
	if err != nil {
		logger.Error("failed to load profile", "path", cfg.ProfileFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := csvfile.NewReader(cfg.DataFile, logger)
	transformer := pipeline.NewTransformer(profile, logger)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var loaders []pipeline.SnapshotLoader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(reader, transformer, loaders, logger, metrics)

	snap, err := p.Run(ctx)
	if err != nil {
		logger.Error("failed to build snapshot", "error", err)
		if writer != nil {
			_ = writer.Close()
		}
		stop()
		os.Exit(1)
	}

	images := render.NewCache(cfg.RenderCacheSize)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, dashboard.NewRegistry(snap), images, metrics, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
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
