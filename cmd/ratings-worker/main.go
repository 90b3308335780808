package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/patelpulse/pulse-backend/internal/ratings"
	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/instance"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/outbox/registry"
	"github.com/patelpulse/pulse-backend/pkg/pubsub"
)

const serviceKind = "ratings-worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceKind})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	subscription := pubsubClient.DomainSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "domain subscription", errors.New("PULSE_PUBSUB_DOMAIN_SUBSCRIPTION is not configured"))
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	requireResource(ctx, logg, "event registry", err)

	consumer, err := ratings.NewConsumer(ratings.ConsumerParams{
		Subscription: subscription,
		Registry:     eventRegistry,
		DB:           dbClient,
		Aggregator:   ratings.NewAggregator(),
		Logger:       logg,
		Metrics:      metrics.NewRatingMetrics(prometheus.DefaultRegisterer),
	})
	requireResource(ctx, logg, "ratings consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":          cfg.App.Env,
		"serviceKind":  serviceKind,
		"subscription": cfg.PubSub.DomainSubscription,
		"instance":     instance.GetID(),
	})
	metrics.Serve(runCtx, cfg.App.MetricsAddr, prometheus.DefaultGatherer, logg)
	logg.Info(runCtx, "starting ratings worker")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "ratings worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "ratings worker shutting down gracefully")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
