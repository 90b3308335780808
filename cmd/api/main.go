package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patelpulse/pulse-backend/api/controllers"
	"github.com/patelpulse/pulse-backend/api/routes"
	"github.com/patelpulse/pulse-backend/internal/auth"
	"github.com/patelpulse/pulse-backend/internal/authz"
	"github.com/patelpulse/pulse-backend/internal/blog"
	checkoutsvc "github.com/patelpulse/pulse-backend/internal/checkout"
	"github.com/patelpulse/pulse-backend/internal/content"
	"github.com/patelpulse/pulse-backend/internal/payments"
	"github.com/patelpulse/pulse-backend/internal/products"
	"github.com/patelpulse/pulse-backend/internal/ratings"
	"github.com/patelpulse/pulse-backend/internal/repo"
	"github.com/patelpulse/pulse-backend/internal/reviews"
	"github.com/patelpulse/pulse-backend/internal/sales"
	"github.com/patelpulse/pulse-backend/pkg/config"
	"github.com/patelpulse/pulse-backend/pkg/db"
	"github.com/patelpulse/pulse-backend/pkg/db/models"
	"github.com/patelpulse/pulse-backend/pkg/instance"
	"github.com/patelpulse/pulse-backend/pkg/logger"
	"github.com/patelpulse/pulse-backend/pkg/metrics"
	"github.com/patelpulse/pulse-backend/pkg/migrate"
	"github.com/patelpulse/pulse-backend/pkg/outbox"
	"github.com/patelpulse/pulse-backend/pkg/razorpay"
	"github.com/patelpulse/pulse-backend/pkg/redis"
)

const (
	webhookGuardScope = "razorpay-webhook"
	shutdownTimeout   = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := buildDependencies(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (routes.Dependencies, error) {
	conn := dbClient.DB()
	ratingMetrics := metrics.NewRatingMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	aggregator := ratings.NewAggregator()

	var scheduler ratings.Scheduler = ratings.NewInlineScheduler(aggregator, ratingMetrics)
	if cfg.FeatureFlags.AsyncRatings {
		scheduler = ratings.NewOutboxScheduler(emitter)
	}

	gateway, err := razorpay.NewClient(cfg.Razorpay)
	if err != nil {
		return routes.Dependencies{}, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:        auth.NewRepository(conn),
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, dbClient, aggregator, ratingMetrics, cfg.Razorpay.Currency)
	if err != nil {
		return routes.Dependencies{}, err
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(conn), productRepo, dbClient, scheduler, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	blogService, err := blog.NewService(conn, dbClient)
	if err != nil {
		return routes.Dependencies{}, err
	}

	contentService, err := content.NewService(conn, dbClient, cfg.Razorpay.Currency)
	if err != nil {
		return routes.Dependencies{}, err
	}

	salesRepo := sales.NewRepository(conn)
	eventLog := payments.NewEventLog(conn)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Sales:    salesRepo,
		Products: productRepo,
		Services: repo.NewTable[models.Service](conn, "service"),
		Gateway:  gateway,
		DB:       dbClient,
		Logger:   logg,
		Currency: cfg.Razorpay.Currency,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	salesService, err := sales.NewAdminService(salesRepo, eventLog, dbClient, emitter, logg)
	if err != nil {
		return routes.Dependencies{}, err
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Sales:             salesRepo,
		EventLog:          eventLog,
		Outbox:            emitter,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           webhookMetrics,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	guard, err := payments.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, webhookGuardScope)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Config: cfg,
		Logger: logg,
		Health: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		},
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:   redisClient,
		ResponseStore: redisClient,
		Authorizer:    authz.NewRolePolicy(),
		Auth:          authService,
		Products:      productService,
		Reviews:       reviewService,
		Blog:          blogService,
		Content:       contentService,
		Checkout:      checkoutService,
		Sales:         salesService,
		Webhook:       paymentService,
		WebhookGuard:  guard,
		WebhookSecret: gateway,
	}, nil
}
