package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/koxixo/orders-backend/api/routes"
	"github.com/koxixo/orders-backend/internal/audit"
	"github.com/koxixo/orders-backend/internal/orders"
	"github.com/koxixo/orders-backend/pkg/config"
	"github.com/koxixo/orders-backend/pkg/db"
	"github.com/koxixo/orders-backend/pkg/logger"
	"github.com/koxixo/orders-backend/pkg/metrics"
	"github.com/koxixo/orders-backend/pkg/migrate"
	"github.com/koxixo/orders-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	auditRecorder, err := audit.NewRecorder(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit recorder", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:           orders.NewRepository(dbClient.DB()),
		Tx:             dbClient,
		Audit:          auditRecorder,
		Logger:         logg,
		RequestTimeout: cfg.Orders.RequestTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Cache:       redisClient,
			Idempotency: redisClient,
			Metrics:     httpMetrics,
			Orders:      ordersService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
