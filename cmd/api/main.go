package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maxmagma/wedstay-backend/api/routes"
	"github.com/maxmagma/wedstay-backend/internal/aggregator"
	"github.com/maxmagma/wedstay-backend/internal/inquiries"
	"github.com/maxmagma/wedstay-backend/internal/orders"
	"github.com/maxmagma/wedstay-backend/internal/products"
	"github.com/maxmagma/wedstay-backend/internal/profiles"
	"github.com/maxmagma/wedstay-backend/internal/reviews"
	"github.com/maxmagma/wedstay-backend/internal/vendors"
	"github.com/maxmagma/wedstay-backend/pkg/config"
	"github.com/maxmagma/wedstay-backend/pkg/db"
	"github.com/maxmagma/wedstay-backend/pkg/logger"
	"github.com/maxmagma/wedstay-backend/pkg/metrics"
	"github.com/maxmagma/wedstay-backend/pkg/migrate"
	"github.com/maxmagma/wedstay-backend/pkg/redis"
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

	svcs, err := buildServices(dbClient, redisClient, logg)
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
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger) (routes.Services, error) {
	gdb := dbClient.DB()

	vendorRepo := vendors.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	inquiryRepo := inquiries.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	reviewRepo := reviews.NewRepository(gdb)
	profileRepo := profiles.NewRepository(gdb)

	counterMetrics := metrics.NewCounterEventMetrics(prometheus.DefaultRegisterer)
	aggregatorSvc, err := aggregator.NewService(dbClient, aggregator.NewRepository(gdb), redisClient, counterMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	vendorSvc, err := vendors.NewService(vendorRepo)
	if err != nil {
		return routes.Services{}, err
	}
	productSvc, err := products.NewService(productRepo, vendorRepo, aggregatorSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}
	inquirySvc, err := inquiries.NewService(inquiryRepo, productRepo, vendorRepo, aggregatorSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}
	orderSvc, err := orders.NewService(orderRepo, productRepo, aggregatorSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}
	reviewSvc, err := reviews.NewService(reviewRepo, productRepo, vendorRepo, orderRepo)
	if err != nil {
		return routes.Services{}, err
	}
	profileSvc, err := profiles.NewService(profileRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products:   productSvc,
		Vendors:    vendorSvc,
		Inquiries:  inquirySvc,
		Orders:     orderSvc,
		Reviews:    reviewSvc,
		Profiles:   profileSvc,
		Aggregator: aggregatorSvc,
	}, nil
}
