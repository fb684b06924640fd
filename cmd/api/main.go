package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/tuanphm/teehouse-backend/api/controllers"
	"github.com/tuanphm/teehouse-backend/api/routes"
	"github.com/tuanphm/teehouse-backend/internal/catalog"
	"github.com/tuanphm/teehouse-backend/internal/inventory"
	"github.com/tuanphm/teehouse-backend/internal/orders"
	"github.com/tuanphm/teehouse-backend/internal/payments"
	"github.com/tuanphm/teehouse-backend/internal/pricing"
	"github.com/tuanphm/teehouse-backend/internal/reconcile"
	"github.com/tuanphm/teehouse-backend/pkg/config"
	"github.com/tuanphm/teehouse-backend/pkg/db"
	"github.com/tuanphm/teehouse-backend/pkg/logger"
	"github.com/tuanphm/teehouse-backend/pkg/migrate"
	"github.com/tuanphm/teehouse-backend/pkg/outbox"
	"github.com/tuanphm/teehouse-backend/pkg/redis"
	"github.com/tuanphm/teehouse-backend/pkg/storage/gcs"
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(
		ordersRepo,
		catalog.NewRepository(dbClient.DB()),
		pricing.NewCalculator(cfg.Store, cfg.Shipping),
		inventory.NewLedger(),
		dbClient,
		outboxService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	domesticGateway, err := payments.NewDomesticGateway(cfg.Domestic)
	if err != nil {
		logg.Error(context.Background(), "failed to create domestic gateway", err)
		os.Exit(1)
	}
	cardGateway, err := payments.NewCardGateway(cfg.Stripe)
	if err != nil {
		logg.Error(context.Background(), "failed to create card gateway", err)
		os.Exit(1)
	}
	gatewayRegistry := payments.NewRegistry(payments.NewCashGateway(), domesticGateway, cardGateway)

	paymentsService, err := payments.NewService(ordersRepo, gatewayRegistry, cfg.Orders.GatewayTimeout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	reconcileService, err := reconcile.NewService(gatewayRegistry, ordersRepo, ordersService, cfg.Orders.GatewayTimeout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			Redis:          redisClient,
			Orders:         ordersService,
			Payments:       paymentsService,
			Reconcile:      reconcileService,
			DesignUploader: controllers.NewDesignUploader(gcsClient),
			Readiness: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
				"storage":  gcsClient,
			},
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
