package main

import (
	"context"
	"net/http"
	"os"

	"github.com/feastline/feastline-backend/api/routes"
	"github.com/feastline/feastline-backend/internal/cart"
	"github.com/feastline/feastline-backend/internal/catalog"
	checkoutsvc "github.com/feastline/feastline-backend/internal/checkout"
	"github.com/feastline/feastline-backend/internal/coupons"
	"github.com/feastline/feastline-backend/internal/dashboard"
	"github.com/feastline/feastline-backend/internal/notify"
	"github.com/feastline/feastline-backend/internal/orders"
	"github.com/feastline/feastline-backend/internal/payouts"
	cashfreewebhook "github.com/feastline/feastline-backend/internal/webhooks/cashfree"
	"github.com/feastline/feastline-backend/pkg/cashfree"
	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db"
	"github.com/feastline/feastline-backend/pkg/logger"
	"github.com/feastline/feastline-backend/pkg/metrics"
	"github.com/feastline/feastline-backend/pkg/migrate"
	"github.com/feastline/feastline-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	cashfreeClient, err := cashfree.NewClient(context.Background(), cfg.Cashfree, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cashfree client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	couponsRepo := coupons.NewRepository(dbClient.DB())
	payoutsRepo := payouts.NewRepository(dbClient.DB())
	dashboardRepo := dashboard.NewRepository(dbClient.DB())
	notifyRepo := notify.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo})
	requireService(logg, "catalog", err)

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:    cartRepo,
		Catalog: catalogRepo,
	})
	requireService(logg, "cart", err)

	couponService, err := coupons.NewService(coupons.ServiceParams{Repo: couponsRepo})
	requireService(logg, "coupons", err)

	pushSender, err := notify.NewWebPushSender(cfg.WebPush)
	if err != nil {
		logg.Error(context.Background(), "failed to configure web push", err)
		os.Exit(1)
	}
	notifyService, err := notify.NewService(notify.ServiceParams{
		Repo:      notifyRepo,
		Broadcast: redisClient,
		Push:      pushSender,
		Outlets:   catalogRepo,
		Metrics:   orderMetrics,
		Logger:    logg,
		App:       cfg.App,
		Timeout:   cfg.Notify.DeliveryTimeout,
	})
	requireService(logg, "notify", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:     ordersRepo,
		Tx:       dbClient,
		Notifier: notifyService,
	})
	requireService(logg, "orders", err)

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Carts:    cartService,
		CartRepo: cartRepo,
		Orders:   ordersRepo,
		Catalog:  catalogRepo,
		Coupons:  couponService,
		Gateway:  cashfreeClient,
		Notifier: notifyService,
		Tx:       dbClient,
		Metrics:  orderMetrics,
		Logger:   logg,
		App:      cfg.App,
	})
	requireService(logg, "checkout", err)

	payoutService, err := payouts.NewService(payouts.ServiceParams{Repo: payoutsRepo})
	requireService(logg, "payouts", err)

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{
		Repo:   dashboardRepo,
		Cache:  redisClient,
		Config: cfg.Dashboard,
		Logger: logg,
	})
	requireService(logg, "dashboard", err)

	webhookGuard, err := cashfreewebhook.NewIdempotencyGuard(redisClient, cfg.Cashfree.IdempotencyTTL, "cashfree-webhook")
	requireService(logg, "webhook guard", err)

	webhookService, err := cashfreewebhook.NewService(cashfreewebhook.ServiceParams{
		Orders:   ordersRepo,
		Guard:    webhookGuard,
		Tx:       dbClient,
		Notifier: notifyService,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	requireService(logg, "cashfree webhook", err)

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
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			Redis:           redisClient,
			MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Catalog:         catalogService,
			CatalogRepo:     catalogRepo,
			Cart:            cartService,
			Checkout:        checkoutService,
			Orders:          ordersService,
			Coupons:         couponService,
			Payouts:         payoutService,
			Dashboard:       dashboardService,
			Notify:          notifyService,
			Cashfree:        cashfreeClient,
			CashfreeWebhook: webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+name+" service", err)
		os.Exit(1)
	}
}
