package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovenlight/bakeshop-backend/api/routes"
	cartsvc "github.com/ovenlight/bakeshop-backend/internal/cart"
	checkoutsvc "github.com/ovenlight/bakeshop-backend/internal/checkout"
	"github.com/ovenlight/bakeshop-backend/internal/inventory"
	"github.com/ovenlight/bakeshop-backend/internal/mailer"
	"github.com/ovenlight/bakeshop-backend/internal/notifications"
	"github.com/ovenlight/bakeshop-backend/internal/orders"
	"github.com/ovenlight/bakeshop-backend/internal/payments"
	"github.com/ovenlight/bakeshop-backend/internal/products"
	"github.com/ovenlight/bakeshop-backend/internal/users"
	"github.com/ovenlight/bakeshop-backend/pkg/config"
	"github.com/ovenlight/bakeshop-backend/pkg/db"
	"github.com/ovenlight/bakeshop-backend/pkg/logger"
	"github.com/ovenlight/bakeshop-backend/pkg/metrics"
	"github.com/ovenlight/bakeshop-backend/pkg/migrate"
	"github.com/ovenlight/bakeshop-backend/pkg/redis"
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

	promRegistry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	gate := inventory.NewGate()
	directory := users.NewDirectory(dbClient.DB())
	catalog := products.NewCatalog(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notificationsRepo, directory, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	notificationsSvc, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	registry, err := payments.NewDefaultRegistry()
	if err != nil {
		logg.Error(context.Background(), "failed to create payment registry", err)
		os.Exit(1)
	}

	builder, err := orders.NewBuilder(ordersRepo, gate, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order builder", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, dispatcher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		directory,
		gate,
		registry,
		builder,
		ordersRepo,
		cartRepo,
		dispatcher,
		mailer.New(cfg.SMTP),
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DBPinger:        dbClient,
		RedisPinger:     redisClient,
		HTTPMetrics:     httpMetrics,
		MetricsHandler:  metrics.Handler(promRegistry),
		Checkout:        checkoutService,
		Cart:            cartService,
		Orders:          ordersSvc,
		Notifications:   notificationsSvc,
		PaymentRegistry: registry,
	})

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
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-shutdownCtx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "error during shutdown", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
