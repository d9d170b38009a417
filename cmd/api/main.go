package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopora-app/shopora-backend/api/routes"
	"github.com/shopora-app/shopora-backend/internal/authgate"
	"github.com/shopora-app/shopora-backend/internal/cart"
	"github.com/shopora-app/shopora-backend/internal/catalog"
	checkoutsvc "github.com/shopora-app/shopora-backend/internal/checkout"
	"github.com/shopora-app/shopora-backend/internal/identity"
	"github.com/shopora-app/shopora-backend/internal/notifications"
	searchsvc "github.com/shopora-app/shopora-backend/internal/search"
	"github.com/shopora-app/shopora-backend/internal/shops"
	"github.com/shopora-app/shopora-backend/internal/wishlist"
	"github.com/shopora-app/shopora-backend/pkg/auth/session"
	"github.com/shopora-app/shopora-backend/pkg/config"
	"github.com/shopora-app/shopora-backend/pkg/db"
	"github.com/shopora-app/shopora-backend/pkg/logger"
	"github.com/shopora-app/shopora-backend/pkg/metrics"
	"github.com/shopora-app/shopora-backend/pkg/migrate"
	"github.com/shopora-app/shopora-backend/pkg/redis"
	"github.com/shopora-app/shopora-backend/pkg/square"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:   catalogRepo,
		Logger: logg,
		Config: cfg.Catalog,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cart.NewRepository(dbClient.DB()),
		Products: catalogRepo,
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		Repo:     wishlist.NewRepository(dbClient.DB()),
		Notifier: notificationsService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	shopsService, err := shops.NewService(shops.ServiceParams{
		Repo:     shops.NewRepository(dbClient.DB()),
		Products: catalogService,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shops service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Repo:     checkoutsvc.NewRepository(dbClient.DB()),
		Payments: squareClient,
		Carts:    cartService,
		Stock:    catalogRepo,
		Notifier: notificationsService,
		Logger:   logg,
		Config:   cfg.Square,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	identityService, err := identity.NewService(identity.ServiceParams{
		Repo:     identity.NewRepository(dbClient.DB()),
		Sessions: sessionManager,
		Carts:    cartService,
		Logger:   logg,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	searchPrefs, err := searchsvc.NewPreferences(redisClient, cfg.Search, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create search preferences", err)
		os.Exit(1)
	}

	gate, err := authgate.NewGate(authgate.GateParams{
		Sessions: sessionManager,
		Notifier: notificationsService,
		Logger:   logg,
		JWT:      cfg.JWT,
		Config:   cfg.Gate,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth gate", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Gate:         gate,
			HTTPMetrics:  httpMetrics,
			Identity:     identityService,
			Catalog:      catalogService,
			Cart:         cartService,
			Wishlist:     wishlistService,
			Shops:        shopsService,
			Checkout:     checkoutService,
			Notification: notificationsService,
			SearchPrefs:  searchPrefs,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
