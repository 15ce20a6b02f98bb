package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/merthanaya/pos-backend/api/routes"
	"github.com/merthanaya/pos-backend/internal/analytics"
	"github.com/merthanaya/pos-backend/internal/auth"
	"github.com/merthanaya/pos-backend/internal/inventory"
	"github.com/merthanaya/pos-backend/internal/orders"
	products "github.com/merthanaya/pos-backend/internal/products"
	"github.com/merthanaya/pos-backend/internal/stores"
	"github.com/merthanaya/pos-backend/internal/users"
	"github.com/merthanaya/pos-backend/pkg/config"
	"github.com/merthanaya/pos-backend/pkg/db"
	"github.com/merthanaya/pos-backend/pkg/identity"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/metrics"
	"github.com/merthanaya/pos-backend/pkg/migrate"
	"github.com/merthanaya/pos-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.App.Location()
	if err != nil {
		return err
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Database: dbClient,
	}

	if cfg.Redis.Enabled() {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		deps.Cache = redisClient
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency and auth rate limiting disabled")
	}

	var orderMetrics *metrics.OrderMetrics
	if cfg.FeatureFlags.Metrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Registry = registry
		deps.HTTP = metrics.NewHTTPMetrics(registry)
		orderMetrics = metrics.NewOrderMetrics(registry)
	}

	identityClient, err := identity.NewClient(cfg.Identity)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)

	gateway, err := auth.NewGateway(auth.GatewayParams{
		Verifier:        identityClient,
		Profiles:        userRepo,
		ProfilelessRole: cfg.Identity.ProfilelessRole,
		Logger:          logg,
	})
	if err != nil {
		return err
	}
	deps.Gateway = gateway

	if deps.Auth, err = auth.NewService(auth.ServiceParams{
		Provider:      identityClient,
		Profiles:      userRepo,
		Gateway:       gateway,
		ResetRedirect: cfg.Identity.PasswordResetRedirect,
		Logger:        logg,
	}); err != nil {
		return err
	}

	if deps.Users, err = users.NewService(users.ServiceParams{
		Repo:     userRepo,
		Provider: identityClient,
		Logger:   logg,
	}); err != nil {
		return err
	}

	if deps.Stores, err = stores.NewService(stores.NewRepository(conn)); err != nil {
		return err
	}
	if deps.Products, err = products.NewService(products.NewRepository(conn)); err != nil {
		return err
	}
	if deps.Inventory, err = inventory.NewService(inventory.NewRepository(conn), logg); err != nil {
		return err
	}
	if deps.Analytics, err = analytics.NewService(analytics.NewRepository(conn), location); err != nil {
		return err
	}

	ordersParams := orders.ServiceParams{
		Repo:     orders.NewRepository(conn),
		Tx:       dbClient,
		Stores:   deps.Stores,
		Location: location,
		Logger:   logg,
	}
	if orderMetrics != nil {
		ordersParams.Metrics = orderMetrics
	}
	if deps.Orders, err = orders.NewService(ordersParams); err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(deps),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": location.String(),
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
