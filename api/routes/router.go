package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merthanaya/pos-backend/api/controllers"
	analyticscontrollers "github.com/merthanaya/pos-backend/api/controllers/analytics"
	authcontrollers "github.com/merthanaya/pos-backend/api/controllers/auth"
	ordercontrollers "github.com/merthanaya/pos-backend/api/controllers/orders"
	"github.com/merthanaya/pos-backend/api/middleware"
	"github.com/merthanaya/pos-backend/internal/analytics"
	"github.com/merthanaya/pos-backend/internal/auth"
	"github.com/merthanaya/pos-backend/internal/inventory"
	"github.com/merthanaya/pos-backend/internal/orders"
	products "github.com/merthanaya/pos-backend/internal/products"
	"github.com/merthanaya/pos-backend/internal/stores"
	"github.com/merthanaya/pos-backend/internal/users"
	"github.com/merthanaya/pos-backend/pkg/config"
	"github.com/merthanaya/pos-backend/pkg/logger"
	"github.com/merthanaya/pos-backend/pkg/metrics"
	pkgredis "github.com/merthanaya/pos-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the process-wide clients and services the HTTP surface needs.
// Redis-backed fields stay nil when redis is not configured.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Database    pinger
	Cache       pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter pkgredis.RateLimiter

	// Registry backs GET /metrics. A nil registry disables the endpoint and request metrics.
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics

	Gateway   *auth.Gateway
	Auth      auth.Service
	Orders    orders.Service
	Products  products.Service
	Inventory inventory.Service
	Analytics analytics.Service
	Stores    stores.Service
	Users     users.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTP != nil {
		r.Use(middleware.Metrics(deps.HTTP))
	}
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if deps.Gateway != nil {
		r.Use(middleware.Identity(deps.Gateway, logg))
	}

	r.Get("/", controllers.Root())
	r.Get("/health", controllers.Health(deps.Database, deps.Cache, logg))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	forgotPolicy := middleware.ForgotPasswordRateLimitPolicy(cfg.AuthRateLimit)

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", authcontrollers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(forgotPolicy, deps.RateLimiter, logg)).Post("/forgot-password", authcontrollers.AuthForgotPassword(deps.Auth, logg))
		r.Post("/logout", authcontrollers.AuthLogout(deps.Auth, logg))
		r.Post("/verify-token", authcontrollers.AuthVerify(deps.Auth, logg))
		r.Post("/refresh-token", authcontrollers.AuthRefresh(deps.Auth, logg))
		r.With(middleware.RequireAuth(logg)).Get("/me", authcontrollers.AuthMe(logg))
	})

	idem := middleware.Idempotency(deps.Idempotency, middleware.IdempotencyPolicy{
		TTL:      cfg.Idempotency.TTL,
		Required: cfg.Idempotency.Required,
	}, logg)

	r.Route("/orders", func(r chi.Router) {
		r.Use(middleware.RequireAuth(logg))
		r.With(idem).Post("/", ordercontrollers.Create(deps.Orders, logg))
		r.Get("/pending", ordercontrollers.Pending(deps.Orders, logg))
		r.Get("/paid", ordercontrollers.Paid(deps.Orders, logg))
		r.Get("/history/all", ordercontrollers.History(deps.Orders, logg))
		r.Route("/{orderId}", func(r chi.Router) {
			r.Get("/", ordercontrollers.Get(deps.Orders, logg))
			r.Get("/receipt", ordercontrollers.Receipt(deps.Orders, logg))
			r.With(idem).Post("/pay", ordercontrollers.Pay(deps.Orders, logg))
			r.With(idem).Post("/cancel", ordercontrollers.Cancel(deps.Orders, logg))
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(middleware.RequireAuth(logg))
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Post("/", controllers.ProductCreate(deps.Products, logg))
		r.Get("/barcode/{code}", controllers.ProductByBarcode(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(deps.Products, logg))
		r.Put("/{productId}", controllers.ProductUpdate(deps.Products, logg))
		r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Use(middleware.RequireAuth(logg))
		r.Post("/adjust", controllers.InventoryAdjust(deps.Inventory, logg))
		r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
		r.Get("/history/{productId}", controllers.InventoryHistory(deps.Inventory, logg))
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Use(middleware.RequireAuth(logg))
		r.Get("/summary", analyticscontrollers.Summary(deps.Analytics, logg))
		r.Get("/top-products", analyticscontrollers.TopProducts(deps.Analytics, logg))
		r.Get("/sales-by-category", analyticscontrollers.SalesByCategory(deps.Analytics, logg))
		r.Get("/sales-trend", analyticscontrollers.SalesTrend(deps.Analytics, logg))
		r.Get("/hourly-distribution", analyticscontrollers.HourlyDistribution(deps.Analytics, logg))
	})

	r.Route("/stores", func(r chi.Router) {
		r.Use(middleware.RequireAuth(logg))
		r.Get("/me", controllers.StoreMine(deps.Stores, logg))
		r.Put("/me", controllers.StoreUpdate(deps.Stores, logg))
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAdmin(logg))
		r.Get("/", controllers.UserList(deps.Users, logg))
		r.Post("/", controllers.UserCreate(deps.Users, logg))
		r.Get("/{userId}", controllers.UserGet(deps.Users, logg))
		r.Put("/{userId}", controllers.UserUpdate(deps.Users, logg))
		r.Delete("/{userId}", controllers.UserDelete(deps.Users, logg))
		r.Post("/{userId}/reactivate", controllers.UserReactivate(deps.Users, logg))
	})

	return r
}
