package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velora-shop/velora-backend/api/controllers"
	"github.com/velora-shop/velora-backend/api/middleware"
	"github.com/velora-shop/velora-backend/internal/cart"
	checkoutsvc "github.com/velora-shop/velora-backend/internal/checkout"
	"github.com/velora-shop/velora-backend/internal/orders"
	"github.com/velora-shop/velora-backend/internal/products"
	"github.com/velora-shop/velora-backend/pkg/config"
	"github.com/velora-shop/velora-backend/pkg/logger"
	"github.com/velora-shop/velora-backend/pkg/metrics"
	"github.com/velora-shop/velora-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	productService products.Service,
	cartLedger cart.Ledger,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Session, logg))

		r.Get("/products", controllers.ProductsList(productService, logg))
		r.Get("/products/{slug}", controllers.ProductGet(productService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartLedger, logg))
			r.Delete("/", controllers.CartClear(cartLedger, logg))
			r.Post("/items", controllers.CartAddItem(cartLedger, productService, logg))
			r.Patch("/items/{productID}", controllers.CartUpdateItem(cartLedger, productService, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(cartLedger, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.Get("/orders/{number}", controllers.OrderGet(ordersService, logg))
	})

	return r
}
