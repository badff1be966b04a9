package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/halcart/api/controllers"
	cartcontrollers "github.com/angelmondragon/halcart/api/controllers/cart"
	"github.com/angelmondragon/halcart/api/hal"
	"github.com/angelmondragon/halcart/api/middleware"
	"github.com/angelmondragon/halcart/internal/cart"
	"github.com/angelmondragon/halcart/pkg/config"
	"github.com/angelmondragon/halcart/pkg/logger"
	"github.com/angelmondragon/halcart/pkg/redis"
)

// Observability bundles the optional metrics wiring. A nil Gatherer leaves
// the metrics endpoint unmounted.
type Observability struct {
	HTTP     middleware.HTTPObserver
	Gatherer prometheus.Gatherer
}

// NewRouter wires the cart API. redisClient and idempotency may be nil when
// redis is not configured.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	cartService cart.Service,
	stats controllers.StoreStats,
	redisClient redis.Pinger,
	idempotency redis.IdempotencyStore,
	obs Observability,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTP),
	)
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed(r))

	// Routes stay in one tree, with no mounted subrouters, so Mux.Match can
	// compute Allow for every path.
	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, redisClient, stats))

	if cfg.Metrics.Enabled && obs.Gatherer != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	view := cartcontrollers.View{
		Renderer:     hal.NewRenderer(cfg.HAL.RelsHref),
		CacheControl: cfg.HTTP.CacheControl(),
	}
	allow := options(r)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.RequestSize(cfg.HTTP.MaxBodyBytes))

		r.With(middleware.Idempotency(idempotency, cfg.Idempotency.TTL, logg)).Post("/cart", cartcontrollers.CartCreate(cartService, view, logg))
		r.Options("/cart", allow)

		r.Get("/cart/{id}", cartcontrollers.CartGet(cartService, view, logg))
		r.Head("/cart/{id}", cartcontrollers.CartGet(cartService, view, logg))
		r.Put("/cart/{id}", cartcontrollers.CartReplaceItems(cartService, view, logg))
		r.Post("/cart/{id}", cartcontrollers.CartAddItems(cartService, view, logg))
		r.Delete("/cart/{id}", cartcontrollers.CartDelete(cartService, view, logg))
		r.Options("/cart/{id}", allow)

		r.Get("/cart/item/{id}", cartcontrollers.ItemGet(cartService, view, logg))
		r.Head("/cart/item/{id}", cartcontrollers.ItemGet(cartService, view, logg))
		r.Put("/cart/item/{id}", cartcontrollers.ItemPut(cartService, view, logg))
		r.Patch("/cart/item/{id}", cartcontrollers.ItemPatch(cartService, view, logg))
		r.Delete("/cart/item/{id}", cartcontrollers.ItemDelete(cartService, view, logg))
		r.Options("/cart/item/{id}", allow)
	})

	return r
}
