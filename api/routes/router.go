package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koxixo/orders-backend/api/controllers"
	"github.com/koxixo/orders-backend/api/middleware"
	"github.com/koxixo/orders-backend/internal/orders"
	"github.com/koxixo/orders-backend/pkg/config"
	"github.com/koxixo/orders-backend/pkg/enums"
	"github.com/koxixo/orders-backend/pkg/logger"
	"github.com/koxixo/orders-backend/pkg/metrics"
	pkgredis "github.com/koxixo/orders-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Cache       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Metrics     *metrics.HTTPMetrics
	Orders      orders.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(params.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.DB, params.Cache, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(params.Idempotency, cfg.Orders.IdempotencyTTL, logg),
		)

		r.Get("/", controllers.ListOrders(params.Orders, logg))
		r.Post("/", controllers.CreateOrder(params.Orders, logg))
		r.With(middleware.RequireRole(logg, enums.UserRoleOrcamento)).
			Get("/export", controllers.ExportOrders(params.Orders, logg))

		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.GetOrder(params.Orders, logg))
			r.Patch("/", controllers.EditOrder(params.Orders, logg))
			r.Post("/transition", controllers.TransitionOrder(params.Orders, logg))
		})
	})

	return r
}
